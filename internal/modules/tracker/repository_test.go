package tracker

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/pricewatch/internal/database"
	"github.com/aristath/pricewatch/internal/domain"
	"github.com/aristath/pricewatch/pkg/logger"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "tracker_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	log := logger.New(logger.Config{Level: "error", Pretty: false})
	return NewRepository(db.Conn(), log)
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepo(t)

	id, err := repo.Create("alice@example.com", "https://shop.example/p1", 1500, "", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	job, err := repo.Get(id)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", job.Owner)
	assert.Equal(t, "https://shop.example/p1", job.URL)
	assert.Equal(t, 1500.0, job.TargetPrice)
	assert.Equal(t, domain.StatusTracking, job.Status)
	assert.Empty(t, job.LastName)
	assert.Nil(t, job.LastPrice)
	assert.False(t, job.CreatedAt.IsZero())
}

func TestRepository_GetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get("nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepository_ListActiveExcludesAlerted(t *testing.T) {
	repo := newTestRepo(t)

	id1, err := repo.Create("alice@example.com", "https://shop.example/p1", 100, "", nil)
	require.NoError(t, err)
	id2, err := repo.Create("alice@example.com", "https://shop.example/p2", 200, "", nil)
	require.NoError(t, err)

	require.NoError(t, repo.MarkAlerted(id1))

	active, err := repo.ListActive()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, id2, active[0].ID)

	// Each job appears at most once per listing
	seen := map[string]int{}
	for _, j := range active {
		seen[j.ID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "job %s listed %d times", id, n)
	}
}

func TestRepository_RecordCheckPriceGuard(t *testing.T) {
	repo := newTestRepo(t)

	id, err := repo.Create("alice@example.com", "https://shop.example/p1", 1500, "", nil)
	require.NoError(t, err)

	price := 1800.0
	require.NoError(t, repo.RecordCheck(id, "Widget", &price))

	job, err := repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Widget", job.LastName)
	require.NotNil(t, job.LastPrice)
	assert.Equal(t, 1800.0, *job.LastPrice)

	// A nil price must never overwrite the last good value
	require.NoError(t, repo.RecordCheck(id, "Widget", nil))

	job, err = repo.Get(id)
	require.NoError(t, err)
	require.NotNil(t, job.LastPrice)
	assert.Equal(t, 1800.0, *job.LastPrice)
}

func TestRepository_MarkAlertedOnce(t *testing.T) {
	repo := newTestRepo(t)

	id, err := repo.Create("alice@example.com", "https://shop.example/p1", 1500, "", nil)
	require.NoError(t, err)

	require.NoError(t, repo.MarkAlerted(id))

	job, err := repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAlerted, job.Status)

	// Second transition is a no-op, never an error and never a state change
	require.NoError(t, repo.MarkAlerted(id))

	job, err = repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAlerted, job.Status)
}

func TestRepository_RemoveOwnerCheck(t *testing.T) {
	repo := newTestRepo(t)

	id, err := repo.Create("alice@example.com", "https://shop.example/p1", 1500, "", nil)
	require.NoError(t, err)

	t.Run("non-owner removal is forbidden and leaves the job", func(t *testing.T) {
		_, err := repo.Remove(id, "mallory@example.com")
		assert.ErrorIs(t, err, domain.ErrForbidden)

		job, err := repo.Get(id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusTracking, job.Status)
	})

	t.Run("missing job is not found", func(t *testing.T) {
		_, err := repo.Remove("nope", "alice@example.com")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("owner removal deletes the job everywhere", func(t *testing.T) {
		removed, err := repo.Remove(id, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "https://shop.example/p1", removed.URL)

		_, err = repo.Get(id)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		active, err := repo.ListActive()
		require.NoError(t, err)
		assert.Empty(t, active)

		owned, err := repo.ListForOwner("alice@example.com")
		require.NoError(t, err)
		assert.Empty(t, owned)
	})
}

func TestRepository_ListForOwner(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Create("alice@example.com", "https://shop.example/p1", 100, "", nil)
	require.NoError(t, err)
	_, err = repo.Create("bob@example.com", "https://shop.example/p1", 200, "", nil)
	require.NoError(t, err)

	aliceJobs, err := repo.ListForOwner("alice@example.com")
	require.NoError(t, err)
	require.Len(t, aliceJobs, 1)
	assert.Equal(t, 100.0, aliceJobs[0].TargetPrice)

	bobJobs, err := repo.ListForOwner("bob@example.com")
	require.NoError(t, err)
	require.Len(t, bobJobs, 1)
	assert.Equal(t, 200.0, bobJobs[0].TargetPrice)
}

func TestRepository_CountByStatus(t *testing.T) {
	repo := newTestRepo(t)

	id1, err := repo.Create("alice@example.com", "https://shop.example/p1", 100, "", nil)
	require.NoError(t, err)
	_, err = repo.Create("alice@example.com", "https://shop.example/p2", 200, "", nil)
	require.NoError(t, err)
	require.NoError(t, repo.MarkAlerted(id1))

	counts, err := repo.CountByStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.StatusTracking])
	assert.Equal(t, 1, counts[domain.StatusAlerted])
}
