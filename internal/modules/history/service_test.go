package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/pricewatch/pkg/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Pretty: false})
	return NewService(newTestRepo(t), log)
}

func TestService_StatsEmptySeries(t *testing.T) {
	svc := newTestService(t)

	stats, err := svc.Stats("https://shop.example/none", "alice@example.com")
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Count)
	assert.Nil(t, stats.Min)
	assert.Nil(t, stats.Max)
	assert.Nil(t, stats.Avg)
	assert.Zero(t, stats.TrendPerDay)
}

func TestService_StatsAggregates(t *testing.T) {
	svc := newTestService(t)
	url := "https://shop.example/p1"
	owner := "alice@example.com"
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, svc.Append(url, owner, 1800, base))
	require.NoError(t, svc.Append(url, owner, 1600, base.AddDate(0, 0, 1)))
	require.NoError(t, svc.Append(url, owner, 1500, base.AddDate(0, 0, 2)))

	stats, err := svc.Stats(url, owner)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Count)
	require.NotNil(t, stats.Min)
	require.NotNil(t, stats.Max)
	require.NotNil(t, stats.Avg)
	assert.Equal(t, 1500.0, *stats.Min)
	assert.Equal(t, 1800.0, *stats.Max)
	assert.InDelta(t, 1633.33, *stats.Avg, 0.01)
	assert.Less(t, stats.TrendPerDay, 0.0, "falling prices should have a negative trend")
}
