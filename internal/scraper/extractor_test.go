package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_AmazonLayout(t *testing.T) {
	html := `
		<html><body>
			<span id="productTitle">  Noise Cancelling Headphones  </span>
			<span class="a-price-whole">1,499.</span>
		</body></html>`

	res := Extract([]byte(html))

	assert.Equal(t, "Noise Cancelling Headphones", res.Name)
	require.NotNil(t, res.Price)
	assert.Equal(t, 1499.0, *res.Price)
}

func TestExtract_PriceSelectorFallbackOrder(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected float64
	}{
		{
			name:     "ourprice block",
			html:     `<span id="priceblock_ourprice">₹1,600.00</span>`,
			expected: 1600,
		},
		{
			name:     "dealprice block",
			html:     `<span id="priceblock_dealprice">₹1,500</span>`,
			expected: 1500,
		},
		{
			name:     "itemprop content attribute",
			html:     `<meta itemprop="price" content="89.99">`,
			expected: 89.99,
		},
		{
			name:     "generic price class",
			html:     `<div class="price">$42.50</div>`,
			expected: 42.5,
		},
		{
			name:     "first rule wins over later rules",
			html:     `<span class="a-price-whole">100.</span><span id="priceblock_ourprice">200</span>`,
			expected: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Extract([]byte(tt.html))
			require.NotNil(t, res.Price)
			assert.Equal(t, tt.expected, *res.Price)
		})
	}
}

func TestExtract_NoPriceIsNotAnError(t *testing.T) {
	res := Extract([]byte(`<html><body><h1>Some Product</h1><p>Currently unavailable</p></body></html>`))

	assert.Equal(t, "Some Product", res.Name)
	assert.Nil(t, res.Price)
}

func TestExtract_MissingTitleUsesSentinel(t *testing.T) {
	res := Extract([]byte(`<div class="price">19.99</div>`))

	assert.Equal(t, "Unknown Product", res.Name)
	require.NotNil(t, res.Price)
	assert.Equal(t, 19.99, *res.Price)
}

func TestExtract_MalformedMarkupDegrades(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{"empty body", nil},
		{"truncated tags", []byte(`<<<span class="a-price-wh`)},
		{"binary garbage", []byte{0x00, 0xff, 0xfe, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Extract(tt.body)
			assert.Equal(t, "Unknown Product", res.Name)
			assert.Nil(t, res.Price)
		})
	}
}

func TestExtract_UnparsablePriceText(t *testing.T) {
	res := Extract([]byte(`<span id="productTitle">Thing</span><span class="a-price-whole">call us</span>`))

	assert.Equal(t, "Thing", res.Name)
	assert.Nil(t, res.Price)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"1,499.", 1499, true},
		{"₹1,500.00", 1500, true},
		{"$ 42.50", 42.5, true},
		{"1234.56 per unit", 1234.56, true},
		{"Rs. 999", 999, true},
		{"", 0, false},
		{"contact seller", 0, false},
		{"-5.00", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			price, ok := ParsePrice(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, price)
			}
		})
	}
}
