package scraper

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aristath/pricewatch/internal/domain"
)

// Result is a best-effort reading of a product page
type Result struct {
	Name  string
	Price *float64 // nil when no price could be extracted
}

// Title rules, first match wins
var nameSelectors = []string{
	"#productTitle",
	"h1",
	"title",
}

// Price rules, first match wins. The Amazon selectors come first because
// they are the most common target; the generic ones catch other shops.
var priceSelectors = []string{
	"span.a-price-whole",
	"span#priceblock_ourprice",
	"span#priceblock_dealprice",
	"[itemprop=price]",
	".price",
}

// Currency symbols stripped before numeric parsing
var currencySymbols = []string{"₹", "$", "€", "£", "¥", "Rs.", "Rs"}

// Extract pulls a (name, price) reading out of raw page markup.
// It never fails: malformed or empty markup degrades to
// (Unknown Product, nil), and an unparsable price text yields a nil price.
func Extract(body []byte) Result {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Result{Name: domain.UnknownProduct}
	}

	return Result{
		Name:  extractName(doc),
		Price: extractPrice(doc),
	}
}

func extractName(doc *goquery.Document) string {
	for _, sel := range nameSelectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return domain.UnknownProduct
}

func extractPrice(doc *goquery.Document) *float64 {
	for _, sel := range priceSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}

		// Some shops put the value in a content attribute instead of text
		text := strings.TrimSpace(node.Text())
		if text == "" {
			text, _ = node.Attr("content")
		}

		if price, ok := ParsePrice(text); ok {
			return &price
		}
	}
	return nil
}

// ParsePrice cleans a raw price string and parses it as a float: thousands
// separators and currency symbols are stripped, then the leading numeric
// token is taken. Returns false when no number can be recovered.
func ParsePrice(text string) (float64, bool) {
	cleaned := strings.ReplaceAll(text, ",", "")
	for _, sym := range currencySymbols {
		cleaned = strings.ReplaceAll(cleaned, sym, "")
	}
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, false
	}

	// Leading numeric token: "1499.00 only" -> "1499.00"
	token := strings.Fields(cleaned)[0]
	// Amazon's whole-price span ends with a bare separator: "1499."
	token = strings.TrimSuffix(token, ".")

	price, err := strconv.ParseFloat(token, 64)
	if err != nil || price < 0 {
		return 0, false
	}
	return price, true
}
