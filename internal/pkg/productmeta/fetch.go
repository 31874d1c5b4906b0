// internal/pkg/productmeta/fetch.go
package productmeta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/your-org/wishlist-backend/internal/config"
)

// Result is the best-effort product metadata extracted from a page. Every
// field may be nil; the caller decides what to do with partial data.
type Result struct {
	Title    *string          `json:"title"`
	ImageURL *string          `json:"image_url"`
	Price    *decimal.Decimal `json:"price"`
}

// Fetcher loads product pages and extracts Open Graph / schema.org metadata.
// Strictly a side call: bounded timeout, bounded response size, failures are
// the caller's problem to ignore.
type Fetcher struct {
	config *config.Config
	client *http.Client
}

// NewFetcher creates a new metadata fetcher
func NewFetcher(cfg *config.Config) *Fetcher {
	return &Fetcher{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.External.Fetch.Timeout,
		},
	}
}

var priceCleanup = regexp.MustCompile(`[^\d.,]`)

// Fetch loads the page and extracts {title, image_url, price}. Only http and
// https URLs are accepted; the response body is capped at the configured size.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	pageURL := normalizeURL(rawURL)

	parsed, err := url.Parse(pageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("only http and https URLs are supported")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.External.Fetch.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "application/xhtml") {
		return nil, fmt.Errorf("response is not HTML")
	}

	body := io.LimitReader(resp.Body, f.config.External.Fetch.MaxBytes)
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return Parse(doc, pageURL), nil
}

// Parse extracts metadata from a parsed document. Open Graph wins over
// JSON-LD, which wins over the bare <title> tag.
func Parse(doc *goquery.Document, baseURL string) *Result {
	og := extractOpenGraph(doc, baseURL)
	ld := extractJSONLD(doc, baseURL)

	out := &Result{}
	out.Title = firstString(og.Title, ld.Title, extractTitleTag(doc))
	out.ImageURL = firstString(og.ImageURL, ld.ImageURL)
	if og.Price != nil {
		out.Price = og.Price
	} else {
		out.Price = ld.Price
	}
	return out
}

// extractOpenGraph reads Open Graph and Twitter Card meta tags.
func extractOpenGraph(doc *goquery.Document, baseURL string) *Result {
	out := &Result{}
	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		prop, ok := sel.Attr("property")
		if !ok {
			prop, _ = sel.Attr("name")
		}
		prop = strings.ToLower(prop)
		content, ok := sel.Attr("content")
		if !ok || content == "" {
			return
		}
		content = strings.TrimSpace(content)

		switch prop {
		case "og:title", "twitter:title":
			if out.Title == nil {
				out.Title = &content
			}
		case "og:image", "twitter:image", "og:image:secure_url":
			if out.ImageURL == nil {
				resolved := resolveURL(content, baseURL)
				out.ImageURL = &resolved
			}
		case "og:price:amount", "product:price:amount":
			if out.Price == nil {
				if price, ok := parsePrice(content); ok {
					out.Price = &price
				}
			}
		}
	})
	return out
}

// jsonLDProduct mirrors the subset of a schema.org Product we care about.
type jsonLDProduct struct {
	Type   string          `json:"@type"`
	Name   string          `json:"name"`
	Image  json.RawMessage `json:"image"`
	Offers json.RawMessage `json:"offers"`
}

// extractJSONLD reads schema.org Product data from ld+json script blocks.
func extractJSONLD(doc *goquery.Document, baseURL string) *Result {
	out := &Result{}
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		product, ok := decodeProduct([]byte(sel.Text()))
		if !ok {
			return true
		}

		if name := strings.TrimSpace(product.Name); name != "" {
			out.Title = &name
		}
		if img := decodeImage(product.Image); img != "" {
			resolved := resolveURL(img, baseURL)
			out.ImageURL = &resolved
		}
		if price, ok := decodeOfferPrice(product.Offers); ok {
			out.Price = &price
		}
		return false
	})
	return out
}

func decodeProduct(raw []byte) (*jsonLDProduct, bool) {
	var single jsonLDProduct
	if err := json.Unmarshal(raw, &single); err == nil && single.Type == "Product" {
		return &single, true
	}

	var list []jsonLDProduct
	if err := json.Unmarshal(raw, &list); err == nil {
		for i := range list {
			if list[i].Type == "Product" {
				return &list[i], true
			}
		}
	}
	return nil, false
}

func decodeImage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return strings.TrimSpace(single)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0])
	}
	return ""
}

func decodeOfferPrice(raw json.RawMessage) (decimal.Decimal, bool) {
	if len(raw) == 0 {
		return decimal.Zero, false
	}

	type offer struct {
		Price json.RawMessage `json:"price"`
	}

	var single offer
	if err := json.Unmarshal(raw, &single); err == nil {
		if price, ok := decodeRawPrice(single.Price); ok {
			return price, true
		}
	}

	var list []offer
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return decodeRawPrice(list[0].Price)
	}
	return decimal.Zero, false
}

func decodeRawPrice(raw json.RawMessage) (decimal.Decimal, bool) {
	if len(raw) == 0 {
		return decimal.Zero, false
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return parsePrice(asString)
	}
	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return decimal.NewFromFloat(asNumber), true
	}
	return decimal.Zero, false
}

func extractTitleTag(doc *goquery.Document) *string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return nil
	}
	if len(title) > 500 {
		title = title[:500]
	}
	return &title
}

func parsePrice(s string) (decimal.Decimal, bool) {
	cleaned := priceCleanup.ReplaceAllString(strings.ReplaceAll(s, ",", "."), "")
	if cleaned == "" {
		return decimal.Zero, false
	}
	price, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return price, true
}

func resolveURL(href, baseURL string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func firstString(candidates ...*string) *string {
	for _, c := range candidates {
		if c != nil && *c != "" {
			return c
		}
	}
	return nil
}

// normalizeURL prepends https:// when the scheme is missing.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	return raw
}
