package domain

import (
	"context"
	"regexp"
	"strings"
)

// DefaultSellerName is used for listings that carry no mall name.
const DefaultSellerName = "네이버쇼핑"

const UnknownManufacturer = "Unknown"

type SearchResult struct {
	LastBuildDate string
	Total         int
	Start         int
	Display       int
	Items         []SearchItem
}

type SearchItem struct {
	Title       string
	Link        string
	Image       string
	LowPrice    *int
	HighPrice   *int
	MallName    string
	ProductID   string
	ProductType string
	Maker       string
	Brand       string
	Category1   string
	Category2   string
	Category3   string
	Category4   string
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// CleanTitle is the title with markup (search highlight tags) removed.
func (i SearchItem) CleanTitle() string {
	return strings.TrimSpace(htmlTag.ReplaceAllString(i.Title, ""))
}

func (i SearchItem) EffectiveMaker() string {
	return FirstNonBlank(i.Maker, i.Brand, UnknownManufacturer)
}

func (i SearchItem) SellerName() string {
	return FirstNonBlank(i.MallName, DefaultSellerName)
}

// FirstNonBlank returns the first value that is not empty after trimming.
func FirstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// MarketplaceClient never returns an error: any failure collapses to nil.
type MarketplaceClient interface {
	Configured() bool
	Search(ctx context.Context, query string, display, start int, sort string) *SearchResult
}
