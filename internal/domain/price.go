package domain

import "time"

type PriceEntry struct {
	ID         uint
	PartID     uint
	SellerID   uint
	Price      int
	ProductURL string
	Available  bool
	CreatedAt  time.Time
}

// PriceOffer is a price entry joined with the seller it came from.
type PriceOffer struct {
	EntryID    uint
	SellerID   uint
	SellerName string
	SiteURL    string
	Price      int
	ProductURL string
	Available  bool
}

type PriceHistory struct {
	ID         uint
	PartID     uint
	SellerID   uint
	Price      int
	RecordDate time.Time
	CreatedAt  time.Time
}

// DateOf returns the calendar date of t (in t's location) as midnight UTC.
func DateOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

type PriceComparison struct {
	PartID       uint             `json:"partId"`
	PartName     string           `json:"partName"`
	LowestPrice  *int             `json:"lowestPrice"`
	HighestPrice *int             `json:"highestPrice"`
	Prices       []PriceOfferItem `json:"prices"`
}

type PriceOfferItem struct {
	SellerID    uint   `json:"sellerId"`
	SellerName  string `json:"sellerName"`
	SiteURL     string `json:"siteUrl"`
	Price       int    `json:"price"`
	ProductURL  string `json:"productUrl"`
	IsAvailable bool   `json:"isAvailable"`
}

type PriceHistoryView struct {
	PartID   uint              `json:"partId"`
	PartName string            `json:"partName"`
	Period   string            `json:"period"`
	History  []DailyPricePoint `json:"history"`
}

type DailyPricePoint struct {
	Date         string `json:"date"`
	LowestPrice  int    `json:"lowestPrice"`
	HighestPrice int    `json:"highestPrice"`
	AveragePrice int    `json:"averagePrice"`
}
