package naver

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
)

type searchResponse struct {
	LastBuildDate string       `json:"lastBuildDate"`
	Total         int          `json:"total"`
	Start         int          `json:"start"`
	Display       int          `json:"display"`
	Items         []searchItem `json:"items"`
}

type searchItem struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Image       string     `json:"image"`
	LPrice      PriceValue `json:"lprice"`
	HPrice      PriceValue `json:"hprice"`
	MallName    string     `json:"mallName"`
	ProductID   string     `json:"productId"`
	ProductType string     `json:"productType"`
	Maker       string     `json:"maker"`
	Brand       string     `json:"brand"`
	Category1   string     `json:"category1"`
	Category2   string     `json:"category2"`
	Category3   string     `json:"category3"`
	Category4   string     `json:"category4"`
}

// PriceValue holds a won amount sent either as a numeric string or a number.
// Blank, fractional, non-numeric and non-positive values decode as invalid
// instead of failing the whole payload.
type PriceValue struct {
	Amount int
	Valid  bool
}

func (p *PriceValue) UnmarshalJSON(data []byte) error {
	p.Amount, p.Valid = 0, false
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) >= 2 && trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"' {
		trimmed = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
	}
	if trimmed == "" {
		return nil
	}
	dec, err := decimal.NewFromString(trimmed)
	if err != nil {
		return nil
	}
	if !dec.IsInteger() || !dec.IsPositive() || !dec.LessThanOrEqual(decimal.NewFromInt(maxPrice)) {
		return nil
	}
	p.Amount = int(dec.IntPart())
	p.Valid = true
	return nil
}

const maxPrice = 1<<31 - 1

func (p PriceValue) Ptr() *int {
	if !p.Valid {
		return nil
	}
	value := p.Amount
	return &value
}
