package domain

import (
	"encoding/json"
	"strings"
	"time"
)

type Category string

const (
	CategoryCPU         Category = "CPU"
	CategoryGPU         Category = "GPU"
	CategoryMotherboard Category = "MOTHERBOARD"
	CategoryRAM         Category = "RAM"
	CategorySSD         Category = "SSD"
	CategoryHDD         Category = "HDD"
	CategoryPowerSupply Category = "POWER_SUPPLY"
	CategoryCase        Category = "CASE"
	CategoryCooler      Category = "COOLER"
)

var categories = []Category{
	CategoryCPU,
	CategoryGPU,
	CategoryMotherboard,
	CategoryRAM,
	CategorySSD,
	CategoryHDD,
	CategoryPowerSupply,
	CategoryCase,
	CategoryCooler,
}

// ParseCategory accepts the enum name in any letter case.
func ParseCategory(value string) (Category, bool) {
	normalized := Category(strings.ToUpper(strings.TrimSpace(value)))
	for _, category := range categories {
		if category == normalized {
			return category, true
		}
	}
	return "", false
}

type Part struct {
	ID           uint
	Name         string
	Category     Category
	Manufacturer string
	ImageURL     string
	Specs        json.RawMessage
	LowestPrice  *int
	HighestPrice *int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// WidenPriceRange folds a newly observed offer into the part's range.
// The range only ever grows. A missing high price is treated as the low price.
func (p *Part) WidenPriceRange(low int, high *int) {
	if p.LowestPrice == nil || low < *p.LowestPrice {
		value := low
		p.LowestPrice = &value
	}

	candidate := low
	if high != nil && *high > candidate {
		candidate = *high
	}
	if p.HighestPrice == nil || candidate > *p.HighestPrice {
		p.HighestPrice = &candidate
	}
}

// NameKey is the case-folded name used for exact catalog matching.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
