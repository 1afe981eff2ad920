package domain

import "time"

type SellerStatus string

const (
	SellerActive   SellerStatus = "ACTIVE"
	SellerInactive SellerStatus = "INACTIVE"
)

type Seller struct {
	ID               uint         `json:"id"`
	Name             string       `json:"name"`
	SiteURL          string       `json:"siteUrl"`
	Status           SellerStatus `json:"status"`
	ReliabilityScore float64      `json:"reliabilityScore"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}
