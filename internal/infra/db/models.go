package db

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type partModel struct {
	ID           uint           `gorm:"primaryKey"`
	Name         string         `gorm:"size:200;not null"`
	NameKey      string         `gorm:"size:200;not null;uniqueIndex:idx_parts_category_name_key,priority:2"`
	Category     string         `gorm:"size:20;not null;uniqueIndex:idx_parts_category_name_key,priority:1"`
	Manufacturer string         `gorm:"size:100;not null"`
	ImageURL     string         `gorm:""`
	Specs        datatypes.JSON `gorm:""`
	LowestPrice  *int           `gorm:""`
	HighestPrice *int           `gorm:""`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (partModel) TableName() string { return "parts" }

type sellerModel struct {
	ID               uint    `gorm:"primaryKey"`
	Name             string  `gorm:"size:100;uniqueIndex;not null"`
	SiteURL          string  `gorm:"not null"`
	Status           string  `gorm:"size:15;index;not null"`
	ReliabilityScore float64 `gorm:"not null;default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (sellerModel) TableName() string { return "sellers" }

type priceEntryModel struct {
	ID          uint   `gorm:"primaryKey"`
	PartID      uint   `gorm:"index:idx_price_entries_part_available,priority:1;not null"`
	SellerID    uint   `gorm:"index;not null"`
	Price       int    `gorm:"not null"`
	ProductURL  string `gorm:""`
	IsAvailable bool   `gorm:"index:idx_price_entries_part_available,priority:2;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (priceEntryModel) TableName() string { return "price_entries" }

type priceHistoryModel struct {
	ID         uint      `gorm:"primaryKey"`
	PartID     uint      `gorm:"index:idx_price_history_part_date,priority:1;not null"`
	SellerID   uint      `gorm:"not null"`
	Price      int       `gorm:"not null"`
	RecordDate time.Time `gorm:"type:date;index:idx_price_history_part_date,priority:2;not null"`
	CreatedAt  time.Time
}

func (priceHistoryModel) TableName() string { return "price_history" }

type priceAlertModel struct {
	ID          uint `gorm:"primaryKey"`
	UserID      uint `gorm:"index:idx_price_alerts_user_active,priority:1;not null"`
	PartID      uint `gorm:"index:idx_price_alerts_part_pending,priority:1;not null"`
	TargetPrice int  `gorm:"not null"`
	IsActive    bool `gorm:"index:idx_price_alerts_user_active,priority:2;index:idx_price_alerts_part_pending,priority:2;not null"`
	IsTriggered bool `gorm:"index:idx_price_alerts_part_pending,priority:3;not null"`
	TriggeredAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (priceAlertModel) TableName() string { return "price_alerts" }

type notificationModel struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	Type      string `gorm:"size:30;not null"`
	Title     string `gorm:"size:200;not null"`
	Message   string `gorm:"size:500;not null"`
	LinkURL   string `gorm:""`
	IsRead    bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (notificationModel) TableName() string { return "notifications" }
