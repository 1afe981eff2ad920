package db

import (
	"context"
	"time"

	"github.com/NasaVasa/partprice/internal/domain"
	"gorm.io/gorm"
)

type PriceEntryRepository struct {
	db *gorm.DB
}

func NewPriceEntryRepository(db *gorm.DB) *PriceEntryRepository {
	return &PriceEntryRepository{db: db}
}

func (r *PriceEntryRepository) Create(ctx context.Context, entry *domain.PriceEntry) error {
	model := priceEntryModel{
		PartID:      entry.PartID,
		SellerID:    entry.SellerID,
		Price:       entry.Price,
		ProductURL:  entry.ProductURL,
		IsAvailable: entry.Available,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	entry.ID = model.ID
	entry.CreatedAt = model.CreatedAt
	return nil
}

type offerRow struct {
	EntryID     uint
	SellerID    uint
	SellerName  string
	SiteURL     string
	Price       int
	ProductURL  string
	IsAvailable bool
}

func (r *PriceEntryRepository) ListAvailableByPart(ctx context.Context, partID uint) ([]domain.PriceOffer, error) {
	var rows []offerRow
	err := r.db.WithContext(ctx).
		Table("price_entries AS e").
		Select("e.id AS entry_id, e.seller_id, s.name AS seller_name, s.site_url, e.price, e.product_url, e.is_available").
		Joins("JOIN sellers AS s ON s.id = e.seller_id").
		Where("e.part_id = ? AND e.is_available = ?", partID, true).
		Order("e.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	offers := make([]domain.PriceOffer, 0, len(rows))
	for _, row := range rows {
		offers = append(offers, domain.PriceOffer{
			EntryID:    row.EntryID,
			SellerID:   row.SellerID,
			SellerName: row.SellerName,
			SiteURL:    row.SiteURL,
			Price:      row.Price,
			ProductURL: row.ProductURL,
			Available:  row.IsAvailable,
		})
	}
	return offers, nil
}

func (r *PriceEntryRepository) CountByPart(ctx context.Context, partID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&priceEntryModel{}).Where("part_id = ?", partID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type PriceHistoryRepository struct {
	db *gorm.DB
}

func NewPriceHistoryRepository(db *gorm.DB) *PriceHistoryRepository {
	return &PriceHistoryRepository{db: db}
}

func (r *PriceHistoryRepository) Create(ctx context.Context, history *domain.PriceHistory) error {
	model := priceHistoryModel{
		PartID:     history.PartID,
		SellerID:   history.SellerID,
		Price:      history.Price,
		RecordDate: domain.DateOf(history.RecordDate),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	history.ID = model.ID
	history.RecordDate = model.RecordDate
	history.CreatedAt = model.CreatedAt
	return nil
}

func (r *PriceHistoryRepository) ListByPartBetween(ctx context.Context, partID uint, from, to time.Time) ([]domain.PriceHistory, error) {
	var models []priceHistoryModel
	err := r.db.WithContext(ctx).
		Where("part_id = ? AND record_date >= ? AND record_date <= ?", partID, domain.DateOf(from), domain.DateOf(to)).
		Order("record_date, id").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	rows := make([]domain.PriceHistory, 0, len(models))
	for _, model := range models {
		rows = append(rows, domain.PriceHistory{
			ID:         model.ID,
			PartID:     model.PartID,
			SellerID:   model.SellerID,
			Price:      model.Price,
			RecordDate: domain.DateOf(model.RecordDate),
			CreatedAt:  model.CreatedAt,
		})
	}
	return rows, nil
}
