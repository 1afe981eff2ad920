package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/NasaVasa/partprice/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PartRepository struct {
	db *gorm.DB
}

func NewPartRepository(db *gorm.DB) *PartRepository {
	return &PartRepository{db: db}
}

func (r *PartRepository) GetByID(ctx context.Context, partID uint) (*domain.Part, error) {
	var model partModel
	if err := r.db.WithContext(ctx).First(&model, partID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return mapPartToDomain(model), nil
}

func (r *PartRepository) GetByIDs(ctx context.Context, partIDs []uint) (map[uint]domain.Part, error) {
	parts := make(map[uint]domain.Part, len(partIDs))
	if len(partIDs) == 0 {
		return parts, nil
	}
	var models []partModel
	if err := r.db.WithContext(ctx).Where("id IN ?", partIDs).Find(&models).Error; err != nil {
		return nil, err
	}
	for _, model := range models {
		parts[model.ID] = *mapPartToDomain(model)
	}
	return parts, nil
}

func (r *PartRepository) Exists(ctx context.Context, partID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&partModel{}).Where("id = ?", partID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PartRepository) FindByName(ctx context.Context, category domain.Category, name string) (*domain.Part, error) {
	var model partModel
	err := r.db.WithContext(ctx).
		Where("category = ? AND name_key = ?", string(category), domain.NameKey(name)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return mapPartToDomain(model), nil
}

func (r *PartRepository) CreateIfAbsent(ctx context.Context, part *domain.Part) (bool, error) {
	model := mapPartToModel(*part)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "category"}, {Name: "name_key"}},
			DoNothing: true,
		}).
		Create(&model)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		// Soft-deleted parts still own their name; return them so the caller can decide.
		var existing partModel
		err := r.db.WithContext(ctx).Unscoped().
			Where("category = ? AND name_key = ?", model.Category, model.NameKey).
			First(&existing).Error
		if err != nil {
			return false, err
		}
		*part = *mapPartToDomain(existing)
		return false, nil
	}
	*part = *mapPartToDomain(model)
	return true, nil
}

func (r *PartRepository) UpdatePriceRange(ctx context.Context, partID uint, lowest, highest *int) error {
	result := r.db.WithContext(ctx).Model(&partModel{}).Where("id = ?", partID).Updates(map[string]interface{}{
		"lowest_price":  lowest,
		"highest_price": highest,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PartRepository) ListBySeller(ctx context.Context, sellerID uint, limit int) ([]domain.Part, error) {
	offered := r.db.WithContext(ctx).Model(&priceEntryModel{}).Select("part_id").Where("seller_id = ?", sellerID)
	query := r.db.WithContext(ctx).Where("id IN (?)", offered).Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var models []partModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	parts := make([]domain.Part, 0, len(models))
	for _, model := range models {
		parts = append(parts, *mapPartToDomain(model))
	}
	return parts, nil
}

func mapPartToDomain(model partModel) *domain.Part {
	var deleted *time.Time
	if model.DeletedAt.Valid {
		t := model.DeletedAt.Time
		deleted = &t
	}
	var specs json.RawMessage
	if len(model.Specs) > 0 {
		specs = json.RawMessage(model.Specs)
	}
	return &domain.Part{
		ID:           model.ID,
		Name:         model.Name,
		Category:     domain.Category(model.Category),
		Manufacturer: model.Manufacturer,
		ImageURL:     model.ImageURL,
		Specs:        specs,
		LowestPrice:  model.LowestPrice,
		HighestPrice: model.HighestPrice,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
		DeletedAt:    deleted,
	}
}

func mapPartToModel(part domain.Part) partModel {
	model := partModel{
		ID:           part.ID,
		Name:         part.Name,
		NameKey:      domain.NameKey(part.Name),
		Category:     string(part.Category),
		Manufacturer: part.Manufacturer,
		ImageURL:     part.ImageURL,
		LowestPrice:  part.LowestPrice,
		HighestPrice: part.HighestPrice,
		CreatedAt:    part.CreatedAt,
		UpdatedAt:    part.UpdatedAt,
	}
	if len(part.Specs) > 0 {
		model.Specs = datatypes.JSON(part.Specs)
	}
	return model
}
