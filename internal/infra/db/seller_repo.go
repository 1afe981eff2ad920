package db

import (
	"context"
	"errors"

	"github.com/NasaVasa/partprice/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SellerRepository struct {
	db *gorm.DB
}

func NewSellerRepository(db *gorm.DB) *SellerRepository {
	return &SellerRepository{db: db}
}

func (r *SellerRepository) GetByName(ctx context.Context, name string) (*domain.Seller, error) {
	var model sellerModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return mapSellerToDomain(model), nil
}

func (r *SellerRepository) CreateIfAbsent(ctx context.Context, seller *domain.Seller) (bool, error) {
	model := mapSellerToModel(*seller)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&model)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		existing, err := r.GetByName(ctx, seller.Name)
		if err != nil {
			return false, err
		}
		*seller = *existing
		return false, nil
	}
	*seller = *mapSellerToDomain(model)
	return true, nil
}

func (r *SellerRepository) ListByStatus(ctx context.Context, status domain.SellerStatus) ([]domain.Seller, error) {
	var models []sellerModel
	if err := r.db.WithContext(ctx).Where("status = ?", string(status)).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	sellers := make([]domain.Seller, 0, len(models))
	for _, model := range models {
		sellers = append(sellers, *mapSellerToDomain(model))
	}
	return sellers, nil
}

func mapSellerToDomain(model sellerModel) *domain.Seller {
	return &domain.Seller{
		ID:               model.ID,
		Name:             model.Name,
		SiteURL:          model.SiteURL,
		Status:           domain.SellerStatus(model.Status),
		ReliabilityScore: model.ReliabilityScore,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

func mapSellerToModel(seller domain.Seller) sellerModel {
	return sellerModel{
		ID:               seller.ID,
		Name:             seller.Name,
		SiteURL:          seller.SiteURL,
		Status:           string(seller.Status),
		ReliabilityScore: seller.ReliabilityScore,
		CreatedAt:        seller.CreatedAt,
		UpdatedAt:        seller.UpdatedAt,
	}
}
