package repository

import (
	"context"
	"errors"

	"catalog-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VariationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID, fetch Fetch) (*models.Variation, error)
	Create(ctx context.Context, v *models.Variation) error
	Update(ctx context.Context, v *models.Variation) error
	Delete(ctx context.Context, v *models.Variation) error
}

type GormVariationRepository struct {
	db *gorm.DB
}

func NewGormVariationRepository(db *gorm.DB) VariationRepository {
	return &GormVariationRepository{db: db}
}

func (r *GormVariationRepository) FindByID(ctx context.Context, id uuid.UUID, fetch Fetch) (*models.Variation, error) {
	var v models.Variation
	err := fetch.applyToVariations(r.db.WithContext(ctx)).First(&v, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *GormVariationRepository) Create(ctx context.Context, v *models.Variation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(v).Error
}

// Update writes every mutable column, including nil dimensions.
func (r *GormVariationRepository) Update(ctx context.Context, v *models.Variation) error {
	return r.db.WithContext(ctx).Model(v).Omit(clause.Associations).Updates(map[string]interface{}{
		"title":                v.Title,
		"description":          v.Description,
		"length":               v.Length,
		"width":                v.Width,
		"height":               v.Height,
		"weight":               v.Weight,
		"remaining_stock":      v.RemainingStock,
		"remaining_stock_date": v.RemainingStockDate,
	}).Error
}

func (r *GormVariationRepository) Delete(ctx context.Context, v *models.Variation) error {
	return r.db.WithContext(ctx).Delete(&models.Variation{}, "id = ?", v.ID).Error
}
