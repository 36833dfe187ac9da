package repository

import (
	"context"
	"errors"

	"catalog-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("record not found")

// GoodsQuery narrows a goods listing.
type GoodsQuery struct {
	ID         *uuid.UUID
	ShowHidden bool
}

// GoodRepository defines data access for goods.
type GoodRepository interface {
	FindByID(ctx context.Context, id uuid.UUID, fetch Fetch) (*models.Good, error)
	Find(ctx context.Context, q GoodsQuery, fetch Fetch) ([]models.Good, error)
	Create(ctx context.Context, g *models.Good) error
	Update(ctx context.Context, g *models.Good) error
	Delete(ctx context.Context, g *models.Good) error
}

type GormGoodRepository struct {
	db *gorm.DB
}

func NewGormGoodRepository(db *gorm.DB) GoodRepository {
	return &GormGoodRepository{db: db}
}

func (r *GormGoodRepository) FindByID(ctx context.Context, id uuid.UUID, fetch Fetch) (*models.Good, error) {
	var g models.Good
	err := fetch.applyToGoods(r.db.WithContext(ctx)).First(&g, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GormGoodRepository) Find(ctx context.Context, q GoodsQuery, fetch Fetch) ([]models.Good, error) {
	db := fetch.applyToGoods(r.db.WithContext(ctx))
	if q.ID != nil {
		db = db.Where("id = ?", *q.ID)
	}
	if !q.ShowHidden {
		db = db.Where("show_in_catalog = ?", true)
	}

	goods := []models.Good{}
	if err := db.Order("created_at DESC").Find(&goods).Error; err != nil {
		return nil, err
	}
	return goods, nil
}

// Create inserts the good row only; variations are created through their own repository.
func (r *GormGoodRepository) Create(ctx context.Context, g *models.Good) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(g).Error
}

func (r *GormGoodRepository) Update(ctx context.Context, g *models.Good) error {
	return r.db.WithContext(ctx).Model(g).Omit(clause.Associations).Updates(map[string]interface{}{
		"title":           g.Title,
		"description":     g.Description,
		"show_in_catalog": g.ShowInCatalog,
	}).Error
}

// Delete removes the good row; variations and photos go with it through the
// ON DELETE CASCADE foreign keys.
func (r *GormGoodRepository) Delete(ctx context.Context, g *models.Good) error {
	return r.db.WithContext(ctx).Delete(&models.Good{}, "id = ?", g.ID).Error
}
