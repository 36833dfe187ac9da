package repository

import (
	"context"

	"catalog-service/models"

	"gorm.io/gorm"
)

type PhotoRepository interface {
	Create(ctx context.Context, p *models.Photo) error
	Delete(ctx context.Context, p *models.Photo) error
}

type GormPhotoRepository struct {
	db *gorm.DB
}

func NewGormPhotoRepository(db *gorm.DB) PhotoRepository {
	return &GormPhotoRepository{db: db}
}

func (r *GormPhotoRepository) Create(ctx context.Context, p *models.Photo) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *GormPhotoRepository) Delete(ctx context.Context, p *models.Photo) error {
	return r.db.WithContext(ctx).Delete(&models.Photo{}, "id = ?", p.ID).Error
}
