package repository

import (
	"context"

	"gorm.io/gorm"
)

// UnitOfWork bundles the repositories of one request. Atomic runs fn inside a
// single transaction, handing it a UnitOfWork bound to that transaction; the
// transaction commits when fn returns nil and rolls back otherwise.
type UnitOfWork interface {
	Goods() GoodRepository
	Variations() VariationRepository
	Photos() PhotoRepository
	Atomic(ctx context.Context, fn func(tx UnitOfWork) error) error
}

type GormUnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

func (u *GormUnitOfWork) Goods() GoodRepository { return NewGormGoodRepository(u.db) }

func (u *GormUnitOfWork) Variations() VariationRepository { return NewGormVariationRepository(u.db) }

func (u *GormUnitOfWork) Photos() PhotoRepository { return NewGormPhotoRepository(u.db) }

func (u *GormUnitOfWork) Atomic(ctx context.Context, fn func(tx UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormUnitOfWork{db: tx})
	})
}
