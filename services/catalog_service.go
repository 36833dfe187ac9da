package services

import (
	"context"
	"errors"
	"time"

	"catalog-service/models"
	aws_pkg "catalog-service/pkg/aws"
	"catalog-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService defines the business logic interface. Every call gets the
// request's unit of work; mutations run inside uow.Atomic.
type CatalogService interface {
	GetByID(ctx context.Context, uow repository.UnitOfWork, id uuid.UUID, fetch repository.Fetch) (*models.Good, error)
	GetGoods(ctx context.Context, uow repository.UnitOfWork, filter GoodsFilter, fetch repository.Fetch) ([]models.Good, error)
	Update(ctx context.Context, uow repository.UnitOfWork, id uuid.UUID, req *models.UpdateGoodRequest) (*models.Good, error)
	Create(ctx context.Context, uow repository.UnitOfWork, req *models.CreateGoodRequest) (*models.Good, error)
	Delete(ctx context.Context, uow repository.UnitOfWork, id uuid.UUID) error

	GetVariationByID(ctx context.Context, uow repository.UnitOfWork, id uuid.UUID, fetch repository.Fetch) (*models.Variation, error)
	CreateVariation(ctx context.Context, uow repository.UnitOfWork, goodID uuid.UUID, req *models.CreateGoodRequest) (*models.Variation, error)
	UpdateVariation(ctx context.Context, uow repository.UnitOfWork, id uuid.UUID, req *models.UpdateVariationRequest) (*models.Variation, error)
	DeleteVariation(ctx context.Context, uow repository.UnitOfWork, id uuid.UUID) error

	UploadPhoto(ctx context.Context, uow repository.UnitOfWork, variationID uuid.UUID, url string) (*models.Variation, error)
	DeletePhoto(ctx context.Context, uow repository.UnitOfWork, variationID, photoID uuid.UUID) (*models.Variation, error)
	SetRemainingStock(ctx context.Context, uow repository.UnitOfWork, variationID uuid.UUID, stock int) (*models.Variation, error)
}

// GoodsFilter is the parsed listing filter. Page and Size are carried but not
// applied.
type GoodsFilter struct {
	ID         *uuid.UUID
	ShowHidden bool
	Page       int
	Size       int
}

type catalogServiceImpl struct {
	storage PhotoStorage
	events  EventPublisher
	metrics aws_pkg.MetricsRecorder
	logger  *zap.Logger
	now     func() time.Time
}

// NewCatalogService creates a new CatalogService. events and metrics may be nil.
func NewCatalogService(
	storage PhotoStorage,
	events EventPublisher,
	metrics aws_pkg.MetricsRecorder,
	logger *zap.Logger,
) CatalogService {
	return &catalogServiceImpl{
		storage: storage,
		events:  events,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// GetByID returns nil, nil when no good has the id.
func (s *catalogServiceImpl) GetByID(ctx context.Context, uow repository.UnitOfWork, id uuid.UUID, fetch repository.Fetch) (*models.Good, error) {
	good, err := uow.Goods().FindByID(ctx, id, fetch)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return good, err
}

func (s *catalogServiceImpl) GetGoods(ctx context.Context, uow repository.UnitOfWork, filter GoodsFilter, fetch repository.Fetch) ([]models.Good, error) {
	return uow.Goods().Find(ctx, repository.GoodsQuery{
		ID:         filter.ID,
		ShowHidden: filter.ShowHidden,
	}, fetch)
}

// Update overwrites title and description, and show_in_catalog only when the
// request carries it.
func (s *catalogServiceImpl) Update(ctx context.Context, uow repository.UnitOfWork, id uuid.UUID, req *models.UpdateGoodRequest) (*models.Good, error) {
	var good *models.Good
	err := uow.Atomic(ctx, func(tx repository.UnitOfWork) error {
		var err error
		good, err = tx.Goods().FindByID(ctx, id, repository.FetchAll)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGoodNotFound
		}
		if err != nil {
			return err
		}

		good.Title = req.Title
		good.Description = req.Description
		if req.ShowInCatalog != nil {
			good.ShowInCatalog = *req.ShowInCatalog
		}
		return tx.Goods().Update(ctx, good)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, models.CatalogEvent{EventType: models.EventGoodUpdated, GoodID: good.ID.String()})
	return good, nil
}

// Create stores the good together with its first variation, which copies the
// good's title and description.
func (s *catalogServiceImpl) Create(ctx context.Context, uow repository.UnitOfWork, req *models.CreateGoodRequest) (*models.Good, error) {
	good := &models.Good{Title: req.Title, Description: req.Description}
	err := uow.Atomic(ctx, func(tx repository.UnitOfWork) error {
		if err := tx.Goods().Create(ctx, good); err != nil {
			return err
		}
		variation := models.Variation{GoodID: good.ID, Title: req.Title, Description: req.Description}
		if err := tx.Variations().Create(ctx, &variation); err != nil {
			return err
		}
		good.Variations = []models.Variation{variation}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Good created", zap.String("good_id", good.ID.String()))
	s.count(ctx, aws_pkg.MetricGoodsCreated)
	s.publish(ctx, models.CatalogEvent{EventType: models.EventGoodCreated, GoodID: good.ID.String()})
	return good, nil
}

// Delete removes the good; the store cascades to variations and photos.
// Photo files are cleaned up after commit.
func (s *catalogServiceImpl) Delete(ctx context.Context, uow repository.UnitOfWork, id uuid.UUID) error {
	var urls []string
	err := uow.Atomic(ctx, func(tx repository.UnitOfWork) error {
		good, err := tx.Goods().FindByID(ctx, id, repository.FetchAll)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGoodNotFound
		}
		if err != nil {
			return err
		}
		urls = good.PhotoURLs()
		return tx.Goods().Delete(ctx, good)
	})
	if err != nil {
		return err
	}

	s.removeFiles(ctx, urls)
	s.count(ctx, aws_pkg.MetricGoodsDeleted)
	s.publish(ctx, models.CatalogEvent{EventType: models.EventGoodDeleted, GoodID: id.String()})
	return nil
}

// GetVariationByID returns nil, nil when no variation has the id.
func (s *catalogServiceImpl) GetVariationByID(ctx context.Context, uow repository.UnitOfWork, id uuid.UUID, fetch repository.Fetch) (*models.Variation, error) {
	variation, err := uow.Variations().FindByID(ctx, id, fetch)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return variation, err
}

// CreateVariation does not look the good up; an unknown good_id surfaces as
// the store's foreign key error.
func (s *catalogServiceImpl) CreateVariation(ctx context.Context, uow repository.UnitOfWork, goodID uuid.UUID, req *models.CreateGoodRequest) (*models.Variation, error) {
	variation := &models.Variation{GoodID: goodID, Title: req.Title, Description: req.Description}
	err := uow.Atomic(ctx, func(tx repository.UnitOfWork) error {
		return tx.Variations().Create(ctx, variation)
	})
	if err != nil {
		return nil, err
	}
	variation.Photos = []models.Photo{}

	s.publish(ctx, models.CatalogEvent{
		EventType:   models.EventVariationCreated,
		GoodID:      goodID.String(),
		VariationID: variation.ID.String(),
	})
	return variation, nil
}

func (s *catalogServiceImpl) UpdateVariation(ctx context.Context, uow repository.UnitOfWork, id uuid.UUID, req *models.UpdateVariationRequest) (*models.Variation, error) {
	var variation *models.Variation
	err := uow.Atomic(ctx, func(tx repository.UnitOfWork) error {
		var err error
		variation, err = s.loadVariation(ctx, tx, id)
		if err != nil {
			return err
		}

		variation.Title = req.Title
		variation.Description = req.Description
		variation.Length = req.Length
		variation.Width = req.Width
		variation.Height = req.Height
		variation.Weight = req.Weight
		return tx.Variations().Update(ctx, variation)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, models.CatalogEvent{
		EventType:   models.EventVariationUpdated,
		GoodID:      variation.GoodID.String(),
		VariationID: variation.ID.String(),
	})
	return variation, nil
}

func (s *catalogServiceImpl) DeleteVariation(ctx context.Context, uow repository.UnitOfWork, id uuid.UUID) error {
	var variation *models.Variation
	err := uow.Atomic(ctx, func(tx repository.UnitOfWork) error {
		var err error
		variation, err = s.loadVariation(ctx, tx, id)
		if err != nil {
			return err
		}
		return tx.Variations().Delete(ctx, variation)
	})
	if err != nil {
		return err
	}

	s.removeFiles(ctx, variation.PhotoURLs())
	s.publish(ctx, models.CatalogEvent{
		EventType:   models.EventVariationDeleted,
		GoodID:      variation.GoodID.String(),
		VariationID: variation.ID.String(),
	})
	return nil
}

// UploadPhoto appends a non-main photo to the variation.
func (s *catalogServiceImpl) UploadPhoto(ctx context.Context, uow repository.UnitOfWork, variationID uuid.UUID, url string) (*models.Variation, error) {
	var (
		variation *models.Variation
		photo     models.Photo
	)
	err := uow.Atomic(ctx, func(tx repository.UnitOfWork) error {
		var err error
		variation, err = s.loadVariation(ctx, tx, variationID)
		if err != nil {
			return err
		}

		photo = models.Photo{VariationID: variation.ID, URL: url, IsMain: false}
		if err := tx.Photos().Create(ctx, &photo); err != nil {
			return err
		}
		variation.Photos = append(variation.Photos, photo)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.count(ctx, aws_pkg.MetricPhotosUploaded)
	s.publish(ctx, models.CatalogEvent{
		EventType:   models.EventPhotoUploaded,
		GoodID:      variation.GoodID.String(),
		VariationID: variation.ID.String(),
		PhotoID:     photo.ID.String(),
	})
	return variation, nil
}

// DeletePhoto deletes the row, then the file, inside one transaction. A
// missing file is ignored; any other storage error rolls the row back.
func (s *catalogServiceImpl) DeletePhoto(ctx context.Context, uow repository.UnitOfWork, variationID, photoID uuid.UUID) (*models.Variation, error) {
	var variation *models.Variation
	err := uow.Atomic(ctx, func(tx repository.UnitOfWork) error {
		var err error
		variation, err = s.loadVariation(ctx, tx, variationID)
		if err != nil {
			return err
		}

		photo := variation.FindPhoto(photoID)
		if photo == nil {
			return ErrPhotoNotFound
		}
		if err := tx.Photos().Delete(ctx, photo); err != nil {
			return err
		}
		if err := s.storage.Remove(ctx, photo.URL); err != nil {
			return err
		}

		remaining := make([]models.Photo, 0, len(variation.Photos)-1)
		for _, p := range variation.Photos {
			if p.ID != photoID {
				remaining = append(remaining, p)
			}
		}
		variation.Photos = remaining
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.count(ctx, aws_pkg.MetricPhotosDeleted)
	s.publish(ctx, models.CatalogEvent{
		EventType:   models.EventPhotoDeleted,
		GoodID:      variation.GoodID.String(),
		VariationID: variation.ID.String(),
		PhotoID:     photoID.String(),
	})
	return variation, nil
}

func (s *catalogServiceImpl) SetRemainingStock(ctx context.Context, uow repository.UnitOfWork, variationID uuid.UUID, stock int) (*models.Variation, error) {
	var variation *models.Variation
	err := uow.Atomic(ctx, func(tx repository.UnitOfWork) error {
		var err error
		variation, err = s.loadVariation(ctx, tx, variationID)
		if err != nil {
			return err
		}

		now := s.now()
		variation.RemainingStock = stock
		variation.RemainingStockDate = &now
		return tx.Variations().Update(ctx, variation)
	})
	if err != nil {
		return nil, err
	}

	s.count(ctx, aws_pkg.MetricStockUpdated)
	s.publish(ctx, models.CatalogEvent{
		EventType:      models.EventStockUpdated,
		GoodID:         variation.GoodID.String(),
		VariationID:    variation.ID.String(),
		RemainingStock: &stock,
	})
	return variation, nil
}

func (s *catalogServiceImpl) loadVariation(ctx context.Context, tx repository.UnitOfWork, id uuid.UUID) (*models.Variation, error) {
	variation, err := tx.Variations().FindByID(ctx, id, repository.FetchAll)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrVariationNotFound
	}
	return variation, err
}

// removeFiles runs after a cascading delete has committed, so failures are
// only logged.
func (s *catalogServiceImpl) removeFiles(ctx context.Context, urls []string) {
	for _, u := range urls {
		if err := s.storage.Remove(ctx, u); err != nil {
			s.logger.Warn("Failed to remove photo file", zap.String("url", u), zap.Error(err))
		}
	}
}

func (s *catalogServiceImpl) publish(ctx context.Context, event models.CatalogEvent) {
	if s.events == nil {
		s.logger.Debug("Event publisher not configured, skipping event", zap.String("event_type", event.EventType))
		return
	}
	event.Timestamp = s.now()
	s.events.Publish(ctx, event)
}

func (s *catalogServiceImpl) count(ctx context.Context, metric string) {
	if s.metrics == nil || !s.metrics.IsEnabled() {
		return
	}
	go func() {
		mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.metrics.RecordCount(mctx, metric, map[string]string{"Service": "catalog-service"}); err != nil {
			s.logger.Debug("Failed to record metric", zap.String("metric", metric), zap.Error(err))
		}
	}()
}
