package services_test

import (
	"context"
	"errors"
	"sort"
	"time"

	"catalog-service/models"
	"catalog-service/repository"

	"github.com/google/uuid"
)

var errForeignKey = errors.New(`insert or update on table "variations" violates foreign key constraint`)

// memStore is an in-memory stand-in for the gorm unit of work. Atomic
// snapshots the maps and restores them when fn fails.
type memStore struct {
	goods      map[uuid.UUID]models.Good
	variations map[uuid.UUID]models.Variation
	photos     map[uuid.UUID]models.Photo
	clock      time.Time
	atomics    int
}

func newMemStore() *memStore {
	return &memStore{
		goods:      map[uuid.UUID]models.Good{},
		variations: map[uuid.UUID]models.Variation{},
		photos:     map[uuid.UUID]models.Photo{},
		clock:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) Goods() repository.GoodRepository           { return memGoods{s} }
func (s *memStore) Variations() repository.VariationRepository { return memVariations{s} }
func (s *memStore) Photos() repository.PhotoRepository         { return memPhotos{s} }

func (s *memStore) Atomic(ctx context.Context, fn func(tx repository.UnitOfWork) error) error {
	s.atomics++
	goods, variations, photos := clone(s.goods), clone(s.variations), clone(s.photos)
	if err := fn(s); err != nil {
		s.goods, s.variations, s.photos = goods, variations, photos
		return err
	}
	return nil
}

func clone[V any](m map[uuid.UUID]V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) photosOf(variationID uuid.UUID) []models.Photo {
	out := []models.Photo{}
	for _, p := range s.photos {
		if p.VariationID == variationID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *memStore) variationsOf(goodID uuid.UUID, withPhotos bool) []models.Variation {
	out := []models.Variation{}
	for _, v := range s.variations {
		if v.GoodID == goodID {
			if withPhotos {
				v.Photos = s.photosOf(v.ID)
			}
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *memStore) hydrate(g models.Good, fetch repository.Fetch) models.Good {
	if fetch.Variations || fetch.Photos {
		g.Variations = s.variationsOf(g.ID, fetch.Photos)
	}
	return g
}

type memGoods struct{ s *memStore }

func (r memGoods) FindByID(ctx context.Context, id uuid.UUID, fetch repository.Fetch) (*models.Good, error) {
	g, ok := r.s.goods[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	g = r.s.hydrate(g, fetch)
	return &g, nil
}

func (r memGoods) Find(ctx context.Context, q repository.GoodsQuery, fetch repository.Fetch) ([]models.Good, error) {
	out := []models.Good{}
	for _, g := range r.s.goods {
		if q.ID != nil && g.ID != *q.ID {
			continue
		}
		if !q.ShowHidden && !g.ShowInCatalog {
			continue
		}
		out = append(out, r.s.hydrate(g, fetch))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memGoods) Create(ctx context.Context, g *models.Good) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	g.CreatedAt = r.s.tick()
	stored := *g
	stored.Variations = nil
	r.s.goods[g.ID] = stored
	return nil
}

func (r memGoods) Update(ctx context.Context, g *models.Good) error {
	if _, ok := r.s.goods[g.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *g
	stored.Variations = nil
	r.s.goods[g.ID] = stored
	return nil
}

func (r memGoods) Delete(ctx context.Context, g *models.Good) error {
	delete(r.s.goods, g.ID)
	for id, v := range r.s.variations {
		if v.GoodID == g.ID {
			_ = memVariations{r.s}.Delete(ctx, &models.Variation{ID: id})
		}
	}
	return nil
}

type memVariations struct{ s *memStore }

func (r memVariations) FindByID(ctx context.Context, id uuid.UUID, fetch repository.Fetch) (*models.Variation, error) {
	v, ok := r.s.variations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if fetch.Photos {
		v.Photos = r.s.photosOf(id)
	}
	return &v, nil
}

func (r memVariations) Create(ctx context.Context, v *models.Variation) error {
	if _, ok := r.s.goods[v.GoodID]; !ok {
		return errForeignKey
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = r.s.tick()
	stored := *v
	stored.Photos = nil
	r.s.variations[v.ID] = stored
	return nil
}

func (r memVariations) Update(ctx context.Context, v *models.Variation) error {
	if _, ok := r.s.variations[v.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *v
	stored.Photos = nil
	r.s.variations[v.ID] = stored
	return nil
}

func (r memVariations) Delete(ctx context.Context, v *models.Variation) error {
	delete(r.s.variations, v.ID)
	for id, p := range r.s.photos {
		if p.VariationID == v.ID {
			delete(r.s.photos, id)
		}
	}
	return nil
}

type memPhotos struct{ s *memStore }

func (r memPhotos) Create(ctx context.Context, p *models.Photo) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = r.s.tick()
	r.s.photos[p.ID] = *p
	return nil
}

func (r memPhotos) Delete(ctx context.Context, p *models.Photo) error {
	delete(r.s.photos, p.ID)
	return nil
}

type fakeStorage struct {
	removed []string
	err     error
}

func (f *fakeStorage) Remove(ctx context.Context, url string) error {
	if f.err != nil {
		return f.err
	}
	f.removed = append(f.removed, url)
	return nil
}

type fakePublisher struct {
	events []models.CatalogEvent
}

func (f *fakePublisher) Publish(ctx context.Context, event models.CatalogEvent) {
	f.events = append(f.events, event)
}

func (f *fakePublisher) types() []string {
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.EventType)
	}
	return out
}
