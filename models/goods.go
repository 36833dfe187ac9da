package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Good is a catalog product entry. It owns its variations.
type Good struct {
	ID            uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title         string      `gorm:"type:varchar(255);not null" json:"title"`
	Description   string      `gorm:"type:text" json:"description"`
	ShowInCatalog bool        `gorm:"not null;default:false" json:"show_in_catalog"`
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
	Variations    []Variation `gorm:"foreignKey:GoodID;constraint:OnDelete:CASCADE" json:"variations"`
}

// Variation is a sellable variant of a Good with its own stock and dimensions.
type Variation struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GoodID             uuid.UUID  `gorm:"type:uuid;not null;index" json:"good_id"`
	Title              string     `gorm:"type:varchar(255);not null" json:"title"`
	Description        string     `gorm:"type:text" json:"description"`
	Length             *float64   `json:"length"`
	Width              *float64   `json:"width"`
	Height             *float64   `json:"height"`
	Weight             *float64   `json:"weight"`
	RemainingStock     int        `gorm:"not null;default:0" json:"remaining_stock"`
	RemainingStockDate *time.Time `json:"remaining_stock_date"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Photos             []Photo    `gorm:"foreignKey:VariationID;constraint:OnDelete:CASCADE" json:"photos"`
}

// Photo is an image attached to a Variation, referenced by URL.
// IsMain is stored but never promoted by any operation.
type Photo struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VariationID uuid.UUID `gorm:"type:uuid;not null;index" json:"variation_id"`
	URL         string    `gorm:"type:text;not null" json:"url"`
	IsMain      bool      `gorm:"not null;default:false" json:"is_main"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// MarshalJSON renders unloaded variations as an empty list.
func (g Good) MarshalJSON() ([]byte, error) {
	type plain Good
	out := plain(g)
	if out.Variations == nil {
		out.Variations = []Variation{}
	}
	return json.Marshal(out)
}

// MarshalJSON renders unloaded photos as an empty list.
func (v Variation) MarshalJSON() ([]byte, error) {
	type plain Variation
	out := plain(v)
	if out.Photos == nil {
		out.Photos = []Photo{}
	}
	return json.Marshal(out)
}

func (g *Good) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

func (v *Variation) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PhotoURLs collects the urls of every photo under the good.
func (g *Good) PhotoURLs() []string {
	var urls []string
	for i := range g.Variations {
		urls = append(urls, g.Variations[i].PhotoURLs()...)
	}
	return urls
}

// PhotoURLs collects the urls of the variation's photos.
func (v *Variation) PhotoURLs() []string {
	urls := make([]string, 0, len(v.Photos))
	for _, p := range v.Photos {
		urls = append(urls, p.URL)
	}
	return urls
}

// FindPhoto returns the loaded photo with the given id, or nil.
func (v *Variation) FindPhoto(id uuid.UUID) *Photo {
	for i := range v.Photos {
		if v.Photos[i].ID == id {
			return &v.Photos[i]
		}
	}
	return nil
}

// Tables lists the models handed to AutoMigrate, parents first.
var Tables = []interface{}{
	&Good{},
	&Variation{},
	&Photo{},
}
