package repository

import "gorm.io/gorm"

// Fetch says how deep a read eager-loads. Photos implies Variations when
// loading goods.
type Fetch struct {
	Variations bool
	Photos     bool
}

var (
	FetchNone       = Fetch{}
	FetchVariations = Fetch{Variations: true}
	FetchAll        = Fetch{Variations: true, Photos: true}
)

// ParseFetch maps the include query value onto a Fetch. Empty means FetchAll.
func ParseFetch(include string) Fetch {
	switch include {
	case "none":
		return FetchNone
	case "variations":
		return FetchVariations
	default:
		return FetchAll
	}
}

func orderByCreated(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

func (f Fetch) applyToGoods(db *gorm.DB) *gorm.DB {
	if f.Variations || f.Photos {
		db = db.Preload("Variations", orderByCreated)
	}
	if f.Photos {
		db = db.Preload("Variations.Photos", orderByCreated)
	}
	return db
}

func (f Fetch) applyToVariations(db *gorm.DB) *gorm.DB {
	if f.Photos {
		db = db.Preload("Photos", orderByCreated)
	}
	return db
}
