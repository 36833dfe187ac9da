package models

// CreateGoodRequest is the payload for POST /create and POST /variation/:id.
type CreateGoodRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
}

// UpdateGoodRequest is the payload for PUT /update. ShowInCatalog is only
// applied when present.
type UpdateGoodRequest struct {
	ID            string `json:"id" binding:"required,uuid"`
	Title         string `json:"title" binding:"required,max=255"`
	Description   string `json:"description"`
	ShowInCatalog *bool  `json:"show_in_catalog"`
}

// UpdateVariationRequest is the payload for PUT /variation/:variation_id.
// All six fields overwrite the stored values, nil dimensions included.
type UpdateVariationRequest struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Description string   `json:"description"`
	Length      *float64 `json:"length"`
	Width       *float64 `json:"width"`
	Height      *float64 `json:"height"`
	Weight      *float64 `json:"weight"`
}

type UploadPhotoRequest struct {
	URL string `json:"url" binding:"required"`
}

// SetRemainingStockRequest is the payload for POST /variations/set-remaining-stock.
type SetRemainingStockRequest struct {
	VariationID    string `json:"variation_id" binding:"required,uuid"`
	RemainingStock *int   `json:"remaining_stock" binding:"required"`
}

// GoodsFilter carries the query parameters of GET /.
// Page and Size are validated but not applied to the query.
type GoodsFilter struct {
	ID         string `form:"id" binding:"omitempty,uuid"`
	ShowHidden bool   `form:"show_hidden"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	Size       int    `form:"size" binding:"omitempty,min=1,max=100"`
	Include    string `form:"include" binding:"omitempty,oneof=none variations photos"`
}
