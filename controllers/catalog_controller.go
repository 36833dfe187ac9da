package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"catalog-service/middleware"
	"catalog-service/models"
	"catalog-service/pkg/apperrors"
	"catalog-service/repository"
	"catalog-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	MsgGoodNotFound      = "Good with provided id can not be found"
	MsgVariationNotFound = "Good variation with provided id can not be found"
	MsgPhotoNotFound     = "Photo with provided id can not be found"
)

// CatalogController handles HTTP requests for goods, variations and photos.
type CatalogController struct {
	catalogService services.CatalogService
	cache          *CacheManager
}

// NewCatalogController creates a new CatalogController. cache may be nil.
func NewCatalogController(svc services.CatalogService, cache *CacheManager) *CatalogController {
	return &CatalogController{catalogService: svc, cache: cache}
}

// GetGoods handles GET /
func (cc *CatalogController) GetGoods(ctx *gin.Context) {
	var filter models.GoodsFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		bindingError(ctx, err)
		return
	}

	parsed := services.GoodsFilter{ShowHidden: filter.ShowHidden, Page: filter.Page, Size: filter.Size}
	if filter.ID != "" {
		id := uuid.MustParse(filter.ID)
		parsed.ID = &id
	}

	cacheKey := "list:" + filter.ID + ":" + boolKey(filter.ShowHidden) + ":" + includeKey(filter.Include)
	version, cacheable, served := cc.serveCached(ctx, cacheKey)
	if served {
		return
	}

	goods, err := cc.catalogService.GetGoods(ctx.Request.Context(), middleware.UnitOfWorkFrom(ctx), parsed, repository.ParseFetch(filter.Include))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	cc.respondAndCache(ctx, cacheable, version, cacheKey, goods)
}

// GetGood handles GET /:good_id
func (cc *CatalogController) GetGood(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "good_id", MsgGoodNotFound)
	if !ok {
		return
	}
	include := ctx.Query("include")

	cacheKey := "good:" + id.String() + ":" + includeKey(include)
	version, cacheable, served := cc.serveCached(ctx, cacheKey)
	if served {
		return
	}

	good, err := cc.catalogService.GetByID(ctx.Request.Context(), middleware.UnitOfWorkFrom(ctx), id, repository.ParseFetch(include))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	if good == nil {
		_ = ctx.Error(apperrors.NotFound(MsgGoodNotFound, nil))
		return
	}

	cc.respondAndCache(ctx, cacheable, version, cacheKey, good)
}

// Update handles PUT /update
func (cc *CatalogController) Update(ctx *gin.Context) {
	var req models.UpdateGoodRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindingError(ctx, err)
		return
	}

	good, err := cc.catalogService.Update(ctx.Request.Context(), middleware.UnitOfWorkFrom(ctx), uuid.MustParse(req.ID), &req)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	cc.cache.Invalidate(ctx.Request.Context())
	ctx.JSON(http.StatusOK, good)
}

// Create handles POST /create
func (cc *CatalogController) Create(ctx *gin.Context) {
	var req models.CreateGoodRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindingError(ctx, err)
		return
	}

	good, err := cc.catalogService.Create(ctx.Request.Context(), middleware.UnitOfWorkFrom(ctx), &req)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	cc.cache.Invalidate(ctx.Request.Context())
	ctx.JSON(http.StatusOK, gin.H{"status": "success", "id": good.ID})
}

// SetRemainingStock handles POST /variations/set-remaining-stock
func (cc *CatalogController) SetRemainingStock(ctx *gin.Context) {
	var req models.SetRemainingStockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindingError(ctx, err)
		return
	}

	variation, err := cc.catalogService.SetRemainingStock(ctx.Request.Context(), middleware.UnitOfWorkFrom(ctx),
		uuid.MustParse(req.VariationID), *req.RemainingStock)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	cc.cache.Invalidate(ctx.Request.Context())
	ctx.JSON(http.StatusOK, variation)
}

// Delete handles DELETE /:good_id
func (cc *CatalogController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "good_id", MsgGoodNotFound)
	if !ok {
		return
	}

	if err := cc.catalogService.Delete(ctx.Request.Context(), middleware.UnitOfWorkFrom(ctx), id); err != nil {
		handleServiceError(ctx, err)
		return
	}

	cc.cache.Invalidate(ctx.Request.Context())
	ctx.JSON(http.StatusOK, gin.H{"detail": "Good deleted successfully"})
}

// GetVariation handles GET /variation/:variation_id
func (cc *CatalogController) GetVariation(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "variation_id", MsgVariationNotFound)
	if !ok {
		return
	}

	variation, err := cc.catalogService.GetVariationByID(ctx.Request.Context(), middleware.UnitOfWorkFrom(ctx), id,
		repository.ParseFetch(ctx.Query("include")))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	if variation == nil {
		_ = ctx.Error(apperrors.NotFound(MsgVariationNotFound, nil))
		return
	}

	ctx.JSON(http.StatusOK, variation)
}

// DeleteVariation handles DELETE /variation/:variation_id
func (cc *CatalogController) DeleteVariation(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "variation_id", MsgVariationNotFound)
	if !ok {
		return
	}

	if err := cc.catalogService.DeleteVariation(ctx.Request.Context(), middleware.UnitOfWorkFrom(ctx), id); err != nil {
		handleServiceError(ctx, err)
		return
	}

	cc.cache.Invalidate(ctx.Request.Context())
	ctx.JSON(http.StatusOK, gin.H{"detail": "Good variation deleted successfully"})
}

// CreateVariation handles POST /variation/:id where id is the good id. The
// good is not looked up, so a malformed id is a validation error rather than
// a missing good.
func (cc *CatalogController) CreateVariation(ctx *gin.Context) {
	goodID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		_ = ctx.Error(apperrors.New(http.StatusUnprocessableEntity,
			[]FieldError{{Field: "id", Message: "value is not a valid uuid"}}, err))
		return
	}
	var req models.CreateGoodRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindingError(ctx, err)
		return
	}

	variation, err := cc.catalogService.CreateVariation(ctx.Request.Context(), middleware.UnitOfWorkFrom(ctx), goodID, &req)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	cc.cache.Invalidate(ctx.Request.Context())
	ctx.JSON(http.StatusOK, variation)
}

// UpdateVariation handles PUT /variation/:variation_id
func (cc *CatalogController) UpdateVariation(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "variation_id", MsgVariationNotFound)
	if !ok {
		return
	}
	var req models.UpdateVariationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindingError(ctx, err)
		return
	}

	variation, err := cc.catalogService.UpdateVariation(ctx.Request.Context(), middleware.UnitOfWorkFrom(ctx), id, &req)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	cc.cache.Invalidate(ctx.Request.Context())
	ctx.JSON(http.StatusOK, variation)
}

// UploadPhoto handles POST /variation/:id/upload-photo where id is the variation id.
func (cc *CatalogController) UploadPhoto(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", MsgVariationNotFound)
	if !ok {
		return
	}
	var req models.UploadPhotoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindingError(ctx, err)
		return
	}

	if _, err := cc.catalogService.UploadPhoto(ctx.Request.Context(), middleware.UnitOfWorkFrom(ctx), id, req.URL); err != nil {
		handleServiceError(ctx, err)
		return
	}

	cc.cache.Invalidate(ctx.Request.Context())
	ctx.JSON(http.StatusOK, gin.H{"status": "success"})
}

// DeletePhoto handles DELETE /variation/:variation_id/delete-photo/:id
func (cc *CatalogController) DeletePhoto(ctx *gin.Context) {
	variationID, ok := parseIDParam(ctx, "variation_id", MsgVariationNotFound)
	if !ok {
		return
	}
	photoID, ok := parseIDParam(ctx, "id", MsgPhotoNotFound)
	if !ok {
		return
	}

	variation, err := cc.catalogService.DeletePhoto(ctx.Request.Context(), middleware.UnitOfWorkFrom(ctx), variationID, photoID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	cc.cache.Invalidate(ctx.Request.Context())
	ctx.JSON(http.StatusOK, variation)
}

// parseIDParam reads a uuid path parameter. A malformed id cannot name a
// stored row, so it is answered with the entity's 404.
func parseIDParam(ctx *gin.Context, name, notFoundMsg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		_ = ctx.Error(apperrors.NotFound(notFoundMsg, err))
		return uuid.Nil, false
	}
	return id, true
}

func handleServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrGoodNotFound):
		_ = ctx.Error(apperrors.NotFound(MsgGoodNotFound, err))
	case errors.Is(err, services.ErrVariationNotFound):
		_ = ctx.Error(apperrors.NotFound(MsgVariationNotFound, err))
	case errors.Is(err, services.ErrPhotoNotFound):
		_ = ctx.Error(apperrors.NotFound(MsgPhotoNotFound, err))
	default:
		_ = ctx.Error(apperrors.Internal(err))
	}
}

// serveCached answers from the cache when possible. Otherwise it returns the
// cache version the fresh response should be stored under.
func (cc *CatalogController) serveCached(ctx *gin.Context, key string) (version int64, cacheable, served bool) {
	body, version, cacheable := cc.cache.Lookup(ctx.Request.Context(), key)
	if body == nil {
		return version, cacheable, false
	}
	ctx.Header("X-Cache", "HIT")
	ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
	return version, cacheable, true
}

func (cc *CatalogController) respondAndCache(ctx *gin.Context, cacheable bool, version int64, key string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		_ = ctx.Error(apperrors.Internal(err))
		return
	}
	if cacheable {
		cc.cache.StoreAsync(version, key, body)
	}
	ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func boolKey(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func includeKey(include string) string {
	switch include {
	case "none", "variations":
		return include
	default:
		return "photos"
	}
}
