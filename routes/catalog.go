package routes

import (
	"catalog-service/controllers"
	"catalog-service/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterCatalogRoutes mounts the catalog under prefix. Every request gets
// its own unit of work from open.
//
// Both POST routes under /variation share the :id wildcard (good id for
// create, variation id for upload-photo) because gin allows only one
// wildcard name per position.
func RegisterCatalogRoutes(r *gin.Engine, prefix string, cc *controllers.CatalogController, open middleware.UnitOfWorkFactory) {
	goods := r.Group(prefix)
	goods.Use(middleware.UnitOfWork(open))

	goods.GET("/", cc.GetGoods)
	goods.PUT("/update", cc.Update)
	goods.POST("/create", cc.Create)
	goods.POST("/variations/set-remaining-stock", cc.SetRemainingStock)
	goods.GET("/:good_id", cc.GetGood)
	goods.DELETE("/:good_id", cc.Delete)

	variation := goods.Group("/variation")
	variation.GET("/:variation_id", cc.GetVariation)
	variation.DELETE("/:variation_id", cc.DeleteVariation)
	variation.PUT("/:variation_id", cc.UpdateVariation)
	variation.POST("/:id", cc.CreateVariation)
	variation.POST("/:id/upload-photo", cc.UploadPhoto)
	variation.DELETE("/:variation_id/delete-photo/:id", cc.DeletePhoto)
}
