package routes_test

import (
	"context"
	"net/http"
	"testing"

	"catalog-service/controllers"
	"catalog-service/repository"
	"catalog-service/routes"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRegisterCatalogRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cc := controllers.NewCatalogController(nil, nil)

	assert.NotPanics(t, func() {
		routes.RegisterCatalogRoutes(r, "/goods", cc, func(ctx context.Context) repository.UnitOfWork { return nil })
	})

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		http.MethodGet + " /goods/",
		http.MethodGet + " /goods/:good_id",
		http.MethodPut + " /goods/update",
		http.MethodPost + " /goods/create",
		http.MethodPost + " /goods/variations/set-remaining-stock",
		http.MethodDelete + " /goods/:good_id",
		http.MethodGet + " /goods/variation/:variation_id",
		http.MethodDelete + " /goods/variation/:variation_id",
		http.MethodPost + " /goods/variation/:id",
		http.MethodPut + " /goods/variation/:variation_id",
		http.MethodPost + " /goods/variation/:id/upload-photo",
		http.MethodDelete + " /goods/variation/:variation_id/delete-photo/:id",
	}
	for _, route := range expected {
		assert.True(t, registered[route], route)
	}
	assert.Len(t, r.Routes(), len(expected))
}
