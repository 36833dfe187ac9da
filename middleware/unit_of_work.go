package middleware

import (
	"context"

	"catalog-service/repository"

	"github.com/gin-gonic/gin"
)

const unitOfWorkKey = "unit_of_work"

// UnitOfWorkFactory opens a unit of work bound to a request context.
type UnitOfWorkFactory func(ctx context.Context) repository.UnitOfWork

// UnitOfWork opens one unit of work per request and stores it on the gin
// context for handlers to pass into service calls. It is released when the
// request returns.
func UnitOfWork(open UnitOfWorkFactory) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(unitOfWorkKey, open(c.Request.Context()))
		c.Next()
		delete(c.Keys, unitOfWorkKey)
	}
}

// UnitOfWorkFrom returns the request's unit of work, or nil when the
// middleware is not installed.
func UnitOfWorkFrom(c *gin.Context) repository.UnitOfWork {
	if v, ok := c.Get(unitOfWorkKey); ok {
		if uow, ok := v.(repository.UnitOfWork); ok {
			return uow
		}
	}
	return nil
}
