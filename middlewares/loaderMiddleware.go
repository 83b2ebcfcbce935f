package middlewares

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/dashboard_backend/models"
	"gorm.io/gorm"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders wrap your data loaders to inject via middleware
type Loaders struct {
	RevenueTotalLoader *dataloader.Loader[RevenueKey, *models.RevenueTotal]
}

// NewLoaders instantiates data loaders for the middleware
func NewLoaders(conn *gorm.DB) *Loaders {
	revenueReader := &revenueTotalReader{db: conn}

	return &Loaders{
		RevenueTotalLoader: dataloader.NewBatchedLoader(revenueReader.getRevenueTotals, dataloader.WithWait[RevenueKey, *models.RevenueTotal](time.Millisecond)),
	}
}

// LoaderMiddleware attaches fresh loaders per request; db is resolved lazily so the
// middleware can be installed before the database connects.
func LoaderMiddleware(db func() *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn := db()
		if conn == nil {
			c.Next()
			return
		}
		ctx := WithLoaders(c.Request.Context(), NewLoaders(conn))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

// For returns the request's loaders, or nil outside a LoaderMiddleware request.
func For(ctx context.Context) *Loaders {
	loaders, _ := ctx.Value(loadersKey).(*Loaders)
	return loaders
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}
