package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/volfir1/EcoPulseBackend/models"
)

// RecordStore is the slice of the document store the HTTP handlers use.
// *store.Store satisfies it.
type RecordStore interface {
	FindAll(ctx context.Context, collection string) ([]models.MetricRecord, error)
	FindActualOnly(ctx context.Context, collection string) ([]models.MetricRecord, error)
	FindByYear(ctx context.Context, collection string, year int) ([]models.MetricRecord, error)
	InsertOne(ctx context.Context, collection string, record models.MetricRecord) (string, error)
}

// ResponseCache is the slice of the cache service the JSON handlers use.
// *services.CacheService satisfies it.
type ResponseCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Publish(ctx context.Context, channel string, message interface{}) error
	Bump(ctx context.Context, key string) error
	Version(ctx context.Context, key string) int64
}

// parseOptionalYear reads the year query parameter. Returns (nil, true) when
// absent; writes a 400 and returns ok=false when malformed.
func parseOptionalYear(c *gin.Context) (*int, bool) {
	raw := c.Query("year")
	if raw == "" {
		return nil, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid year parameter"})
		return nil, false
	}
	return &year, true
}

// MethodNotAllowed is the NoMethod handler: record endpoints answer non-GET,
// non-POST verbs with a structured 405.
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"status": "error", "message": "Method not allowed"})
}
