package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/volfir1/EcoPulseBackend/dataset"
	"github.com/volfir1/EcoPulseBackend/export"
	"github.com/volfir1/EcoPulseBackend/metrics"
	"github.com/volfir1/EcoPulseBackend/models"
	"github.com/volfir1/EcoPulseBackend/peergrid"
	"github.com/volfir1/EcoPulseBackend/services"
	"github.com/volfir1/EcoPulseBackend/store"
)

// PeerHandler serves per-subgrid series from the peertopeer collection. It
// owns the current forecaster snapshot; inserts rebuild it and refresh the
// spreadsheet mirror.
type PeerHandler struct {
	store      RecordStore
	cache      ResponseCache
	log        *logrus.Logger
	mirrorPath string

	mu         sync.RWMutex
	forecaster *peergrid.Forecaster
}

func NewPeerHandler(st RecordStore, cache ResponseCache, mirrorDir string, log *logrus.Logger) *PeerHandler {
	return &PeerHandler{
		store:      st,
		cache:      cache,
		log:        log,
		mirrorPath: filepath.Join(mirrorDir, export.PeerToPeerFile),
	}
}

// Reload fetches the collection, rebuilds the forecaster snapshot and
// rewrites the spreadsheet mirror. When the store is unreachable the mirror
// doubles as a cold-start data source, as the spreadsheet did in the
// original deployment.
func (h *PeerHandler) Reload(ctx context.Context) error {
	records, err := h.store.FindAll(ctx, store.CollectionPeerToPeer)
	if err != nil {
		mirrored, readErr := export.ReadSnapshot(h.mirrorPath)
		if readErr != nil {
			return err
		}
		h.log.Warnf("store unavailable, serving peer data from %s: %v", h.mirrorPath, err)
		h.swap(peergrid.New(dataset.New(mirrored), h.log))
		return nil
	}

	if err := export.WriteSnapshot(h.mirrorPath, records); err != nil {
		// The mirror is a convenience artifact; staleness is acceptable.
		h.log.Warnf("refreshing %s failed: %v", h.mirrorPath, err)
	}

	h.swap(peergrid.New(dataset.New(records), h.log))
	h.log.WithField("records", len(records)).Info("peer-to-peer snapshot rebuilt")
	return nil
}

func (h *PeerHandler) swap(forecaster *peergrid.Forecaster) {
	h.mu.Lock()
	h.forecaster = forecaster
	h.mu.Unlock()
}

// GetSeries handles GET /api/peertopeer?year= (defaults to the current
// year).
func (h *PeerHandler) GetSeries(c *gin.Context) {
	timer := time.Now()
	defer func() {
		metrics.RequestDuration.WithLabelValues("place_series").Observe(time.Since(timer).Seconds())
	}()

	year := time.Now().Year()
	if parsed, ok := parseOptionalYear(c); !ok {
		return
	} else if parsed != nil {
		year = *parsed
	}

	h.mu.RLock()
	forecaster := h.forecaster
	h.mu.RUnlock()

	if forecaster == nil {
		metrics.DegradedResponses.WithLabelValues("peergrid").Inc()
		c.JSON(http.StatusOK, models.PlaceSeriesResponse{
			Year:    year,
			Data:    []models.PlaceMetrics{},
			Success: false,
			Message: "No peer-to-peer data loaded",
		})
		return
	}

	c.JSON(http.StatusOK, forecaster.PlaceSeries(year))
}

// CreateRecord handles POST /api/peertopeer/records: inserts actual data,
// then refreshes both the mirror and the in-memory snapshot.
func (h *PeerHandler) CreateRecord(c *gin.Context) {
	var record models.MetricRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid JSON body"})
		return
	}
	if _, ok := record.Year(); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Year is required"})
		return
	}

	id, err := h.store.InsertOne(c.Request.Context(), store.CollectionPeerToPeer, record)
	if err != nil {
		h.log.Errorf("inserting peer record failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "data store unavailable"})
		return
	}

	if err := h.Reload(c.Request.Context()); err != nil {
		h.log.Warnf("peer snapshot rebuild after insert failed: %v", err)
	}

	go h.cache.Publish(context.Background(), services.LiveChannel, gin.H{
		"type": "peer_record_created",
		"id":   id,
	})

	c.JSON(http.StatusCreated, gin.H{"status": "success", "message": "Record created successfully", "id": id})
}
