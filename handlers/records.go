package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/volfir1/EcoPulseBackend/dataset"
	"github.com/volfir1/EcoPulseBackend/forecast"
	"github.com/volfir1/EcoPulseBackend/models"
	"github.com/volfir1/EcoPulseBackend/services"
	"github.com/volfir1/EcoPulseBackend/store"
)

// RecordsHandler serves the predictiveAnalysis collection: listing ground
// truth and inserting new actual records. Every insert triggers a full,
// deadline-bounded retrain before the response returns.
type RecordsHandler struct {
	store        RecordStore
	loader       *dataset.Loader
	trainer      *forecast.Trainer
	cache        ResponseCache
	log          *logrus.Logger
	trainTimeout time.Duration
}

func NewRecordsHandler(
	st RecordStore,
	loader *dataset.Loader,
	trainer *forecast.Trainer,
	cache ResponseCache,
	log *logrus.Logger,
	trainTimeout time.Duration,
) *RecordsHandler {
	return &RecordsHandler{
		store:        st,
		loader:       loader,
		trainer:      trainer,
		cache:        cache,
		log:          log,
		trainTimeout: trainTimeout,
	}
}

// List handles GET /api/records?year=.
func (h *RecordsHandler) List(c *gin.Context) {
	var (
		records []models.MetricRecord
		err     error
	)
	if year, ok := parseOptionalYear(c); !ok {
		return
	} else if year != nil {
		records, err = h.store.FindByYear(c.Request.Context(), store.CollectionPredictive, *year)
	} else {
		records, err = h.store.FindAll(c.Request.Context(), store.CollectionPredictive)
	}
	if err != nil {
		h.log.Errorf("listing records failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "data store unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "records": records})
}

// Create handles POST /api/records: persists an actual record (isPredicted
// forced to false), retrains all models under the configured deadline, and
// publishes a live-update event.
func (h *RecordsHandler) Create(c *gin.Context) {
	var record models.MetricRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid JSON body"})
		return
	}
	if _, ok := record.Year(); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Year is required"})
		return
	}

	id, err := h.store.InsertOne(c.Request.Context(), store.CollectionPredictive, record)
	if err != nil {
		h.log.Errorf("inserting record failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "data store unavailable"})
		return
	}

	// Every cached prediction series predates this record now.
	if err := h.cache.Bump(c.Request.Context(), predictionsVersionKey); err != nil {
		h.log.Warnf("prediction cache invalidation failed: %v", err)
	}

	// Retrain synchronously, but never past the deadline; the insert has
	// already succeeded either way.
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.trainTimeout)
	defer cancel()
	var report *models.TrainReport
	if table, err := h.loader.Load(ctx); err != nil {
		h.log.Warnf("post-insert retrain skipped: %v", err)
	} else {
		report = h.trainer.TrainAll(ctx, table)
	}

	go h.cache.Publish(context.Background(), services.LiveChannel, gin.H{
		"type": "record_created",
		"id":   id,
	})

	resp := gin.H{"status": "success", "message": "Record created successfully", "id": id}
	if report != nil {
		resp["training"] = report
	}
	c.JSON(http.StatusCreated, resp)
}
