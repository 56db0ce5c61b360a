package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/volfir1/EcoPulseBackend/dataset"
	"github.com/volfir1/EcoPulseBackend/forecast"
	"github.com/volfir1/EcoPulseBackend/metrics"
)

// defaultHorizon is how many years past the default start a series request
// covers when end_year is not given.
const defaultHorizon = 16

// predictionsVersionKey is the cache-version counter for prediction series
// responses. Record inserts bump it, which orphans every cached entry built
// under the previous version.
const predictionsVersionKey = "predictions:version"

type PredictionHandler struct {
	reconciler   *forecast.Reconciler
	trainer      *forecast.Trainer
	loader       *dataset.Loader
	cache        ResponseCache
	log          *logrus.Logger
	trainTimeout time.Duration
}

func NewPredictionHandler(
	reconciler *forecast.Reconciler,
	trainer *forecast.Trainer,
	loader *dataset.Loader,
	cache ResponseCache,
	log *logrus.Logger,
	trainTimeout time.Duration,
) *PredictionHandler {
	return &PredictionHandler{
		reconciler:   reconciler,
		trainer:      trainer,
		loader:       loader,
		cache:        cache,
		log:          log,
		trainTimeout: trainTimeout,
	}
}

// GetSeries handles GET /api/predictions/:target?start_year=&end_year=.
func (h *PredictionHandler) GetSeries(c *gin.Context) {
	timer := time.Now()
	defer func() {
		metrics.RequestDuration.WithLabelValues("get_series").Observe(time.Since(timer).Seconds())
	}()

	target := c.Param("target")

	startYear, ok := h.parseYear(c, "start_year", 0)
	if !ok {
		return
	}
	endYear, ok := h.parseYear(c, "end_year", 0)
	if !ok {
		return
	}

	if startYear != 0 && endYear == 0 {
		endYear = startYear + defaultHorizon
	}
	if startYear != 0 && endYear != 0 && startYear > endYear {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "start_year must not exceed end_year"})
		return
	}

	version := h.cache.Version(c.Request.Context(), predictionsVersionKey)
	cacheKey := fmt.Sprintf("predictions:v%d:%s:%d:%d", version, target, startYear, endYear)
	var cached gin.H
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && cached != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	// A zero year is resolved by the reconciler against the same snapshot
	// the series is built from, so each request loads the store once.
	records := h.reconciler.GetSeriesWithDefaults(c.Request.Context(), target, startYear, endYear, defaultHorizon)

	resp := gin.H{"status": "success", "records": records}
	go h.cache.Set(context.Background(), cacheKey, resp, 30*time.Second)

	c.JSON(http.StatusOK, resp)
}

// Train handles POST /api/predictions/train: the explicit retraining
// trigger, decoupled from the insert path.
func (h *PredictionHandler) Train(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.trainTimeout)
	defer cancel()

	table, err := h.loader.Load(ctx)
	if err != nil {
		h.log.Errorf("training snapshot load failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "data store unavailable"})
		return
	}

	report := h.trainer.TrainAll(ctx, table)
	if report.Status == "error" {
		c.JSON(http.StatusUnprocessableEntity, report)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *PredictionHandler) parseYear(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": fmt.Sprintf("invalid %s parameter", name)})
		return 0, false
	}
	return year, true
}
