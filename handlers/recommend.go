package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/volfir1/EcoPulseBackend/export"
	"github.com/volfir1/EcoPulseBackend/models"
	"github.com/volfir1/EcoPulseBackend/recommend"
	"github.com/volfir1/EcoPulseBackend/store"
)

// RecommendationHandler serves solar investment quotes and the underlying
// recommendation records. Curves are fit once at startup; inserts refresh
// the mirror but not the fit.
type RecommendationHandler struct {
	store      RecordStore
	calc       *recommend.Calculator
	log        *logrus.Logger
	mirrorPath string
}

func NewRecommendationHandler(st RecordStore, calc *recommend.Calculator, mirrorDir string, log *logrus.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		store:      st,
		calc:       calc,
		log:        log,
		mirrorPath: filepath.Join(mirrorDir, export.RecommendationFile),
	}
}

// GetRecommendations handles GET /api/recommendations?year=&budget=.
func (h *RecommendationHandler) GetRecommendations(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid year parameter"})
		return
	}
	budget, err := strconv.ParseFloat(c.Query("budget"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid budget parameter"})
		return
	}

	result, err := h.calc.Quote(budget, year)
	if err != nil {
		if errors.Is(err, recommend.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
			return
		}
		h.log.Errorf("quote failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "quote failed"})
		return
	}

	c.JSON(http.StatusOK, formatRecommendations(result))
}

// formatRecommendations shapes a quote into the dashboard payload.
func formatRecommendations(result *models.ROIResult) gin.H {
	payback := "Not achievable"
	if result.PaybackKnown() {
		payback = fmt.Sprintf("%.2f years", result.ROIYears)
	}

	return gin.H{
		"future_projections": gin.H{
			"year":                       result.Year,
			"title":                      "Solar Investment Projections",
			"Predicted MERALCO Rate":     fmt.Sprintf("PHP %.2f per kWh", result.PredictedMeralcoRate),
			"Installable Solar Capacity": fmt.Sprintf("%.2f kW", result.CapacityKW),
		},
		"cost_benefit_analysis": []gin.H{
			{
				"label":       "Estimated Yearly Energy Production",
				"value":       fmt.Sprintf("%.2f kWh", result.YearlyEnergyProduction),
				"icon":        "energy",
				"description": "Total energy production per year",
			},
			{
				"label":       "Estimated Yearly Savings",
				"value":       fmt.Sprintf("PHP %.2f", result.YearlySavings),
				"icon":        "savings",
				"description": "Total savings per year",
			},
			{
				"label":       "Estimated ROI (Payback Period)",
				"value":       payback,
				"icon":        "roi",
				"description": "Return on investment period",
			},
		},
		"is_actual_data": result.IsActualData,
	}
}

// ListRecords handles GET /api/recommendations/records?year=.
func (h *RecommendationHandler) ListRecords(c *gin.Context) {
	var (
		records []models.MetricRecord
		err     error
	)
	if year, ok := parseOptionalYear(c); !ok {
		return
	} else if year != nil {
		records, err = h.store.FindByYear(c.Request.Context(), store.CollectionRecommendation, *year)
	} else {
		records, err = h.store.FindAll(c.Request.Context(), store.CollectionRecommendation)
	}
	if err != nil {
		h.log.Errorf("listing recommendation records failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "data store unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "records": records})
}

// CreateRecord handles POST /api/recommendations/records: inserts an actual
// record and refreshes the actual-only spreadsheet mirror.
func (h *RecommendationHandler) CreateRecord(c *gin.Context) {
	var record models.MetricRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid JSON body"})
		return
	}
	if _, ok := record.Year(); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Year is required"})
		return
	}

	id, err := h.store.InsertOne(c.Request.Context(), store.CollectionRecommendation, record)
	if err != nil {
		h.log.Errorf("inserting recommendation record failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "data store unavailable"})
		return
	}

	h.refreshMirror(c.Request.Context())

	c.JSON(http.StatusCreated, gin.H{"status": "success", "message": "Recommendation created successfully", "id": id})
}

// refreshMirror rewrites the xlsx mirror with actual records only.
func (h *RecommendationHandler) refreshMirror(ctx context.Context) {
	records, err := h.store.FindActualOnly(ctx, store.CollectionRecommendation)
	if err != nil {
		h.log.Warnf("fetching actual records for mirror failed: %v", err)
		return
	}
	if err := export.WriteSnapshot(h.mirrorPath, records); err != nil {
		h.log.Warnf("refreshing %s failed: %v", h.mirrorPath, err)
	}
}
