package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/volfir1/EcoPulseBackend/dataset"
	"github.com/volfir1/EcoPulseBackend/export"
	"github.com/volfir1/EcoPulseBackend/forecast"
	"github.com/volfir1/EcoPulseBackend/models"
	"github.com/volfir1/EcoPulseBackend/store"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeStore is an in-memory RecordStore.
type fakeStore struct {
	mu           sync.Mutex
	records      []models.MetricRecord
	findAllCalls int
	unavailable  bool
}

func (s *fakeStore) FindAll(ctx context.Context, collection string) ([]models.MetricRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findAllCalls++
	if s.unavailable {
		return nil, errors.New("store unavailable")
	}
	out := make([]models.MetricRecord, len(s.records))
	for i, rec := range s.records {
		out[i] = rec.Clone()
	}
	return out, nil
}

func (s *fakeStore) FindActualOnly(ctx context.Context, collection string) ([]models.MetricRecord, error) {
	all, err := s.FindAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	actual := make([]models.MetricRecord, 0, len(all))
	for _, rec := range all {
		if !rec.IsPredicted() {
			actual = append(actual, rec)
		}
	}
	return actual, nil
}

func (s *fakeStore) FindByYear(ctx context.Context, collection string, year int) ([]models.MetricRecord, error) {
	all, err := s.FindAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	matched := make([]models.MetricRecord, 0)
	for _, rec := range all {
		if y, ok := rec.Year(); ok && y == year {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

func (s *fakeStore) InsertOne(ctx context.Context, collection string, record models.MetricRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return "", errors.New("store unavailable")
	}
	rec := record.Clone()
	rec["isPredicted"] = false
	s.records = append(s.records, rec)
	return fmt.Sprintf("rec-%d", len(s.records)), nil
}

func (s *fakeStore) loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findAllCalls
}

// fakeCache is an in-memory ResponseCache without TTL eviction.
type fakeCache struct {
	mu       sync.Mutex
	entries  map[string][]byte
	versions map[string]int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}, versions: map[string]int64{}}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if !ok {
		return errors.New("cache miss")
	}
	return json.Unmarshal(data, dest)
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *fakeCache) Publish(ctx context.Context, channel string, message interface{}) error {
	return nil
}

func (c *fakeCache) Bump(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[key]++
	return nil
}

func (c *fakeCache) Version(ctx context.Context, key string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[key]
}

func (c *fakeCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func TestMethodNotAllowed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoMethod(MethodNotAllowed)
	router.GET("/api/records", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/api/records", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodDelete, "/api/records", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body["status"] != "error" || body["message"] != "Method not allowed" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestParseOptionalYear(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("absent", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/api/records", nil)

		year, ok := parseOptionalYear(c)
		if !ok || year != nil {
			t.Errorf("parseOptionalYear() = (%v, %v), want (nil, true)", year, ok)
		}
	})

	t.Run("valid", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/api/records?year=2024", nil)

		year, ok := parseOptionalYear(c)
		if !ok || year == nil || *year != 2024 {
			t.Errorf("parseOptionalYear() = (%v, %v), want (2024, true)", year, ok)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/records?year=soon", nil)

		_, ok := parseOptionalYear(c)
		if ok {
			t.Error("parseOptionalYear() ok = true, want false")
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

func TestFormatRecommendations(t *testing.T) {
	result := &models.ROIResult{
		Year:                   2030,
		PredictedSolarCost:     45000,
		PredictedMeralcoRate:   10.5,
		CapacityKW:             2.22,
		YearlyEnergyProduction: 3241.2,
		YearlySavings:          34032.6,
		ROIYears:               2.94,
	}

	payload := formatRecommendations(result)

	projections := payload["future_projections"].(gin.H)
	if projections["Predicted MERALCO Rate"] != "PHP 10.50 per kWh" {
		t.Errorf("rate = %v", projections["Predicted MERALCO Rate"])
	}
	if projections["Installable Solar Capacity"] != "2.22 kW" {
		t.Errorf("capacity = %v", projections["Installable Solar Capacity"])
	}

	analysis := payload["cost_benefit_analysis"].([]gin.H)
	if len(analysis) != 3 {
		t.Fatalf("analysis entries = %d, want 3", len(analysis))
	}
	if !strings.Contains(analysis[2]["value"].(string), "2.94 years") {
		t.Errorf("payback = %v", analysis[2]["value"])
	}
}

func TestFormatRecommendationsInfinitePayback(t *testing.T) {
	result := &models.ROIResult{Year: 2030, ROIYears: math.Inf(1)}

	payload := formatRecommendations(result)
	analysis := payload["cost_benefit_analysis"].([]gin.H)
	if analysis[2]["value"] != "Not achievable" {
		t.Errorf("payback = %v, want %q", analysis[2]["value"], "Not achievable")
	}
}

func TestCreateRecordInvalidatesSeriesCache(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := testLogger()

	st := &fakeStore{records: []models.MetricRecord{
		{"Year": 2020, "Solar (GWh)": 100.0, "isPredicted": false},
		{"Year": 2021, "Solar (GWh)": 110.0, "isPredicted": false},
	}}
	cache := newFakeCache()
	loader := dataset.NewLoader(st, store.CollectionPredictive, log)
	registry := forecast.NewRegistry(t.TempDir())
	trainer := forecast.NewTrainer(registry, log)
	reconciler := forecast.NewReconciler(loader, registry, log)

	router := gin.New()
	ph := NewPredictionHandler(reconciler, trainer, loader, cache, log, time.Second)
	rh := NewRecordsHandler(st, loader, trainer, cache, log, time.Second)
	router.GET("/api/predictions/:target", ph.GetSeries)
	router.POST("/api/records", rh.Create)

	getRecords := func(t *testing.T) []interface{} {
		t.Helper()
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/predictions/Solar?start_year=2020&end_year=2022", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("GET status = %d, body %s", w.Code, w.Body.String())
		}
		var body map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON response: %v", err)
		}
		records, _ := body["records"].([]interface{})
		return records
	}

	if got := len(getRecords(t)); got != 2 {
		t.Fatalf("initial records = %d, want 2", got)
	}
	if st.loads() != 1 {
		t.Errorf("store loads after first GET = %d, want 1", st.loads())
	}

	// The response is written to the cache asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for cache.size() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if cache.size() == 0 {
		t.Fatal("response was never cached")
	}

	// While cached, a repeat GET serves the entry without touching the store.
	loadsBefore := st.loads()
	if got := len(getRecords(t)); got != 2 {
		t.Fatalf("cached records = %d, want 2", got)
	}
	if st.loads() != loadsBefore {
		t.Error("cached GET reloaded the store")
	}

	body := bytes.NewBufferString(`{"Year": 2022, "Solar (GWh)": 130}`)
	req := httptest.NewRequest(http.MethodPost, "/api/records", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body %s", w.Code, w.Body.String())
	}

	// The insert bumped the cache version, so the next GET recomputes and
	// sees the new record instead of the stale cached payload.
	if got := len(getRecords(t)); got != 3 {
		t.Fatalf("records after insert = %d, want 3", got)
	}
}

func TestPeerReloadFallsBackToMirror(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := testLogger()
	dir := t.TempDir()

	err := export.WriteSnapshot(filepath.Join(dir, export.PeerToPeerFile), []models.MetricRecord{
		{"Year": 2020, "Cebu Total Power Generation (GWh)": 100.0, "isPredicted": false},
		{"Year": 2021, "Cebu Total Power Generation (GWh)": 110.0, "isPredicted": false},
	})
	if err != nil {
		t.Fatalf("writing mirror: %v", err)
	}

	h := NewPeerHandler(&fakeStore{unavailable: true}, newFakeCache(), dir, log)
	if err := h.Reload(context.Background()); err != nil {
		t.Fatalf("Reload with mirror present: %v", err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/peertopeer?year=2021", nil)
	h.GetSeries(c)

	var resp models.PlaceSeriesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("success = false: %s", resp.Message)
	}
	if len(resp.Data) == 0 {
		t.Fatal("no place data served from the mirror")
	}
}

func TestPeerReloadFailsWithoutStoreOrMirror(t *testing.T) {
	h := NewPeerHandler(&fakeStore{unavailable: true}, newFakeCache(), t.TempDir(), testLogger())
	if err := h.Reload(context.Background()); err == nil {
		t.Fatal("Reload should fail when both the store and the mirror are unavailable")
	}
}
