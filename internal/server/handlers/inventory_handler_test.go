package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/freshtrack/internal/domain/models"
	"github.com/mamadbah2/freshtrack/internal/repository/memory"
	"github.com/mamadbah2/freshtrack/internal/service/inventory"
	"github.com/mamadbah2/freshtrack/internal/service/reporting"
)

var fixedNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store  *memory.Store
	engine *gin.Engine
}

func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	invSvc := inventory.NewService(store, nil)
	reportSvc := reporting.NewService(nil)

	invHandler := NewInventoryHandler(invSvc, nil)
	invHandler.now = func() time.Time { return fixedNow }
	reportHandler := NewReportHandler(invSvc, reportSvc, nil)
	reportHandler.now = func() time.Time { return fixedNow }
	settingsHandler := NewSettingsHandler(invSvc, nil)
	healthHandler := NewHealthHandler(store)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/inventory", invHandler.List)
	api.POST("/inventory", invHandler.Create)
	api.PUT("/inventory/:id", invHandler.Update)
	api.DELETE("/inventory/clear", invHandler.Clear)
	api.DELETE("/inventory/:id", invHandler.Delete)
	api.GET("/inventory/stats", invHandler.Stats)
	api.GET("/reports", reportHandler.Report)
	api.GET("/reports/critical", reportHandler.Critical)
	api.GET("/export/csv", reportHandler.ExportCSV)
	api.GET("/export/backup", reportHandler.ExportBackup)
	api.POST("/import", reportHandler.Import)
	api.GET("/settings", settingsHandler.Get)
	api.POST("/settings", settingsHandler.Save)
	api.POST("/settings/reset", settingsHandler.Reset)
	api.GET("/health", healthHandler.Check)

	return &testEnv{store: store, engine: r}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid response body %q: %v", w.Body.String(), err)
	}
	return envelope
}

func itemPayload(productID string, expiry string) map[string]any {
	return map[string]any{
		"productName": "Milk",
		"productId":   productID,
		"batchNumber": "BATCH-1",
		"expiryDate":  expiry,
		"quantity":    2,
		"price":       10.0,
		"shelfLife":   14,
		"category":    "Dairy",
	}
}

func TestCreate_ThenList(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/api/inventory", itemPayload("P1", "2025-03-20"))
	if w.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body %s", w.Code, w.Body.String())
	}

	envelope := decodeEnvelope(t, w)
	if envelope["success"] != true || envelope["id"] == "" {
		t.Errorf("create envelope = %v", envelope)
	}

	w = env.do(t, http.MethodGet, "/api/inventory", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET status = %d", w.Code)
	}

	envelope = decodeEnvelope(t, w)
	data, ok := envelope["data"].([]any)
	if !ok || len(data) != 1 {
		t.Fatalf("list data = %v, want one item", envelope["data"])
	}
}

func TestCreate_MissingFieldRejected(t *testing.T) {
	env := newTestEnv()

	payload := itemPayload("P1", "2025-03-20")
	delete(payload, "batchNumber")

	w := env.do(t, http.MethodPost, "/api/inventory", payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	envelope := decodeEnvelope(t, w)
	if envelope["success"] != false || envelope["error"] == "" {
		t.Errorf("error envelope = %v", envelope)
	}
}

func TestCreate_DuplicateProductIDRejected(t *testing.T) {
	env := newTestEnv()

	if w := env.do(t, http.MethodPost, "/api/inventory", itemPayload("P1", "2025-03-20")); w.Code != http.StatusCreated {
		t.Fatalf("first POST status = %d", w.Code)
	}

	w := env.do(t, http.MethodPost, "/api/inventory", itemPayload("P1", "2025-04-01"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate POST status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "P1") {
		t.Errorf("error should name the duplicate id, body = %s", w.Body.String())
	}
}

func TestCreate_MalformedDateRejected(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/api/inventory", itemPayload("P1", "03/20/2025"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "malformed expiry date") {
		t.Errorf("error must surface the malformed date, body = %s", w.Body.String())
	}
}

func TestUpdate_UnknownIDReturns404(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPut, "/api/inventory/nope", map[string]any{"quantity": 5})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestDelete_AbsentIDReturns200(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodDelete, "/api/inventory/never-existed", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for idempotent delete", w.Code)
	}
}

func TestClear_ReportsCount(t *testing.T) {
	env := newTestEnv()

	env.do(t, http.MethodPost, "/api/inventory", itemPayload("P1", "2025-03-20"))
	env.do(t, http.MethodPost, "/api/inventory", itemPayload("P2", "2025-03-25"))

	w := env.do(t, http.MethodDelete, "/api/inventory/clear", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	envelope := decodeEnvelope(t, w)
	if envelope["count"] != float64(2) {
		t.Errorf("count = %v, want 2", envelope["count"])
	}
}

func TestStats_Endpoint(t *testing.T) {
	env := newTestEnv()

	env.do(t, http.MethodPost, "/api/inventory", itemPayload("P1", "2025-03-12")) // 2 days: Critical
	env.do(t, http.MethodPost, "/api/inventory", itemPayload("P2", "2025-03-09")) // yesterday: Expired

	w := env.do(t, http.MethodGet, "/api/inventory/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	envelope := decodeEnvelope(t, w)
	data := envelope["data"].(map[string]any)
	if data["totalItems"] != float64(2) || data["expired"] != float64(1) || data["critical"] != float64(1) {
		t.Errorf("stats = %v", data)
	}
	// Expired P2 full value 20 + Critical P1 half value 10.
	if data["potentialLoss"] != float64(30) {
		t.Errorf("potentialLoss = %v, want 30", data["potentialLoss"])
	}
}

func TestSettings_Lifecycle(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodGet, "/api/settings", nil)
	envelope := decodeEnvelope(t, w)
	data := envelope["data"].(map[string]any)
	if data["criticalDays"] != float64(3) || data["maxDiscount"] != float64(50) {
		t.Errorf("defaults = %v", data)
	}

	update := models.DefaultSettings()
	update.MaxDiscount = 80
	if w := env.do(t, http.MethodPost, "/api/settings", update); w.Code != http.StatusOK {
		t.Fatalf("save status = %d, body %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/settings", nil)
	data = decodeEnvelope(t, w)["data"].(map[string]any)
	if data["maxDiscount"] != float64(80) {
		t.Errorf("saved maxDiscount = %v, want 80", data["maxDiscount"])
	}

	if w := env.do(t, http.MethodPost, "/api/settings/reset", nil); w.Code != http.StatusOK {
		t.Fatalf("reset status = %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/settings", nil)
	data = decodeEnvelope(t, w)["data"].(map[string]any)
	if data["maxDiscount"] != float64(50) {
		t.Errorf("reset maxDiscount = %v, want 50", data["maxDiscount"])
	}
}

func TestReports_Endpoint(t *testing.T) {
	env := newTestEnv()

	env.do(t, http.MethodPost, "/api/inventory", itemPayload("P1", "2025-03-09"))
	env.do(t, http.MethodPost, "/api/inventory", itemPayload("P2", "2025-04-20"))

	w := env.do(t, http.MethodGet, "/api/reports", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	rows := decodeEnvelope(t, w)["data"].([]any)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	first := rows[0].(map[string]any)
	if first["productId"] != "P1" || first["status"] != "Expired" {
		t.Errorf("first row = %v, want expired P1 first", first)
	}

	w = env.do(t, http.MethodGet, "/api/reports/critical", nil)
	urgent := decodeEnvelope(t, w)["data"].([]any)
	if len(urgent) != 1 {
		t.Errorf("critical rows = %d, want 1", len(urgent))
	}
}

func TestExportCSV_Endpoint(t *testing.T) {
	env := newTestEnv()

	env.do(t, http.MethodPost, "/api/inventory", itemPayload("P1", "2025-03-20"))

	w := env.do(t, http.MethodGet, "/api/export/csv", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "inventory_report_20250310.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.Contains(w.Body.String(), "Product Name") {
		t.Errorf("csv body missing header: %q", w.Body.String())
	}
}

func TestBackupExportImport_RoundTrip(t *testing.T) {
	env := newTestEnv()

	env.do(t, http.MethodPost, "/api/inventory", itemPayload("P1", "2025-03-20"))
	env.do(t, http.MethodPost, "/api/inventory", itemPayload("P2", "2025-03-25"))

	w := env.do(t, http.MethodGet, "/api/export/backup", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d", w.Code)
	}

	var backup models.Backup
	if err := json.Unmarshal(w.Body.Bytes(), &backup); err != nil {
		t.Fatal(err)
	}
	if len(backup.Inventory) != 2 {
		t.Fatalf("backup holds %d items, want 2", len(backup.Inventory))
	}

	// Wipe everything, then restore from the export.
	env.do(t, http.MethodDelete, "/api/inventory/clear", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/import", bytes.NewReader(w.Body.Bytes()))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d, body %s", rec.Code, rec.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/inventory", nil)
	items := decodeEnvelope(t, w)["data"].([]any)
	if len(items) != 2 {
		t.Fatalf("restored %d items, want 2", len(items))
	}
	got := items[0].(map[string]any)
	if got["productId"] != "P1" || got["expiryDate"] != "2025-03-20" {
		t.Errorf("restored item = %v", got)
	}
}

func TestImport_RejectsGarbage(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHealth_ReportsStoreState(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	body := decodeEnvelope(t, w)
	if body["status"] != "healthy" || body["store_connected"] != true {
		t.Errorf("health body = %v", body)
	}
}
