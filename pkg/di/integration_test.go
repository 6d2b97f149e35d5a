package di

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goliatone/go-flavor-inventory/internal/httpapi"
	"github.com/goliatone/go-flavor-inventory/model"
	"github.com/goliatone/go-flavor-inventory/pkg/testsupport"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	container, err := NewContainerWithDB(testConfig(t), testsupport.NewDB(t))
	if err != nil {
		t.Fatalf("NewContainerWithDB() failed: %v", err)
	}
	t.Cleanup(func() { container.Close() })
	return container.Router()
}

func upload(t *testing.T, router *gin.Engine, content string) model.ImportOutcome {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(httpapi.UploadField, "inventory.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte(content))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/inventory/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload failed with %d: %s", rec.Code, rec.Body.String())
	}

	var outcome model.ImportOutcome
	if err := json.Unmarshal(rec.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	return outcome
}

func get(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestEndToEndImportAndQuery(t *testing.T) {
	router := newRouter(t)

	csv := "Store,Date,Flavor,Is Season Flavor,Quantity,Listed By\n" +
		"Acme,2024-03-01,Vanilla,No,12,Jane\n" +
		"Acme,2024-03-01,Vanilla,No,12,Jane\n" +
		"Acme,2024-03-01,Vanilla\n"

	first := upload(t, router, csv)
	if len(first.Inventories) != 2 || len(first.DuplicateInventories) != 0 {
		t.Errorf("expected both identical rows accepted, got %d accepted %d duplicates",
			len(first.Inventories), len(first.DuplicateInventories))
	}

	second := upload(t, router, csv)
	if len(second.Inventories) != 0 || len(second.DuplicateInventories) != 2 {
		t.Errorf("expected every row of the re-upload to be a duplicate, got %d accepted %d duplicates",
			len(second.Inventories), len(second.DuplicateInventories))
	}

	rec := get(t, router, "/inventory?minDate=2024-03-01&maxDate=2024-03-01&flavors=Vanilla")
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed with %d", rec.Code)
	}
	var views []model.InventoryView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode views: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected exactly one stored record, got %d", len(views))
	}
	if views[0].Date != "2024-03-01" || views[0].IsSeasonFlavor != "No" || views[0].Quantity != 12 {
		t.Errorf("unexpected view %+v", views[0])
	}

	if rec := get(t, router, "/employees?page=1&limit=10"); rec.Code != http.StatusOK {
		t.Errorf("employee listing failed with %d", rec.Code)
	}
	if rec := get(t, router, "/metrics"); rec.Code != http.StatusOK {
		t.Errorf("metrics endpoint failed with %d", rec.Code)
	}
}
