package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/tallyhq/tally/internal/pipeline"
	"github.com/tallyhq/tally/pkg/lifecycle"
)

type fakeStorage struct {
	mu       sync.Mutex
	objects  map[string]string
	readErr  error
	writeErr error
	writes   int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string]string)}
}

func (f *fakeStorage) Start(lc *lifecycle.Coordinator) error { return nil }

func (f *fakeStorage) Read(ctx context.Context, container, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return "", f.readErr
	}
	content, ok := f.objects[container+"/"+key]
	if !ok {
		return "", errors.New("blob not found")
	}
	return content, nil
}

func (f *fakeStorage) Write(ctx context.Context, container, key, content, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes++
	f.objects[container+"/"+key] = content
	return nil
}

func (f *fakeStorage) Exists(ctx context.Context, container, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[container+"/"+key]
	return ok, nil
}

func (f *fakeStorage) List(ctx context.Context, container, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0)
	for k := range f.objects {
		if name, ok := strings.CutPrefix(k, container+"/"); ok && strings.HasPrefix(name, prefix) {
			keys = append(keys, name)
		}
	}
	return keys, nil
}

func (f *fakeStorage) get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.objects[key]
	return content, ok
}

func (f *fakeStorage) SignUpload(ctx context.Context, key string) (string, error) {
	return "https://storage.test/uploads/" + key, nil
}

func (f *fakeStorage) SignDownload(ctx context.Context, key string) (string, error) {
	return "https://storage.test/results/" + key, nil
}

func (f *fakeStorage) Uploads() string { return "uploads" }
func (f *fakeStorage) Results() string { return "results" }

// artifact mirrors the persisted report document wire format.
type artifact struct {
	Metadata struct {
		ReportID    string `json:"reportId"`
		ProcessedAt string `json:"processedAt"`
	} `json:"metadata"`
	Items []struct {
		ProductID  string  `json:"product_id"`
		Quantity   float64 `json:"quantity"`
		Price      float64 `json:"price"`
		TotalPrice float64 `json:"total_price"`
	} `json:"items"`
	Summary struct {
		TotalItems int     `json:"totalItems"`
		GrandTotal float64 `json:"grandTotal"`
	} `json:"summary"`
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sourceCSV = "product_id,product_name,quantity,price\n" +
	"101,Laptop,5,1200.00\n" +
	"102,Mouse,25,75.00"

func TestRun(t *testing.T) {
	store := newFakeStorage()
	store.objects["uploads/report-1.csv"] = sourceCSV
	orch := pipeline.New(store, testLogger(), 0)

	if err := orch.Run(context.Background(), "uploads", "report-1.csv"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	raw, ok := store.objects["results/report-1.json"]
	if !ok {
		t.Fatal("Run did not persist results/report-1.json")
	}

	var doc artifact
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("artifact is not valid JSON: %v", err)
	}

	if doc.Metadata.ReportID != "report-1" {
		t.Errorf("reportId = %q, want report-1 (derived from source key)", doc.Metadata.ReportID)
	}
	if len(doc.Items) != 1 {
		t.Fatalf("artifact has %d items, want 1", len(doc.Items))
	}
	if doc.Items[0].ProductID != "102" {
		t.Errorf("retained item = %s, want 102", doc.Items[0].ProductID)
	}
	if doc.Items[0].TotalPrice != 1875 {
		t.Errorf("total_price = %v, want 1875", doc.Items[0].TotalPrice)
	}
	if doc.Summary.TotalItems != 1 || doc.Summary.GrandTotal != 1875 {
		t.Errorf("summary = %+v, want totalItems 1 grandTotal 1875", doc.Summary)
	}

	if !strings.HasPrefix(raw, "{\n  ") {
		t.Error("artifact is not indented JSON")
	}
}

func TestRunIdempotent(t *testing.T) {
	store := newFakeStorage()
	store.objects["uploads/report-1.csv"] = sourceCSV
	orch := pipeline.New(store, testLogger(), 0)

	if err := orch.Run(context.Background(), "uploads", "report-1.csv"); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	var first artifact
	if err := json.Unmarshal([]byte(store.objects["results/report-1.json"]), &first); err != nil {
		t.Fatalf("first artifact is not valid JSON: %v", err)
	}

	if err := orch.Run(context.Background(), "uploads", "report-1.csv"); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	var second artifact
	if err := json.Unmarshal([]byte(store.objects["results/report-1.json"]), &second); err != nil {
		t.Fatalf("second artifact is not valid JSON: %v", err)
	}

	if first.Metadata.ReportID != second.Metadata.ReportID {
		t.Errorf("reportId changed across reruns: %q vs %q",
			first.Metadata.ReportID, second.Metadata.ReportID)
	}
	if len(first.Items) != len(second.Items) || first.Summary != second.Summary {
		t.Errorf("rerun produced different content: %+v vs %+v", first.Summary, second.Summary)
	}
	if store.writes != 2 {
		t.Errorf("Run persisted %d artifacts, want 2", store.writes)
	}
}

func TestRunEmptySource(t *testing.T) {
	store := newFakeStorage()
	store.objects["uploads/empty.csv"] = "product_id,product_name,quantity,price"
	orch := pipeline.New(store, testLogger(), 0)

	if err := orch.Run(context.Background(), "uploads", "empty.csv"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var doc artifact
	if err := json.Unmarshal([]byte(store.objects["results/empty.json"]), &doc); err != nil {
		t.Fatalf("artifact is not valid JSON: %v", err)
	}
	if len(doc.Items) != 0 {
		t.Errorf("artifact has %d items, want 0", len(doc.Items))
	}
	if doc.Summary.TotalItems != 0 || doc.Summary.GrandTotal != 0 {
		t.Errorf("summary = %+v, want zero totals", doc.Summary)
	}
}

func TestRunReadFailure(t *testing.T) {
	store := newFakeStorage()
	store.readErr = errors.New("storage unavailable")
	orch := pipeline.New(store, testLogger(), 0)

	err := orch.Run(context.Background(), "uploads", "report-1.csv")
	if err == nil {
		t.Fatal("Run succeeded despite read failure")
	}
	if !errors.Is(err, store.readErr) {
		t.Errorf("Run error = %v, does not wrap the read failure", err)
	}
	if store.writes != 0 {
		t.Errorf("Run persisted %d artifacts after read failure, want 0", store.writes)
	}
}

func TestRunWriteFailure(t *testing.T) {
	store := newFakeStorage()
	store.objects["uploads/report-1.csv"] = sourceCSV
	store.writeErr = errors.New("storage unavailable")
	orch := pipeline.New(store, testLogger(), 0)

	err := orch.Run(context.Background(), "uploads", "report-1.csv")
	if !errors.Is(err, store.writeErr) {
		t.Errorf("Run error = %v, does not wrap the write failure", err)
	}
}

func TestRunSourceSizeCap(t *testing.T) {
	store := newFakeStorage()
	store.objects["uploads/report-1.csv"] = sourceCSV
	orch := pipeline.New(store, testLogger(), 16)

	if err := orch.Run(context.Background(), "uploads", "report-1.csv"); err == nil {
		t.Fatal("Run succeeded despite source exceeding size cap")
	}
	if store.writes != 0 {
		t.Errorf("Run persisted %d artifacts for oversized source, want 0", store.writes)
	}
}
