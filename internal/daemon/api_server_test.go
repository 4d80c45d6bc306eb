package daemon

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hemascan/internal/backendsync"
	"hemascan/internal/blob"
	"hemascan/internal/logging"
	"hemascan/internal/pipeline"
	"hemascan/internal/providers"
	"hemascan/internal/records"
	"hemascan/internal/scan"
	"hemascan/internal/testsupport"
)

const stubAnalysis = `{
  "hemoglobin_estimate": 10.4,
  "stage": "MODERATE",
  "confidence": 0.81,
  "explanation": "pale conjunctiva",
  "per_image_findings": {"conjunctiva": "marked pallor"},
  "ayurvedic_insights": {"dietary_recommendations": ["leafy greens"]}
}`

type providerStub struct {
	name    string
	payload string
	err     error
	calls   int
}

func (p *providerStub) Name() string    { return p.name }
func (p *providerStub) Available() bool { return true }

func (p *providerStub) Analyze(context.Context, string, []scan.Image) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.payload, nil
}

func newTestDaemon(t *testing.T, chain ...providers.Provider) *Daemon {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	if len(chain) == 0 {
		chain = []providers.Provider{&providerStub{name: "gemini", payload: stubAnalysis}}
	}
	manager := providers.NewManager(chain, logger)
	orchestrator := pipeline.NewOrchestrator(store, blob.NewFilesystemStore(cfg), backendsync.NewService(cfg), cfg.Corpus, logger)

	d, err := New(cfg, store, manager, orchestrator, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d
}

func scanRequestBody(t *testing.T, ownerID string, imageCount int) *bytes.Reader {
	t.Helper()

	req := scanRequest{
		OwnerID: ownerID,
		Subject: scan.Subject{Name: "Asha", Age: 29, Gender: "female"},
	}
	for _, image := range testsupport.Images(imageCount) {
		req.Images = append(req.Images, base64.StdEncoding.EncodeToString(image.Data))
	}
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal scan request: %v", err)
	}
	return bytes.NewReader(data)
}

func TestAPIServerHandleStatus(t *testing.T) {
	d := newTestDaemon(t)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	d.api.handleStatus(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp statusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Running {
		t.Fatal("expected running=false before Start")
	}
	if resp.DatabasePath == "" {
		t.Fatal("expected database path")
	}
	if len(resp.ProviderChain) != 1 || resp.ProviderChain[0] != "gemini" {
		t.Fatalf("unexpected provider chain: %v", resp.ProviderChain)
	}
}

func TestAPIServerScanSubmit(t *testing.T) {
	d := newTestDaemon(t)

	req := httptest.NewRequest(http.MethodPost, "/api/scans", scanRequestBody(t, "owner-1", 2))
	w := httptest.NewRecorder()
	d.api.handleScans(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d: %s", w.Code, w.Body.String())
	}
	var resp scanResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Record.ID == "" {
		t.Fatal("expected record ID")
	}
	if resp.Record.Stage != string(scan.StageModerate) {
		t.Fatalf("unexpected stage: %q", resp.Record.Stage)
	}
	if resp.Record.StageLabel != "Moderate Anemia" {
		t.Fatalf("unexpected stage label: %q", resp.Record.StageLabel)
	}
	if resp.Record.SubjectName != "Asha" {
		t.Fatalf("unexpected subject name: %q", resp.Record.SubjectName)
	}

	stored, err := d.store.Get(context.Background(), resp.Record.ID)
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if stored.OwnerID != "owner-1" {
		t.Fatalf("unexpected owner: %q", stored.OwnerID)
	}
	if len(stored.ImageURLs) != 2 {
		t.Fatalf("expected 2 image URLs, got %v", stored.ImageURLs)
	}
}

func TestAPIServerScanSubmitRequiresOwner(t *testing.T) {
	d := newTestDaemon(t)

	req := httptest.NewRequest(http.MethodPost, "/api/scans", scanRequestBody(t, "  ", 1))
	w := httptest.NewRecorder()
	d.api.handleScans(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	found, _, err := d.store.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("expected no persisted records, got %d", len(found))
	}
}

func TestAPIServerScanSubmitRejectsBadImages(t *testing.T) {
	d := newTestDaemon(t)

	body, err := json.Marshal(scanRequest{OwnerID: "owner-1", Images: []string{"not base64!"}})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/scans", bytes.NewReader(body))
	w := httptest.NewRecorder()
	d.api.handleScans(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	body, err = json.Marshal(scanRequest{OwnerID: "owner-1"})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/api/scans", bytes.NewReader(body))
	w = httptest.NewRecorder()
	d.api.handleScans(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty image set, got %d", w.Code)
	}
}

func TestAPIServerScanSubmitAnalysisFailure(t *testing.T) {
	d := newTestDaemon(t, &providerStub{name: "gemini", payload: "not a result"})

	req := httptest.NewRequest(http.MethodPost, "/api/scans", scanRequestBody(t, "owner-1", 1))
	w := httptest.NewRecorder()
	d.api.handleScans(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAPIServerScanListAndGet(t *testing.T) {
	d := newTestDaemon(t)
	first := testsupport.SaveRecord(t, d.store, "owner-1", scan.Result{Stage: scan.StageNormal, HemoglobinEstimate: 13.1, Confidence: 0.9})
	testsupport.SaveRecord(t, d.store, "owner-2", scan.Result{Stage: scan.StageMild, HemoglobinEstimate: 11.2, Confidence: 0.7})

	req := httptest.NewRequest(http.MethodGet, "/api/scans?owner=owner-1", nil)
	w := httptest.NewRecorder()
	d.api.handleScans(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var listResp scanListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(listResp.Records) != 1 || listResp.Records[0].ID != first.ID {
		t.Fatalf("unexpected owner listing: %+v", listResp.Records)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/scans", nil)
	w = httptest.NewRecorder()
	d.api.handleScans(w, req)
	if err := json.Unmarshal(w.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(listResp.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(listResp.Records))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/scans/"+first.ID, nil)
	w = httptest.NewRecorder()
	d.api.handleScanByID(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/scans/missing-id", nil)
	w = httptest.NewRecorder()
	d.api.handleScanByID(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestAPIServerCorpusStats(t *testing.T) {
	d := newTestDaemon(t)
	entry := records.CorpusEntry{RecordID: "rec-1", Stage: scan.StageMild, HemoglobinEstimate: 11.0, Confidence: 0.8, ConsentGiven: true}
	if err := d.store.AddCorpusEntry(context.Background(), entry); err != nil {
		t.Fatalf("AddCorpusEntry: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/corpus/stats", nil)
	w := httptest.NewRecorder()
	d.api.handleCorpusStats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp corpusStatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalEntries != 1 || resp.ConsentedOnly != 1 {
		t.Fatalf("unexpected totals: %+v", resp)
	}
	if resp.StageCounts[string(scan.StageMild)] != 1 {
		t.Fatalf("unexpected stage counts: %v", resp.StageCounts)
	}
}

func TestAuthMiddleware(t *testing.T) {
	handler := requireScanToken("secret", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", w.Code)
	}

	open := requireScanToken("", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w = httptest.NewRecorder()
	open(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 when auth disabled, got %d", w.Code)
	}
}
