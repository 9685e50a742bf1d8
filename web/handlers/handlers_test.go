package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/nvraj/mandi/internal/catalog"
	"github.com/nvraj/mandi/internal/core"
	"github.com/nvraj/mandi/internal/engine"
	"github.com/nvraj/mandi/internal/provider"
	"github.com/nvraj/mandi/internal/storage"
)

func setupTestHandler(t *testing.T) (*Handler, storage.Storage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	if err := store.Initialize(); err != nil {
		store.Close()
		t.Fatalf("failed to initialize storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	registry := provider.NewRegistry()
	registry.Register(provider.NewMockProvider(
		"Based on market rates, I can offer ₹21600 per quintal.",
		"Please reconsider, we are thinking ₹19800 per quintal.",
		"I accept your offer of ₹19800 per quintal. A pleasure doing business.",
	))

	h := New(store, registry, catalog.New(), engine.Config{MinRounds: 1})
	return h, store
}

func TestHealthEndpoint(t *testing.T) {
	h, _ := setupTestHandler(t)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestListProducts(t *testing.T) {
	h, _ := setupTestHandler(t)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/products")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var products []core.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(products) != 5 {
		t.Errorf("products = %d, want 5", len(products))
	}
}

func TestListPersonas(t *testing.T) {
	h, _ := setupTestHandler(t)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/personas")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var personas []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&personas); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(personas) != 8 {
		t.Errorf("personas = %d, want 8", len(personas))
	}
}

func TestNegotiateEndToEnd(t *testing.T) {
	h, store := setupTestHandler(t)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	body, _ := json.Marshal(NegotiateRequest{
		Product:  "Alphonso Mangoes",
		Provider: "mock",
	})

	resp, err := http.Post(srv.URL+"/api/negotiate", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var record core.SessionRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if record.Status != core.StatusDeal {
		t.Errorf("status = %s, want %s", record.Status, core.StatusDeal)
	}
	if record.FinalPrice == nil || *record.FinalPrice != 19800 {
		t.Errorf("final price = %v, want 19800", record.FinalPrice)
	}

	// The session is retrievable afterwards.
	getResp, err := http.Get(srv.URL + "/api/sessions/" + record.ID)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Errorf("get session status = %d, want 200", getResp.StatusCode)
	}

	// And listed.
	sessions, err := store.ListSessions(10, 0)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("sessions = %d, want 1", len(sessions))
	}
}

func TestNegotiateValidation(t *testing.T) {
	h, _ := setupTestHandler(t)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	tests := []struct {
		name string
		body NegotiateRequest
		code int
	}{
		{"missing product", NegotiateRequest{Provider: "mock"}, http.StatusBadRequest},
		{"unknown product", NegotiateRequest{Product: "Durian", Provider: "mock"}, http.StatusNotFound},
		{"unknown persona", NegotiateRequest{Product: "Cardamom", BuyerPersona: "Mystery", Provider: "mock"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.body)
			resp, err := http.Post(srv.URL+"/api/negotiate", "application/json", bytes.NewReader(body))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.code {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.code)
			}
		})
	}
}

func TestGetSessionNotFound(t *testing.T) {
	h, _ := setupTestHandler(t)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/sessions/nope")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestExportSession(t *testing.T) {
	h, _ := setupTestHandler(t)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	body, _ := json.Marshal(NegotiateRequest{Product: "Turmeric", Provider: "mock"})
	resp, err := http.Post(srv.URL+"/api/negotiate", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("negotiate failed: %v", err)
	}
	var record core.SessionRecord
	json.NewDecoder(resp.Body).Decode(&record)
	resp.Body.Close()

	for _, format := range []string{"json", "markdown", "pdf"} {
		expResp, err := http.Get(srv.URL + "/api/sessions/" + record.ID + "/export/" + format)
		if err != nil {
			t.Fatalf("export %s failed: %v", format, err)
		}
		expResp.Body.Close()
		if expResp.StatusCode != http.StatusOK {
			t.Errorf("export %s status = %d, want 200", format, expResp.StatusCode)
		}
	}

	badResp, err := http.Get(srv.URL + "/api/sessions/" + record.ID + "/export/docx")
	if err != nil {
		t.Fatalf("export docx failed: %v", err)
	}
	badResp.Body.Close()
	if badResp.StatusCode != http.StatusBadRequest {
		t.Errorf("docx export status = %d, want 400", badResp.StatusCode)
	}
}

func TestListProviders(t *testing.T) {
	h, _ := setupTestHandler(t)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/providers")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var infos []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(infos) != 1 {
		t.Errorf("providers = %d, want 1", len(infos))
	}
}
