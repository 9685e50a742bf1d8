// Package handlers provides HTTP handlers for the negotiation API.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nvraj/mandi/internal/catalog"
	"github.com/nvraj/mandi/internal/engine"
	"github.com/nvraj/mandi/internal/export"
	"github.com/nvraj/mandi/internal/persona"
	"github.com/nvraj/mandi/internal/provider"
	"github.com/nvraj/mandi/internal/storage"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	engine   *engine.Engine
	registry *provider.Registry
	storage  storage.Storage
	products *catalog.Catalog
}

// New creates a new Handler.
func New(store storage.Storage, registry *provider.Registry, products *catalog.Catalog, cfg engine.Config) *Handler {
	return &Handler{
		engine:   engine.New(store, registry, cfg),
		registry: registry,
		storage:  store,
		products: products,
	}
}

// Router builds the HTTP router with all routes registered.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/negotiate", h.handleNegotiate)
		r.Get("/products", h.handleListProducts)
		r.Get("/personas", h.handleListPersonas)
		r.Get("/providers", h.handleListProviders)
		r.Get("/sessions", h.handleListSessions)
		r.Get("/sessions/{id}", h.handleGetSession)
		r.Get("/sessions/{id}/export/{format}", h.handleExportSession)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.json(w, map[string]any{
		"status":              "ok",
		"products":            h.products.Len(),
		"providers_available": len(h.registry.Available()),
	})
}

// NegotiateRequest is the body for POST /api/negotiate.
type NegotiateRequest struct {
	Product       string `json:"product"`
	BuyerPersona  string `json:"buyerPersona"`
	SellerPersona string `json:"sellerPersona"`
	Provider      string `json:"provider"`
}

func (h *Handler) handleNegotiate(w http.ResponseWriter, r *http.Request) {
	var req NegotiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Product == "" {
		h.jsonError(w, "product is required", http.StatusBadRequest)
		return
	}

	product, err := h.products.Get(req.Product)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusNotFound)
		return
	}

	if req.BuyerPersona != "" && !persona.Known(persona.ID(req.BuyerPersona)) {
		h.jsonError(w, fmt.Sprintf("unknown buyer persona: %s", req.BuyerPersona), http.StatusBadRequest)
		return
	}
	if req.SellerPersona != "" && !persona.Known(persona.ID(req.SellerPersona)) {
		h.jsonError(w, fmt.Sprintf("unknown seller persona: %s", req.SellerPersona), http.StatusBadRequest)
		return
	}

	record, err := h.engine.Run(r.Context(), engine.SessionRequest{
		BuyerPersona:  persona.ID(req.BuyerPersona),
		SellerPersona: persona.ID(req.SellerPersona),
		Product:       product,
		Provider:      req.Provider,
	})
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.json(w, record)
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	h.json(w, h.products.List())
}

func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	h.json(w, persona.All())
}

func (h *Handler) handleListProviders(w http.ResponseWriter, r *http.Request) {
	type providerInfo struct {
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
		Available   bool   `json:"available"`
	}

	var infos []providerInfo
	for _, p := range h.registry.List() {
		infos = append(infos, providerInfo{
			Name:        p.Name(),
			DisplayName: p.DisplayName(),
			Available:   p.Available(),
		})
	}
	h.json(w, infos)
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.storage.ListSessions(50, 0)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.json(w, sessions)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	session, err := h.storage.GetSession(id)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if session == nil {
		h.jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	h.json(w, session)
}

func (h *Handler) handleExportSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := chi.URLParam(r, "format")

	session, err := h.storage.GetSession(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if session == nil {
		http.NotFound(w, r)
		return
	}

	exporter, err := export.GetExporter(export.Format(format))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	filename := export.GenerateFilename(session, exporter.FileExtension())

	switch format {
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
	case "json":
		w.Header().Set("Content-Type", "application/json")
	default:
		w.Header().Set("Content-Type", "text/markdown")
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	if err := exporter.Export(session, w); err != nil {
		slog.Error("Export failed", "session_id", id, "format", format, "error", err)
		http.Error(w, "Export failed", http.StatusInternalServerError)
	}
}

func (h *Handler) json(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
