// Package httpapi serves the mirror's JSON read API.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/laviddichterman/wario-ux-shared/internal/platform/errors"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/cart"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/query"
)

const maxBodyBytes = 1 << 20

// Options configures optional routes.
type Options struct {
	// MCP, when set, is mounted at /mcp.
	MCP http.Handler
}

// Handler routes read requests to the query service.
type Handler struct {
	svc *query.Service
	mux *http.ServeMux
}

// NewHandler builds the API routes.
func NewHandler(svc *query.Service, opts Options) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("query service is required")
	}
	h := &Handler{svc: svc, mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	h.mux.HandleFunc("GET /readyz", h.handleReady)
	h.mux.HandleFunc("GET /v1/state", h.handleState)
	h.mux.HandleFunc("GET /v1/catalog/{kind}", h.handleCatalogIDs)
	h.mux.HandleFunc("GET /v1/catalog/{kind}/{id}", h.handleCatalogRecord)
	h.mux.HandleFunc("GET /v1/categories/{id}/products", h.handleCategoryProducts)
	h.mux.HandleFunc("GET /v1/categories/{id}/subcategories", h.handleSubcategories)
	h.mux.HandleFunc("POST /v1/products/{id}/metadata", h.handleProductMetadata)
	h.mux.HandleFunc("POST /v1/cart/grouped", h.handleGroupedCart)
	h.mux.HandleFunc("POST /v1/cart/summary", h.handleCartSummary)
	h.mux.HandleFunc("POST /v1/fulfillments/{id}/service-info", h.handleServiceInfo)
	h.mux.HandleFunc("GET /v1/settings", h.handleSettings)
	h.mux.HandleFunc("GET /v1/credit/validate", h.handleValidateCredit)
	if opts.MCP != nil {
		h.mux.Handle("/mcp", opts.MCP)
		h.mux.Handle("/mcp/", opts.MCP)
	}
	h.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, apperrors.New(apperrors.CodeRouteNotFound, fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path)))
	})
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Ready() {
		writeError(w, r, apperrors.New(apperrors.CodeNotReady, "storefront data has not loaded"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

func (h *Handler) handleCatalogIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := h.svc.CatalogIDs(r.PathValue("kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"kind": r.PathValue("kind"), "ids": ids})
}

func (h *Handler) handleCatalogRecord(w http.ResponseWriter, r *http.Request) {
	record, err := h.svc.CatalogRecord(r.PathValue("kind"), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) handleCategoryProducts(w http.ResponseWriter, r *http.Request) {
	q, err := categoryQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	listing, err := h.svc.CategoryProducts(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *Handler) handleSubcategories(w http.ResponseWriter, r *http.Request) {
	q, err := categoryQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	listing, err := h.svc.Subcategories(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func categoryQuery(r *http.Request) (query.CategoryQuery, error) {
	values := r.URL.Query()
	orderTime, err := parseTime(values.Get("time"))
	if err != nil {
		return query.CategoryQuery{}, err
	}
	return query.CategoryQuery{
		CategoryID:    r.PathValue("id"),
		Filter:        values.Get("filter"),
		OrderTime:     orderTime,
		FulfillmentID: values.Get("fulfillment"),
	}, nil
}

func parseTime(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0, apperrors.New(apperrors.CodeInvalidTime, fmt.Sprintf("time %q must be epoch milliseconds", raw))
	}
	return value, nil
}

func (h *Handler) handleProductMetadata(w http.ResponseWriter, r *http.Request) {
	var q query.MetadataQuery
	if err := decodeBody(w, r, &q); err != nil {
		writeError(w, r, err)
		return
	}
	q.ProductID = r.PathValue("id")
	view, err := h.svc.ProductMetadata(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleGroupedCart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Entries []cart.Entry `json:"entries"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	groups, err := h.svc.GroupedCart(body.Entries)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if groups == nil {
		groups = []cart.Group[cart.Entry]{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

func (h *Handler) handleCartSummary(w http.ResponseWriter, r *http.Request) {
	var req query.SummaryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := h.svc.CartSummary(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleServiceInfo(w http.ResponseWriter, r *http.Request) {
	var req query.ServiceInfoRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.FulfillmentID = r.PathValue("id")
	rows, err := h.svc.ServiceInfo(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (h *Handler) handleSettings(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Settings()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleValidateCredit(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.ValidateCredit(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidRequest, fmt.Sprintf("decode request body: %v", err), err)
	}
	return nil
}

type errorResponse struct {
	Code     apperrors.Code    `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) {
		log.Printf("httpapi: %s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: apperrors.CodeUnknown, Message: "internal error"})
		return
	}
	status := domainErr.Code.HTTPStatus()
	if status >= http.StatusInternalServerError && domainErr.Code != apperrors.CodeNotReady {
		log.Printf("httpapi: %s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorResponse{Code: domainErr.Code, Message: domainErr.Message, Metadata: domainErr.Metadata})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}
