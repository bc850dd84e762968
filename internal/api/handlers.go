package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/neexbeast/wwtravelclub/internal/travel"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	repo  DestinationRepo
	cache DestinationCache
	log   *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(repo DestinationRepo, cache DestinationCache, log *slog.Logger) *Handlers {
	return &Handlers{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

type errorBody struct {
	Error string `json:"error"`
}

type packageRequest struct {
	Name              string          `json:"name"`
	Description       *string         `json:"description"`
	StartValidityDate *time.Time      `json:"start_validity_date"`
	EndValidityDate   *time.Time      `json:"end_validity_date"`
	DurationInDays    int             `json:"duration_in_days"`
	Price             decimal.Decimal `json:"price"`
}

type createDestinationRequest struct {
	Name        string           `json:"name"`
	Country     string           `json:"country"`
	Description *string          `json:"description"`
	Packages    []packageRequest `json:"packages"`
}

type updateDescriptionRequest struct {
	Description *string `json:"description"`
}

type adjustPricesRequest struct {
	Multiplier *decimal.Decimal `json:"multiplier"`
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps a persistence error kind onto an HTTP status.
func statusFor(err error) int {
	switch travel.KindOf(err) {
	case travel.KindNotFound:
		return http.StatusNotFound
	case travel.KindConstraintViolation:
		return http.StatusUnprocessableEntity
	case travel.KindConcurrencyConflict:
		return http.StatusConflict
	case travel.KindConnectivityFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and writes its mapped status. Constraint violations
// and not-found errors carry their message; everything else is opaque.
func (h *Handlers) writeError(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(msg, "err", err)
		writeJSON(w, status, errorBody{Error: http.StatusText(status)})
		return
	}
	h.log.Info(msg, "err", err)
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func (h *Handlers) invalidate(ctx context.Context, name string) {
	if err := h.cache.Delete(ctx, name); err != nil {
		h.log.Warn("cache delete failed", "name", name, "err", err)
	}
}

func destinationID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, errors.New("destination id must be a positive integer")
	}
	return id, nil
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// FindDestinationByName handles GET /api/v1/destinations?name={name}.
// Cache hit → return. DB hit → cache + return. Neither → 404.
func (h *Handlers) FindDestinationByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "name query parameter is required"})
		return
	}

	cached, err := h.cache.Get(r.Context(), name)
	if err != nil {
		h.log.Error("cache get failed", "name", name, "err", err)
	}
	if cached != nil {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	dest, err := h.repo.FindDestinationByName(r.Context(), name)
	if err != nil {
		h.writeError(w, "find destination failed", err)
		return
	}
	if dest == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "destination not found"})
		return
	}

	if err := h.cache.Set(r.Context(), dest); err != nil {
		h.log.Warn("cache set failed after db hit", "name", name, "err", err)
	}

	writeJSON(w, http.StatusOK, dest)
}

// GetDestination handles GET /api/v1/destinations/{id}.
func (h *Handlers) GetDestination(w http.ResponseWriter, r *http.Request) {
	id, err := destinationID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	dest, err := h.repo.GetDestination(r.Context(), id)
	if err != nil {
		h.writeError(w, "get destination failed", err)
		return
	}
	if dest == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "destination not found"})
		return
	}

	writeJSON(w, http.StatusOK, dest)
}

// CreateDestination handles POST /api/v1/destinations.
func (h *Handlers) CreateDestination(w http.ResponseWriter, r *http.Request) {
	var req createDestinationRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	dest := travel.Destination{Name: req.Name, Country: req.Country, Description: req.Description}
	packages := make([]travel.Package, 0, len(req.Packages))
	for _, p := range req.Packages {
		packages = append(packages, travel.Package{
			Name:              p.Name,
			Description:       p.Description,
			StartValidityDate: p.StartValidityDate,
			EndValidityDate:   p.EndValidityDate,
			DurationInDays:    p.DurationInDays,
			Price:             p.Price,
		})
	}

	created, err := h.repo.CreateDestinationWithPackages(r.Context(), dest, packages)
	if err != nil {
		h.writeError(w, "create destination failed", err)
		return
	}

	h.invalidate(r.Context(), created.Name)
	h.log.Info("destination created", "id", created.ID, "packages", len(created.Packages))
	writeJSON(w, http.StatusCreated, created)
}

// UpdateDescription handles PUT /api/v1/destinations/{id}/description.
func (h *Handlers) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	id, err := destinationID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	var req updateDescriptionRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	updated, err := h.repo.UpdateDestinationDescription(r.Context(), id, req.Description)
	if err != nil {
		h.writeError(w, "update description failed", err)
		return
	}

	h.invalidate(r.Context(), updated.Name)
	writeJSON(w, http.StatusOK, updated)
}

// AdjustPrices handles POST /api/v1/destinations/{id}/prices/adjust.
func (h *Handlers) AdjustPrices(w http.ResponseWriter, r *http.Request) {
	id, err := destinationID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	var req adjustPricesRequest
	if err := decodeBody(r, &req); err != nil || req.Multiplier == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "multiplier is required"})
		return
	}

	updated, err := h.repo.AdjustPackagePrices(r.Context(), id, *req.Multiplier)
	if err != nil {
		h.writeError(w, "adjust prices failed", err)
		return
	}

	h.invalidate(r.Context(), updated.Name)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteDestination handles DELETE /api/v1/destinations/{id}.
func (h *Handlers) DeleteDestination(w http.ResponseWriter, r *http.Request) {
	id, err := destinationID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	name, err := h.repo.DeleteDestination(r.Context(), id)
	if err != nil {
		h.writeError(w, "delete destination failed", err)
		return
	}

	h.invalidate(r.Context(), name)
	w.WriteHeader(http.StatusNoContent)
}

// HealthHandlerFunc returns an http.HandlerFunc that checks db and redis connectivity.
// Returns 200 if both respond, 503 otherwise.
func HealthHandlerFunc(db, redis Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{"status": "ok", "db": "ok", "redis": "ok"}

		if err := db.Ping(ctx); err != nil {
			log.Error("health check: db ping failed", "err", err)
			body["db"] = "error"
			status = http.StatusServiceUnavailable
		}

		if err := redis.Ping(ctx); err != nil {
			log.Error("health check: redis ping failed", "err", err)
			body["redis"] = "error"
			status = http.StatusServiceUnavailable
		}

		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		writeJSON(w, status, body)
	}
}
