package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"road-route-server/models"
	"road-route-server/services"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// DirectionsHandler serves the routing API on a gorilla/mux router.
type DirectionsHandler struct {
	routingService *services.RoutingService
	validate       *validator.Validate
	logger         *zap.Logger
}

func NewDirectionsHandler(routingService *services.RoutingService, logger *zap.Logger) *DirectionsHandler {
	validate := validator.New()
	// Share the request models' gin binding tags.
	validate.SetTagName("binding")

	return &DirectionsHandler{
		routingService: routingService,
		validate:       validate,
		logger:         logger,
	}
}

func (h *DirectionsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/directions", h.Directions).Methods("GET")
	router.HandleFunc("/find-path", h.FindPath).Methods("POST")
	router.HandleFunc("/health", h.Health).Methods("GET")
}

func (h *DirectionsHandler) Directions(w http.ResponseWriter, r *http.Request) {
	q, err := parseDirectionsQuery(r)
	if err != nil {
		h.writeError(w, r, invalidInput(err))
		return
	}

	res, err := h.routingService.ComputeRoute(r.Context(), q.Coordinates())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.DirectionsResponse{Path: models.PathPairs(res.Path)})
}

func (h *DirectionsHandler) FindPath(w http.ResponseWriter, r *http.Request) {
	var req models.FindPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, invalidInput(fmt.Errorf("invalid request body: %w", err)))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, r, invalidInput(err))
		return
	}

	res, err := h.routingService.ComputeRoute(r.Context(), req.Coordinates())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewFindPathResponse(res))
}

func (h *DirectionsHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: "healthy"})
}

func (h *DirectionsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Directions request failed", zap.Error(err))
	}
	writeJSON(w, status, models.NewErrorResponse(err, GetRequestID(r.Context())))
}

func parseDirectionsQuery(r *http.Request) (models.DirectionsQuery, error) {
	values := r.URL.Query()
	parse := func(name string) (*float64, error) {
		raw := values.Get(name)
		if raw == "" {
			return nil, fmt.Errorf("missing query parameter %s", name)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid query parameter %s: %w", name, err)
		}
		return &v, nil
	}

	var q models.DirectionsQuery
	var err error
	if q.StartLat, err = parse("startLat"); err != nil {
		return q, err
	}
	if q.StartLon, err = parse("startLon"); err != nil {
		return q, err
	}
	if q.EndLat, err = parse("endLat"); err != nil {
		return q, err
	}
	if q.EndLon, err = parse("endLon"); err != nil {
		return q, err
	}
	return q, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
