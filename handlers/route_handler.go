package handlers

import (
	"net/http"

	"road-route-server/geosource"
	"road-route-server/models"
	"road-route-server/preprocessing"
	"road-route-server/routing"
	"road-route-server/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteHandler serves the routing API on a gin router.
type RouteHandler struct {
	routingService *services.RoutingService
	snapshots      *geosource.SnapshotStore // nil when the graph cache is disabled
	sourceName     string
	logger         *zap.Logger
}

func NewRouteHandler(routingService *services.RoutingService, snapshots *geosource.SnapshotStore, sourceName string, logger *zap.Logger) *RouteHandler {
	return &RouteHandler{
		routingService: routingService,
		snapshots:      snapshots,
		sourceName:     sourceName,
		logger:         logger,
	}
}

func (h *RouteHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/find-path", h.FindPath)
	r.GET("/directions", h.Directions)
	r.GET("/health", h.Health)
	if h.snapshots != nil {
		r.POST("/admin/graph/refresh", h.RefreshGraph)
	}
}

// FindPath routes from start through the optional waypoints to end.
// With ?format=geojson the route is returned as a GeoJSON Feature.
func (h *RouteHandler) FindPath(c *gin.Context) {
	var req models.FindPathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, invalidInput(err))
		return
	}

	res, err := h.routingService.ComputeRoute(c.Request.Context(), req.Coordinates())
	if err != nil {
		h.fail(c, err)
		return
	}

	if c.Query("format") == "geojson" {
		c.JSON(http.StatusOK, preprocessing.RouteFeature(res))
		return
	}
	c.JSON(http.StatusOK, models.NewFindPathResponse(res))
}

// Directions routes between the start and end given in the query string.
func (h *RouteHandler) Directions(c *gin.Context) {
	var q models.DirectionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.fail(c, invalidInput(err))
		return
	}

	res, err := h.routingService.ComputeRoute(c.Request.Context(), q.Coordinates())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DirectionsResponse{Path: models.PathPairs(res.Path)})
}

func (h *RouteHandler) Health(c *gin.Context) {
	resp := models.HealthResponse{Status: "healthy", Source: h.sourceName}
	if h.snapshots != nil {
		if info, ok := h.snapshots.Info(); ok {
			resp.Graph = info
		}
	}
	c.JSON(http.StatusOK, resp)
}

// RefreshGraph rebuilds the cached graph snapshot. It is only registered when
// the graph cache is enabled.
func (h *RouteHandler) RefreshGraph(c *gin.Context) {
	info, err := h.snapshots.Refresh(c.Request.Context())
	if err != nil {
		h.fail(c, routing.Upstream(err))
		return
	}
	h.logger.Info("Graph snapshot refreshed on request", zap.String("version", info.Version))
	c.JSON(http.StatusOK, info)
}

func (h *RouteHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(StatusFor(err), models.NewErrorResponse(err, GetRequestID(c.Request.Context())))
}
