package runs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// APIServer exposes the run history over HTTP.
type APIServer struct {
	store *Store
}

// NewAPIServer creates a new run history API server.
func NewAPIServer(store *Store) *APIServer {
	return &APIServer{
		store: store,
	}
}

// SetupRouter configures the Gin router with the run history routes.
func (s *APIServer) SetupRouter() *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	api := router.Group("/api/v1")
	api.GET("/runs", s.HandleListRuns)
	api.GET("/runs/:id", s.HandleGetRun)
	api.DELETE("/runs/:id", s.HandleDeleteRun)

	return router
}

// ListRunsResponse represents the response for GET /api/v1/runs.
type ListRunsResponse struct {
	Runs  []Run `json:"runs"`
	Total int   `json:"total"`
}

func errorResponse(code, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

func (s *APIServer) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrRunNotFound):
		c.JSON(http.StatusNotFound, errorResponse("not_found", err.Error()))
	case errors.Is(err, ErrInvalidKind), errors.Is(err, ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, errorResponse("validation_error", err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to process request"))
	}
}

// HandleListRuns handles GET /api/v1/runs.
func (s *APIServer) HandleListRuns(c *gin.Context) {
	filter := RunFilter{}

	if kind := c.Query("kind"); kind != "" {
		if err := validateKind(kind); err != nil {
			s.handleError(c, err)
			return
		}
		filter.Kind = &kind
	}
	if status := c.Query("status"); status != "" {
		if err := validateStatus(status); err != nil {
			s.handleError(c, err)
			return
		}
		filter.Status = &status
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, errorResponse("validation_error", "invalid "+name))
			return
		}
		*dst = n
	}

	runs, err := s.store.ListRuns(filter)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListRunsResponse{
		Runs:  runs,
		Total: len(runs),
	})
}

// HandleGetRun handles GET /api/v1/runs/{id}.
func (s *APIServer) HandleGetRun(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", "Invalid run ID"))
		return
	}

	run, err := s.store.GetRun(runID)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, run)
}

// HandleDeleteRun handles DELETE /api/v1/runs/{id}.
func (s *APIServer) HandleDeleteRun(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", "Invalid run ID"))
		return
	}

	if err := s.store.DeleteRun(runID); err != nil {
		s.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
