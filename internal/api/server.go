// Package api exposes the reading pipeline over HTTP: enqueue a reading
// job, poll its results, fetch a finished reading, and preview a composed
// prompt without spending model budget.
package api

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/oneinabillion/readings/internal/compose"
	"github.com/oneinabillion/readings/internal/jobqueue"
	"github.com/oneinabillion/readings/internal/layers"
	"github.com/oneinabillion/readings/pkg/models"
)

// Server represents the API server.
type Server struct {
	echo     *echo.Echo
	addr     string
	queue    *jobqueue.JobQueue
	composer *compose.Composer
}

// NewServer creates a new API server.
func NewServer(addr string, queue *jobqueue.JobQueue, registry *layers.Registry) *Server {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	server := &Server{
		echo:     e,
		addr:     addr,
		queue:    queue,
		composer: compose.NewComposer(registry),
	}

	server.setupRoutes()

	return server
}

// setupRoutes configures all API endpoints.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	v1 := s.echo.Group("/api/v1")

	v1.POST("/readings", s.createReadingJob)
	v1.GET("/readings/requests/:request_id", s.getRequestStatus)
	v1.GET("/readings/:id", s.getReadingByID)
	v1.POST("/prompts/preview", s.previewPrompt)
}

// Start begins the API server and blocks until interrupted.
func (s *Server) Start() error {
	go func() {
		if err := s.echo.Start(s.addr); err != nil && err != http.ErrServerClosed {
			s.echo.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.echo.Shutdown(ctx)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

type createReadingResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

func (s *Server) createReadingJob(c echo.Context) error {
	var payload models.JobPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload: "+err.Error())
	}
	if payload.Person1.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "person1.name is required")
	}
	if payload.ChartData == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "chart_data is required")
	}
	for _, system := range payload.Systems {
		if !layers.KnownSystem(system) {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown system: "+system)
		}
	}
	switch payload.Type {
	case models.JobTypeSynastry, models.JobTypeBundleVerdict:
		if payload.Person2 == nil || payload.Person2.Name == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "person2 is required for "+payload.Type)
		}
		if payload.ChartData2 == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "chart_data2 is required for "+payload.Type)
		}
	}

	requestID := uuid.NewString()
	if err := s.queue.QueueReadingJob(c.Request().Context(), requestID, payload); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to queue job: "+err.Error())
	}

	return c.JSON(http.StatusAccepted, createReadingResponse{
		RequestID: requestID,
		Status:    "queued",
	})
}

func (s *Server) getRequestStatus(c echo.Context) error {
	requestID := c.Param("request_id")
	readings, err := s.queue.ReadingsForRequest(c.Request().Context(), requestID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"request_id": requestID,
		"readings":   readings,
	})
}

func (s *Server) getReadingByID(c echo.Context) error {
	reading, err := s.queue.Reading(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "reading not found")
	}
	return c.JSON(http.StatusOK, reading)
}

// previewPrompt composes the layered prompt for a payload without calling
// the model. Debug surface for layer authors.
func (s *Server) previewPrompt(c echo.Context) error {
	var payload models.JobPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload: "+err.Error())
	}

	result, err := s.composer.ComposeFromJobPayload(&payload)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}
