package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"loadrun_srv/internal/config"
	"loadrun_srv/internal/models"
	"loadrun_srv/internal/service"
	"loadrun_srv/internal/warehouse"
)

// Server represents the HTTP server
type Server struct {
	echo     *echo.Echo
	service  service.LoadRunService
	db       *gorm.DB
	sessions warehouse.SessionFactory
	logger   *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg config.Config, runService service.LoadRunService, db *gorm.DB, sessions warehouse.SessionFactory, logger *logrus.Logger) *Server {
	e := echo.New()
	e.Debug = cfg.Server.Debug
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	server := &Server{
		echo:     e,
		service:  runService,
		db:       db,
		sessions: sessions,
		logger:   logger,
	}

	server.setupRoutes()
	return server
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.WithField("address", address).Info("Starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// setupRoutes configures the server routes
func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", s.healthCheck)

	// API routes
	api := s.echo.Group("/api/v1")
	{
		runs := api.Group("/runs")
		{
			runs.POST("", s.createRun)
			runs.GET("", s.listRuns)
			runs.GET("/:id", s.getRun)
			runs.POST("/:id/cancel", s.cancelRun)
			runs.DELETE("/:id", s.deleteRun)
			runs.GET("/:id/report", s.downloadReport)
		}
	}
}

// createRunRequest is the payload for starting a new load run
type createRunRequest struct {
	Title      string      `json:"title"`
	Query      string      `json:"query"`
	StartDate  string      `json:"start_date"`
	EndDate    string      `json:"end_date"`
	Parameters models.JSON `json:"parameters,omitempty"`
	CreatedBy  string      `json:"created_by"`
}

func (s *Server) createRun(c echo.Context) error {
	var req createRunRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	run := &models.LoadRun{
		Title:      req.Title,
		Query:      req.Query,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Parameters: req.Parameters,
		CreatedBy:  req.CreatedBy,
		UpdatedBy:  req.CreatedBy,
	}

	if err := s.service.CreateRun(c.Request().Context(), run); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, run)
}

func (s *Server) listRuns(c echo.Context) error {
	params := service.ListRunParams{
		Search:   c.QueryParam("search"),
		SortBy:   c.QueryParam("sort_by"),
		SortDesc: c.QueryParam("sort_desc") == "true",
	}

	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		params.Page = page
	}
	if size, err := strconv.Atoi(c.QueryParam("page_size")); err == nil {
		params.PageSize = size
	}
	if status := c.QueryParam("status"); status != "" {
		st := models.LoadRunStatus(status)
		params.Status = &st
	}

	result, err := s.service.ListRuns(c.Request().Context(), params)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) getRun(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	run, err := s.service.GetRun(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	return c.JSON(http.StatusOK, run)
}

func (s *Server) cancelRun(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := s.service.CancelRun(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) deleteRun(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := s.service.DeleteRun(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) downloadReport(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	reader, filename, err := s.service.GetRunReport(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	defer reader.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Stream(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", reader)
}

func (s *Server) healthCheck(c echo.Context) error {
	ctx := c.Request().Context()

	status := map[string]string{
		"status":    "ok",
		"database":  "ok",
		"warehouse": "ok",
	}
	code := http.StatusOK

	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		status["database"] = "unreachable"
		status["status"] = "degraded"
		code = http.StatusServiceUnavailable
	}

	if err := s.sessions.Ping(ctx); err != nil {
		status["warehouse"] = "unreachable"
		status["status"] = "degraded"
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, status)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid run id")
	}
	return uint(id), nil
}
