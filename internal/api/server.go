// Package api provides the HTTP JSON surface over the reconciliation
// service, chat formatter, and search history store.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/protein-atlas-server/internal/domain"
	"github.com/protein-atlas-server/internal/history"
	"github.com/protein-atlas-server/internal/service"
)

// Server represents the HTTP server
type Server struct {
	config     *domain.Config
	reconciler *service.Reconciler
	chat       *service.ChatFormatter
	history    history.Store
	logger     *logrus.Logger
	router     *gin.Engine
	server     *http.Server
}

// chatRequest is the body of POST /api/v1/chat.
type chatRequest struct {
	Query    string            `json:"query" binding:"required"`
	Question string            `json:"question" binding:"required"`
	History  []domain.ChatTurn `json:"history"`
}

// NewServer creates a new HTTP server instance
func NewServer(
	config *domain.Config,
	reconciler *service.Reconciler,
	chat *service.ChatFormatter,
	historyStore history.Store,
	logger *logrus.Logger,
) *Server {
	// Set Gin mode based on environment
	if config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())

	server := &Server{
		config:     config,
		reconciler: reconciler,
		chat:       chat,
		history:    historyStore,
		logger:     logger,
		router:     router,
	}

	server.setupRoutes()

	return server
}

// Start starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.config.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/protein/:query", s.handleGetProtein)
		v1.POST("/chat", s.handleChat)
		v1.GET("/history", s.handleListHistory)
		v1.GET("/history/:id", s.handleGetHistory)
		v1.DELETE("/history/:id", s.handleDeleteHistory)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"version":   "1.0.0",
	})
}

// handleGetProtein reconciles and returns the record for a query. The
// archived copy in the history store is best effort.
func (s *Server) handleGetProtein(c *gin.Context) {
	query := c.Param("query")

	record, err := s.reconciler.GetProteinRecord(c.Request.Context(), query)
	if err != nil {
		if domain.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{
				"code":  domain.ErrCodeNotFound,
				"error": err.Error(),
			})
			return
		}
		s.logger.WithFields(logrus.Fields{
			"query": query,
			"error": err.Error(),
		}).Error("Protein lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  domain.ErrCodeInternalServer,
			"error": "failed to resolve protein record",
		})
		return
	}

	entry := &history.SearchRecord{
		Query:      query,
		DataSource: record.DataSource,
		Record:     record,
	}
	if err := s.history.Save(c.Request.Context(), entry); err != nil {
		s.logger.WithFields(logrus.Fields{
			"query": query,
			"error": err.Error(),
		}).Warn("Failed to archive search")
	}

	c.JSON(http.StatusOK, record)
}

// handleChat answers a question about a previously resolvable query.
func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  domain.ErrCodeInvalidInput,
			"error": err.Error(),
		})
		return
	}

	record, err := s.reconciler.GetProteinRecord(c.Request.Context(), req.Query)
	if err != nil {
		if domain.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{
				"code":  domain.ErrCodeNotFound,
				"error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  domain.ErrCodeInternalServer,
			"error": "failed to resolve protein record",
		})
		return
	}

	answer := s.chat.Answer(record, req.Question, req.History)
	c.JSON(http.StatusOK, gin.H{
		"query":    req.Query,
		"question": req.Question,
		"answer":   answer,
	})
}

// handleListHistory returns archived searches, newest first.
func (s *Server) handleListHistory(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 50)
	offset := parseIntQuery(c, "offset", 0)

	records, err := s.history.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  domain.ErrCodeDatabaseError,
			"error": "failed to list search history",
		})
		return
	}

	count, err := s.history.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  domain.ErrCodeDatabaseError,
			"error": "failed to count search history",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":   count,
		"limit":   limit,
		"offset":  offset,
		"results": records,
	})
}

// handleGetHistory returns one archived search by ID.
func (s *Server) handleGetHistory(c *gin.Context) {
	id := c.Param("id")

	record, err := s.history.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  domain.ErrCodeDatabaseError,
			"error": "failed to load search history entry",
		})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":  domain.ErrCodeNotFound,
			"error": fmt.Sprintf("no history entry with id %q", id),
		})
		return
	}

	c.JSON(http.StatusOK, record)
}

// handleDeleteHistory removes one archived search by ID.
func (s *Server) handleDeleteHistory(c *gin.Context) {
	id := c.Param("id")

	if err := s.history.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  domain.ErrCodeDatabaseError,
			"error": "failed to delete search history entry",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// parseIntQuery reads a non-negative integer query parameter with a default.
func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-API-Key")
		c.Header("Access-Control-Expose-Headers", "Content-Length")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestIDMiddleware adds a unique request ID to each request
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}
