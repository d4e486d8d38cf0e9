// Package api provides the REST and WebSocket API for resolving and sending
// dLive console commands
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/shedworth/companion-module-allenheath-dlive/pkg/command"
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/console"
)

// @title dLive Control API
// @version 1.0
// @description Resolve operator intents into Allen & Heath dLive commands and send them to the console
// @host localhost:8080
// @BasePath /api/v1

const shutdownTimeout = 5 * time.Second

// Server serves the API on top of a dispatcher
type Server struct {
	dispatcher *command.Dispatcher
	logger     *zap.Logger
	upgrader   websocket.Upgrader
}

// NewServer creates a new Server. A nil logger disables logging.
func NewServer(dispatcher *command.Dispatcher, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		dispatcher: dispatcher,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Router builds the gin engine with every route mounted
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.logger))
	r.Use(corsMiddleware())

	r.GET("/health", healthCheck)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/operations", listOperations)
		v1.GET("/catalog/channels", listChannels)
		v1.GET("/catalog/sockets", listSockets)
		v1.GET("/catalog/choices", listTables)
		v1.GET("/catalog/choices/:table", getTable)
		v1.POST("/commands/resolve", s.resolveCommand)
		v1.POST("/commands/dispatch", s.dispatchCommand)
		v1.POST("/commands/batch", s.dispatchBatch)
		v1.GET("/ws", s.handleWebSocket)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("status", c.Writer.Status()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "dlive",
	})
}

// listOperations godoc
// @Summary List operations
// @Description Returns every operation with its targets and fields
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/operations [get]
func listOperations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"operations": command.Operations()})
}

// listChannels godoc
// @Summary List channel kinds
// @Description Returns every channel kind with its count and capabilities
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string][]console.KindSummary
// @Router /api/v1/catalog/channels [get]
func listChannels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"channels": console.Channels()})
}

// listSockets godoc
// @Summary List socket kinds
// @Description Returns the preamp socket kinds
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string][]console.KindSummary
// @Router /api/v1/catalog/sockets [get]
func listSockets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sockets": console.Sockets()})
}

// listTables godoc
// @Summary List choice tables
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/catalog/choices [get]
func listTables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tables": console.TableNames()})
}

// getTable godoc
// @Summary Get a choice table
// @Description Returns the (id, label) entries of an enumerated table
// @Tags catalog
// @Produce json
// @Param table path string true "Table name, e.g. fader_level"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /api/v1/catalog/choices/{table} [get]
func getTable(c *gin.Context) {
	name := c.Param("table")
	entries, ok := console.Table(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown choice table " + name})
		return
	}
	c.JSON(http.StatusOK, gin.H{"table": name, "choices": entries})
}

// resolveCommand godoc
// @Summary Resolve a request
// @Description Validates, resolves and encodes a request without sending it
// @Tags commands
// @Accept json
// @Produce json
// @Param request body command.Request true "Operation and fields"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Failure 422 {object} errorResponse
// @Router /api/v1/commands/resolve [post]
func (s *Server) resolveCommand(c *gin.Context) {
	var req command.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	cmd, err := s.dispatcher.Resolve(req)
	if err != nil {
		status, body := errorFor(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, gin.H{"command": cmd})
}

// dispatchCommand godoc
// @Summary Send a request
// @Description Resolves a request and sends the command to the console
// @Tags commands
// @Accept json
// @Produce json
// @Param request body command.Request true "Operation and fields"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Failure 422 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Router /api/v1/commands/dispatch [post]
func (s *Server) dispatchCommand(c *gin.Context) {
	var req command.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	cmd, err := s.dispatcher.Dispatch(c.Request.Context(), req)
	if err != nil {
		status, body := errorFor(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, gin.H{"command": cmd, "sent": true})
}

type batchRequest struct {
	Steps []command.Request `json:"steps"`
}

// dispatchBatch godoc
// @Summary Send several requests
// @Description Resolves every request first and sends only when all are valid
// @Tags commands
// @Accept json
// @Produce json
// @Param request body batchRequest true "Ordered requests"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} errorResponse
// @Failure 422 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /api/v1/commands/batch [post]
func (s *Server) dispatchBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Steps) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no steps"})
		return
	}

	cmds, err := s.dispatcher.DispatchAll(c.Request.Context(), req.Steps)
	if err != nil {
		status, body := errorFor(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commands": cmds, "sent": len(cmds)})
}
