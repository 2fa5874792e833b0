package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"task-tracker/internal/auth"
	"task-tracker/internal/domain"
	"task-tracker/internal/exporter"
	"task-tracker/internal/service"
)

// TokenVerifier checks bearer tokens for the access guard.
type TokenVerifier interface {
	Verify(token string) (auth.Claim, error)
}

// Pinger reports store liveness for the health check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth    service.AuthService
	tasks   service.TaskService
	tokens  TokenVerifier
	exports exporter.Manager
	db      Pinger
	logger  *logrus.Logger

	// uniformLoginErrors hides whether a username exists when login fails.
	uniformLoginErrors bool
}

// NewHandler builds the API handler. exports and db may be nil, which
// disables the export routes and the store ping respectively.
func NewHandler(authSvc service.AuthService, tasks service.TaskService, tokens TokenVerifier, exports exporter.Manager, db Pinger, logger *logrus.Logger, uniformLoginErrors bool) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		auth:               authSvc,
		tasks:              tasks,
		tokens:             tokens,
		exports:            exports,
		db:                 db,
		logger:             logger,
		uniformLoginErrors: uniformLoginErrors,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), metricsMiddleware(), corsMiddleware())

	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
	}

	tasks := router.Group("/tasks", RequireAuth(h.tokens, h.logger))
	{
		tasks.GET("", h.listTasks)
		tasks.POST("", h.createTask)
		tasks.GET("/:id", h.getTask)
		tasks.PUT("/:id", h.updateTask)
		tasks.PATCH("/:id/toggle", h.toggleTask)
		tasks.DELETE("/:id", h.deleteTask)
	}

	exports := router.Group("/exports", RequireAuth(h.tokens, h.logger))
	{
		exports.POST("", h.createExport)
		exports.GET("", h.listExports)
		exports.GET("/url", h.exportURL)
		exports.DELETE("", h.purgeExports)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) health(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.WithError(err).Error("health check: database unreachable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": "ok"})
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	if _, err := h.auth.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		authAttempts.WithLabelValues("register", outcome(err)).Inc()
		h.writeError(c, err)
		return
	}

	authAttempts.WithLabelValues("register", "success").Inc()
	c.JSON(http.StatusCreated, gin.H{"message": "user registered successfully"})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		authAttempts.WithLabelValues("login", outcome(err)).Inc()
		h.writeError(c, err)
		return
	}

	authAttempts.WithLabelValues("login", "success").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": token})
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// updateTaskRequest uses pointers so an omitted field can be told apart from
// an explicit zero value.
type updateTaskRequest struct {
	Title       *string `json:"title"`
	Text        *string `json:"text"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func (r updateTaskRequest) patch() domain.TaskPatch {
	return domain.TaskPatch{
		Title:       optional(r.Title),
		Text:        optional(r.Text),
		Description: optional(r.Description),
		Completed:   optional(r.Completed),
	}
}

func optional[T any](v *T) domain.Optional[T] {
	if v == nil {
		return domain.Optional[T]{}
	}
	return domain.Some(*v)
}

func (h *Handler) listTasks(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		return
	}

	tasks, err := h.tasks.List(c.Request.Context(), ownerID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]TaskResponse, len(tasks))
	for i := range tasks {
		resp[i] = taskToResponse(tasks[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getTask(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), ownerID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(*task))
}

func (h *Handler) createTask(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	description := ""
	if req.Description != nil {
		description = *req.Description
	}

	task, err := h.tasks.Create(c.Request.Context(), ownerID, req.Title, description)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, taskToResponse(*task))
}

func (h *Handler) updateTask(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task title is required"})
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), ownerID, id, req.patch())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToSummary(*task))
}

func (h *Handler) toggleTask(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.tasks.Toggle(c.Request.Context(), ownerID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToSummary(*task))
}

func (h *Handler) deleteTask(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), ownerID, id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task deleted successfully"})
}

// taskID parses the :id path segment. Anything that is not a positive integer
// cannot name one of the caller's tasks, so it is reported as not found.
func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrNotFoundOrForbidden.Error()})
		return 0, false
	}
	return id, true
}

type TaskResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// TaskSummaryResponse is the abbreviated shape returned by update and toggle.
type TaskSummaryResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

func taskToResponse(task domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
	}
}

func taskToSummary(task domain.Task) TaskSummaryResponse {
	return TaskSummaryResponse{
		ID:        task.ID,
		Title:     task.Title,
		Completed: task.Completed,
	}
}
