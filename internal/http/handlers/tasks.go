package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/gin-gonic/gin"
)

type TaskRegistry interface {
	ListOwn(ctx context.Context, callerID string) ([]task.Task, error)
	ListPending(ctx context.Context, filterUserID *string) ([]task.Enriched, error)
	ListCompleted(ctx context.Context, filterUserID *string) ([]task.Enriched, error)
	Create(ctx context.Context, in service.CreateTaskInput, callerID string) (task.Task, error)
	Update(ctx context.Context, id string, in service.UpdateTaskInput) (task.Task, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (task.Task, error)
	Complete(ctx context.Context, id string) (task.Task, bool, error)
}

type TasksHandler struct {
	tasks TaskRegistry
	log   *slog.Logger
}

func NewTasksHandler(tasks TaskRegistry, log *slog.Logger) *TasksHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TasksHandler{tasks: tasks, log: log}
}

const (
	msgTaskNotFound = "Task not found"
	msgTaskGone     = "Task not found or already deleted"
)

func requestContext(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), 3*time.Second)
}

// ListOwn serves GET /tasks for the authenticated caller.
func (h *TasksHandler) ListOwn(ctx *gin.Context) {
	callerID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondMessage(ctx, http.StatusUnauthorized, "Unauthenticated")
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	tasks, err := h.tasks.ListOwn(cctx, callerID)
	if err != nil {
		RespondInternal(ctx, h.log, err)
		return
	}

	if len(tasks) == 0 {
		Respond(ctx, http.StatusNotFound, "No tasks found", tasks)
		return
	}

	Respond(ctx, http.StatusOK, "Tasks retrieved successfully", tasks)
}

type listFilterRequest struct {
	UserID *string `json:"user_id"`
}

// filterUserID is nil only when user_id was absent or null. A present but
// blank value is passed on so it resolves to an invalid user.
func (r listFilterRequest) filterUserID() *string {
	if r.UserID == nil {
		return nil
	}
	id := strings.TrimSpace(*r.UserID)
	return &id
}

func (h *TasksHandler) ListPending(ctx *gin.Context) {
	h.listScoped(ctx, h.tasks.ListPending, "No pending tasks found", "Pending tasks retrieved successfully")
}

func (h *TasksHandler) ListCompleted(ctx *gin.Context) {
	h.listScoped(ctx, h.tasks.ListCompleted, "No completed tasks found", "Completed tasks retrieved successfully")
}

// listScoped answers 200 even when nothing matched.
func (h *TasksHandler) listScoped(
	ctx *gin.Context,
	list func(context.Context, *string) ([]task.Enriched, error),
	emptyMsg, okMsg string,
) {
	var req listFilterRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	tasks, err := list(cctx, req.filterUserID())
	if err != nil {
		respondError(ctx, h.log, err, msgTaskNotFound)
		return
	}

	if len(tasks) == 0 {
		Respond(ctx, http.StatusOK, emptyMsg, tasks)
		return
	}

	Respond(ctx, http.StatusOK, okMsg, tasks)
}

// Create serves POST /tasks. It answers 200, not 201.
func (h *TasksHandler) Create(ctx *gin.Context) {
	var req service.CreateTaskInput
	if !BindJSON(ctx, &req) {
		return
	}

	callerID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := requestContext(ctx)
	defer cancel()

	t, err := h.tasks.Create(cctx, req, callerID)
	if err != nil {
		respondError(ctx, h.log, err, msgTaskNotFound)
		return
	}

	Respond(ctx, http.StatusOK, "Task created successfully", t)
}

func (h *TasksHandler) Update(ctx *gin.Context) {
	var req service.UpdateTaskInput
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	t, err := h.tasks.Update(cctx, ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, h.log, err, msgTaskNotFound)
		return
	}

	Respond(ctx, http.StatusOK, "Task updated successfully", t)
}

func (h *TasksHandler) Delete(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx)
	defer cancel()

	if err := h.tasks.Delete(cctx, ctx.Param("id")); err != nil {
		respondError(ctx, h.log, err, msgTaskGone)
		return
	}

	RespondMessage(ctx, http.StatusOK, "Task deleted successfully")
}

func (h *TasksHandler) Show(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx)
	defer cancel()

	t, err := h.tasks.Get(cctx, ctx.Param("id"))
	if err != nil {
		respondError(ctx, h.log, err, msgTaskNotFound)
		return
	}

	Respond(ctx, http.StatusOK, "Task retrieved successfully", t)
}

func (h *TasksHandler) Complete(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx)
	defer cancel()

	t, changed, err := h.tasks.Complete(cctx, ctx.Param("id"))
	if err != nil {
		respondError(ctx, h.log, err, msgTaskGone)
		return
	}

	if !changed {
		Respond(ctx, http.StatusOK, "Task is already completed", t)
		return
	}

	Respond(ctx, http.StatusOK, "Task marked as completed successfully", t)
}
