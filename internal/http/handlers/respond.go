package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/gin-gonic/gin"
)

// Envelope is the shape of every API response.
type Envelope struct {
	Message string              `json:"message"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func Respond(ctx *gin.Context, status int, message string, data interface{}) {
	ctx.JSON(status, Envelope{Message: message, Data: data})
}

func RespondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, Envelope{Message: message})
}

func RespondValidation(ctx *gin.Context, fields map[string][]string) {
	ctx.JSON(http.StatusUnprocessableEntity, Envelope{
		Message: "The given data was invalid.",
		Errors:  fields,
	})
}

func RespondInternal(ctx *gin.Context, log *slog.Logger, err error) {
	if log == nil {
		log = slog.Default()
	}
	log.ErrorContext(ctx.Request.Context(), "request failed",
		"route", ctx.FullPath(),
		"err", err,
	)

	RespondMessage(ctx, http.StatusInternalServerError, "Internal server error")
}

// respondError maps service and domain errors onto the envelope. notFound
// is the message used when the missing record is a task.
func respondError(ctx *gin.Context, log *slog.Logger, err error, notFound string) {
	var verr *service.ValidationError

	switch {
	case errors.As(err, &verr):
		RespondValidation(ctx, verr.Fields)
	case errors.Is(err, service.ErrInvalidCredentials):
		RespondMessage(ctx, http.StatusUnauthorized, "Invalid email or password.")
	case errors.Is(err, service.ErrInvalidUser):
		RespondMessage(ctx, http.StatusNotFound, "Invalid user ID")
	case errors.Is(err, service.ErrUserHasTasks):
		RespondMessage(ctx, http.StatusBadRequest, "User cannot be deleted as tasks are assigned to them")
	case errors.Is(err, user.ErrNotFound):
		RespondMessage(ctx, http.StatusNotFound, "User not found")
	case errors.Is(err, task.ErrNotFound):
		RespondMessage(ctx, http.StatusNotFound, notFound)
	default:
		RespondInternal(ctx, log, err)
	}
}
