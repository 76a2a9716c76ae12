package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type UserDirectory interface {
	ListActiveNonAdmins(ctx context.Context) ([]user.Summary, error)
	SoftDelete(ctx context.Context, id string) error
}

type UsersHandler struct {
	users UserDirectory
	log   *slog.Logger
}

func NewUsersHandler(users UserDirectory, log *slog.Logger) *UsersHandler {
	if log == nil {
		log = slog.Default()
	}
	return &UsersHandler{users: users, log: log}
}

func (h *UsersHandler) List(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	users, err := h.users.ListActiveNonAdmins(cctx)
	if err != nil {
		RespondInternal(ctx, h.log, err)
		return
	}

	if len(users) == 0 {
		Respond(ctx, http.StatusNotFound, "No users found", users)
		return
	}

	Respond(ctx, http.StatusOK, "Users retrieved successfully", users)
}

func (h *UsersHandler) Delete(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.users.SoftDelete(cctx, ctx.Param("id")); err != nil {
		respondError(ctx, h.log, err, "")
		return
	}

	RespondMessage(ctx, http.StatusOK, "User deleted successfully")
}
