package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/gin-gonic/gin"
)

type Registrar interface {
	Register(ctx context.Context, in service.RegisterInput) (user.User, error)
	Login(ctx context.Context, in service.LoginInput) (user.User, error)
}

type TokenIssuer interface {
	GenerateAccessToken(u user.User) (auth.AccessToken, error)
}

type AuthHandler struct {
	users   Registrar
	tokens  TokenIssuer
	revoker auth.Revoker
	log     *slog.Logger
}

func NewAuthHandler(users Registrar, tokens TokenIssuer, revoker auth.Revoker, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{users: users, tokens: tokens, revoker: revoker, log: log}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req service.RegisterInput
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.users.Register(cctx, req)
	if err != nil {
		respondError(ctx, h.log, err, "")
		return
	}

	Respond(ctx, http.StatusCreated, "User registered successfully", u)
}

type loginResponse struct {
	Envelope
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req service.LoginInput
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.users.Login(cctx, req)
	if err != nil {
		respondError(ctx, h.log, err, "")
		return
	}

	tok, err := h.tokens.GenerateAccessToken(u)
	if err != nil {
		RespondInternal(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, loginResponse{
		Envelope:    Envelope{Message: "Login successful", Data: u},
		AccessToken: tok.Token,
		TokenType:   "Bearer",
		ExpiresAt:   tok.ExpiresAt,
	})
}

// Logout revokes the presented access token until it would have expired.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	jti, expiresAt, ok := middlewares.TokenFromContext(ctx)
	if !ok {
		RespondMessage(ctx, http.StatusUnauthorized, "Missing or invalid access token")
		return
	}

	if err := h.revoker.Revoke(ctx.Request.Context(), jti, expiresAt); err != nil {
		RespondInternal(ctx, h.log, err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "Logged out successfully")
}
