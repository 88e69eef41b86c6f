// Package handler exposes POST /auth/login.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	dErrors "employeeapp/pkg/domain-errors"
	"employeeapp/pkg/platform/httputil"
	"employeeapp/pkg/requestcontext"
)

// Service defines the login operation.
type Service interface {
	Login(ctx context.Context, username string) (string, error)
}

// LoginRequest is the body of POST /auth/login. Password is accepted for
// client compatibility and not checked.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if len(r.Username) > 255 {
		return dErrors.New(dErrors.CodeValidation, "username must be at most 255 characters")
	}
	return nil
}

type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	token, err := h.service.Login(ctx, req.Username)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LoginResponse{Success: true, Token: token})
}
