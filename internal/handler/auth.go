package handler

import (
	"net/http"

	"github.com/clipship/backend/internal/service"
)

type AuthHandler struct {
	sessionService *service.SessionService
}

func NewAuthHandler(sessionService *service.SessionService) *AuthHandler {
	return &AuthHandler{
		sessionService: sessionService,
	}
}

// SignOut clears the session cookie. The OAuth/identity-provider side of
// sign-out happens outside this service.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.sessionService.SignOut(w)
	w.WriteHeader(http.StatusNoContent)
}
