package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/lushhair/storefront/internal/auth"
	"github.com/lushhair/storefront/internal/user"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthHandler struct {
	users    user.Service
	sessions auth.Service
	validate *validator.Validate
	secure   bool
}

func NewAuthHandler(users user.Service, sessions auth.Service, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		validate: validator.New(),
		secure:   secureCookies,
	}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/register", h.handleRegister)
	router.Post("/auth/login", h.handleLogin)
	router.Post("/auth/logout", h.handleLogout)
	router.Get("/auth/me", h.handleMe)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var requestPayload RegisterRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	newUser := &user.User{
		Name:  requestPayload.Name,
		Email: requestPayload.Email,
		Phone: requestPayload.Phone,
		Role:  user.RoleUser,
	}

	created, err := h.users.Register(r.Context(), newUser, requestPayload.Password)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register user")
		respondWithMappedError(w, err, "Failed to register user")
		return
	}

	h.startSession(w, r, created)
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var requestPayload LoginRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	u, err := h.users.Authenticate(r.Context(), requestPayload.Email, requestPayload.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", requestPayload.Email).Msg("Login failed")
		respondWithMappedError(w, err, "Failed to log in")
		return
	}

	h.startSession(w, r, u)
	respondWithJSON(w, http.StatusOK, u)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, u *user.User) {
	session, err := h.sessions.CreateSession(r.Context(), u.ID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", u.ID).Msg("Failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		if err := h.sessions.DestroySession(r.Context(), cookie.Value); err != nil {
			log.Warn().Err(err).Msg("Failed to destroy session on logout")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	respondWithJSON(w, http.StatusOK, u)
}
