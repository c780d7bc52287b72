package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lushhair/storefront/internal/user"
)

type UpdateUserRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=2"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty"`
	Street  *string `json:"street,omitempty"`
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
	Zip     *string `json:"zip,omitempty"`
	Country *string `json:"country,omitempty"`
	Role    *string `json:"role,omitempty"`
}

type BulkDeleteUsersRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid4"`
}

type UserListResponse struct {
	Users      []user.User `json:"users"`
	Pagination Pagination  `json:"pagination"`
}

type UserHandler struct {
	svc      user.Service
	validate *validator.Validate
}

func NewUserHandler(svc user.Service) *UserHandler {
	return &UserHandler{svc: svc, validate: validator.New()}
}

func (h *UserHandler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/users", h.handleListUsers)
	router.Get("/users/{id}", h.handleGetUser)
	router.Put("/users/{id}", h.handleUpdateUser)
	router.Delete("/users/{id}", h.handleDeleteUser)
	router.Post("/users/bulk-delete", h.handleBulkDeleteUsers)
}

func (h *UserHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	opts := user.ListOptions{
		Search: r.URL.Query().Get("search"),
		Sort:   r.URL.Query().Get("sort"),
		Order:  r.URL.Query().Get("order"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 20),
	}
	if raw := r.URL.Query().Get("role"); raw != "" {
		role, err := user.ParseRole(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid role")
			return
		}
		opts.Role = role
	}

	users, total, err := h.svc.ListUsers(r.Context(), opts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		respondWithMappedError(w, err, "Failed to list users")
		return
	}

	respondWithJSON(w, http.StatusOK, UserListResponse{
		Users:      users,
		Pagination: newPagination(total, opts.Page, opts.Limit),
	})
}

func (h *UserHandler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	u, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		respondWithMappedError(w, err, "Failed to get user")
		return
	}
	respondWithJSON(w, http.StatusOK, u)
}

func (h *UserHandler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var requestPayload UpdateUserRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	updated, err := h.svc.UpdateUser(r.Context(), id, user.UpdateInput{
		Name:    requestPayload.Name,
		Email:   requestPayload.Email,
		Phone:   requestPayload.Phone,
		Street:  requestPayload.Street,
		City:    requestPayload.City,
		State:   requestPayload.State,
		Zip:     requestPayload.Zip,
		Country: requestPayload.Country,
		Role:    requestPayload.Role,
	})
	if err != nil {
		log.Warn().Err(err).Stringer("user_id", id).Msg("Failed to update user")
		respondWithMappedError(w, err, "Failed to update user")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *UserHandler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		log.Warn().Err(err).Stringer("user_id", id).Msg("Failed to delete user")
		respondWithMappedError(w, err, "Failed to delete user")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleBulkDeleteUsers deletes each id independently; the response
// reports how many succeeded so the admin UI can show "N of M deleted".
func (h *UserHandler) handleBulkDeleteUsers(w http.ResponseWriter, r *http.Request) {
	var requestPayload BulkDeleteUsersRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	ids := make([]uuid.UUID, 0, len(requestPayload.IDs))
	for _, raw := range requestPayload.IDs {
		id, err := uuid.FromString(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid id in list")
			return
		}
		ids = append(ids, id)
	}

	result := h.svc.BulkDeleteUsers(r.Context(), ids)
	respondWithJSON(w, http.StatusOK, result)
}
