package users

import (
	"errors"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/invoicedesk/svc/auth"
)

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r createUserRequest) validate() error {
	if r.Name == "" {
		return errors.New("Name is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return errors.New("Valid email is required")
	}
	if len(r.Password) < 8 {
		return errors.New("Password must be at least 8 characters")
	}
	switch auth.Role(r.Role) {
	case "", auth.RoleUser, auth.RoleAdmin:
		return nil
	}
	return errors.New("Role must be ADMIN or USER")
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	IsActive *bool   `json:"isActive"`
}

type updatePasswordRequest struct {
	Password string `json:"password"`
}

func userID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errors.New("Valid user id is required")
	}
	return id, nil
}

func (m *Module) create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	view, err := m.auth.CreateUser(r.Context(), auth.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     auth.Role(req.Role),
	})
	if err != nil {
		m.respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusCreated, map[string]any{"user": view})
}

func (m *Module) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := auth.UserFilter{
		Search: q.Get("search"),
		Role:   auth.Role(q.Get("role")),
	}
	if v := q.Get("isActive"); v != "" {
		active := v == "true"
		filter.IsActive = &active
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PerPage, _ = strconv.Atoi(q.Get("limit"))

	views, total, err := m.auth.Users(r.Context(), filter)
	if err != nil {
		m.respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"users": views,
		"total": total,
	})
}

func (m *Module) get(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	view, err := m.auth.Profile(r.Context(), id)
	if err != nil {
		m.respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{"user": view})
}

func (m *Module) update(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	if req.Email != nil {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			respondBadRequest(w, "Valid email is required")
			return
		}
	}

	view, err := m.auth.UpdateUser(r.Context(), id, auth.UserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		IsActive: req.IsActive,
	})
	if err != nil {
		m.respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{"user": view})
}

func (m *Module) delete(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	if err := m.auth.DeleteUser(r.Context(), id); err != nil {
		m.respondError(r.Context(), w, err)
		return
	}
	respondMessage(w, http.StatusOK, "User deleted successfully")
}

func (m *Module) toggleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	current, err := m.auth.Profile(r.Context(), id)
	if err != nil {
		m.respondError(r.Context(), w, err)
		return
	}
	view, err := m.auth.SetUserStatus(r.Context(), id, !current.IsActive)
	if err != nil {
		m.respondError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{"user": view})
}

func (m *Module) updatePassword(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	var req updatePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	if len(req.Password) < 8 {
		respondBadRequest(w, "Password must be at least 8 characters")
		return
	}

	if err := m.auth.ChangePassword(r.Context(), id, req.Password); err != nil {
		m.respondError(r.Context(), w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Password updated successfully")
}
