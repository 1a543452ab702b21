package httpserver

import (
	"errors"
	"net/http"

	"github.com/example/eventd/internal/auth"
	httperrors "github.com/example/eventd/internal/http/errors"
	"github.com/example/eventd/internal/store"
)

type registerRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	FullName *string `json:"full_name" validate:"omitempty,max=100"`
}

type userResponse struct {
	ID       int64   `json:"id"`
	Email    string  `json:"email"`
	FullName *string `json:"full_name"`
	IsActive bool    `json:"is_active"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func newUserResponse(u *store.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, FullName: u.FullName, IsActive: u.IsActive}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		httperrors.Domain(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, newUserResponse(user))
}

// Token exchanges form credentials for a bearer token. The body is
// form-encoded with username/password fields, OAuth2 password-grant style.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httperrors.BadRequest(w, r, err, "invalid form body")
		return
	}
	email := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		httperrors.BadRequest(w, r, errors.New("missing credentials"), "username and password are required")
		return
	}

	token, err := h.auth.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			httperrors.JSON(w, http.StatusUnauthorized, "Incorrect email or password")
			return
		}
		httperrors.InternalError(w, r, err, "login failed")
		return
	}
	respondJSON(w, r, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	respondJSON(w, r, http.StatusOK, newUserResponse(user))
}
