package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/eventd/internal/config"
	httperrors "github.com/example/eventd/internal/http/errors"
	"github.com/example/eventd/internal/store"
)

var (
	// ErrInvalidCredentials covers both unknown email and password mismatch;
	// callers must not be able to tell which emails are registered.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrUnauthenticated    = errors.New("could not validate credentials")
	ErrInactiveAccount    = errors.New("inactive user")
)

// Service implements registration, password login, and bearer-token
// resolution over the identity store.
type Service struct {
	users    store.UserRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewService(cfg *config.Config, users store.UserRepository) *Service {
	return &Service{
		users:    users,
		secret:   []byte(cfg.JWT.Secret),
		tokenTTL: cfg.JWT.TokenTTL,
	}
}

// Register creates a new identity with a one-way password hash. The
// plaintext password is never stored or logged.
func (s *Service) Register(ctx context.Context, email, password string, fullName *string) (*store.User, error) {
	const op = "auth.Register"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.Create(ctx, email, string(hash), fullName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// Login verifies credentials and issues a signed bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	const op = "auth.Login"

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := newToken(user.Email, s.secret, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// Authenticate resolves a bearer token to its active user record.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*store.User, error) {
	const op = "auth.Authenticate"

	email, err := parseSubject(tokenString, s.secret)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("%s: %w", op, ErrInactiveAccount)
	}
	return user, nil
}

// RequireAuth resolves the Authorization header to a user and stores it in
// the request context. It guards every route except registration, login,
// and the operational endpoints.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			unauthorized(w, "Not authenticated")
			return
		}

		user, err := s.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, ErrInactiveAccount):
				unauthorized(w, "Inactive user")
			case errors.Is(err, ErrUnauthenticated):
				unauthorized(w, "Could not validate credentials")
			default:
				httperrors.InternalError(w, r, err, "resolve bearer token")
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
