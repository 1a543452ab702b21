package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/eventd/internal/config"
	"github.com/example/eventd/internal/store"
)

type fakeUserRepo struct {
	byEmail map[string]*store.User
	byID    map[int64]*store.User
	nextID  int64

	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: map[string]*store.User{},
		byID:    map[int64]*store.User{},
		nextID:  1,
	}
}

func (f *fakeUserRepo) Create(_ context.Context, email, hashedPassword string, fullName *string) (*store.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, exists := f.byEmail[email]; exists {
		return nil, store.ErrDuplicateEmail
	}
	u := &store.User{
		ID:             f.nextID,
		Email:          email,
		HashedPassword: hashedPassword,
		FullName:       fullName,
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
	f.nextID++
	f.byEmail[email] = u
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*store.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*store.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func testService(users store.UserRepository) *Service {
	cfg := &config.Config{}
	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	cfg.JWT.TokenTTL = 30 * time.Minute
	return NewService(cfg, users)
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := testService(repo)

	user, err := svc.Register(context.Background(), "alice@example.com", "s3cretpass", nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.HashedPassword == "s3cretpass" {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("s3cretpass")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := testService(repo)

	if _, err := svc.Register(context.Background(), "alice@example.com", "s3cretpass", nil); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := svc.Register(context.Background(), "alice@example.com", "otherpass1", nil)
	if !errors.Is(err, store.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	repo := newFakeUserRepo()
	svc := testService(repo)

	if _, err := svc.Register(context.Background(), "alice@example.com", "s3cretpass", nil); err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, err := svc.Login(context.Background(), "alice@example.com", "s3cretpass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	user, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("resolved wrong user %q", user.Email)
	}
}

// Unknown emails and wrong passwords must be indistinguishable to callers.
func TestLoginBadCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	svc := testService(repo)

	if _, err := svc.Register(context.Background(), "alice@example.com", "s3cretpass", nil); err != nil {
		t.Fatalf("Register: %v", err)
	}

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "alice@example.com", "wrongpass1"},
		{"unknown email", "nobody@example.com", "s3cretpass"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.email, tc.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc := testService(newFakeUserRepo())

	for _, token := range []string{"", "not-a-jwt", "aaa.bbb.ccc"} {
		if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("token %q: expected ErrUnauthenticated, got %v", token, err)
		}
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := testService(repo)

	if _, err := svc.Register(context.Background(), "alice@example.com", "s3cretpass", nil); err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, err := newToken("alice@example.com", svc.secret, -time.Minute)
	if err != nil {
		t.Fatalf("newToken: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for expired token, got %v", err)
	}
}

func TestAuthenticateRejectsWrongSecret(t *testing.T) {
	repo := newFakeUserRepo()
	svc := testService(repo)

	if _, err := svc.Register(context.Background(), "alice@example.com", "s3cretpass", nil); err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, err := newToken("alice@example.com", []byte("another-secret-another-secret-32"), time.Minute)
	if err != nil {
		t.Fatalf("newToken: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for foreign signature, got %v", err)
	}
}

func TestAuthenticateInactiveUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := testService(repo)

	user, err := svc.Register(context.Background(), "alice@example.com", "s3cretpass", nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, err := svc.Login(context.Background(), "alice@example.com", "s3cretpass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	user.IsActive = false

	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, ErrInactiveAccount) {
		t.Fatalf("expected ErrInactiveAccount, got %v", err)
	}
}

func TestRequireAuth(t *testing.T) {
	repo := newFakeUserRepo()
	svc := testService(repo)

	if _, err := svc.Register(context.Background(), "alice@example.com", "s3cretpass", nil); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, err := svc.Login(context.Background(), "alice@example.com", "s3cretpass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	var seen *store.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := svc.RequireAuth(next)

	t.Run("valid token", func(t *testing.T) {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if seen == nil || seen.Email != "alice@example.com" {
			t.Fatalf("context user = %+v", seen)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
			t.Fatalf("WWW-Authenticate = %q", got)
		}
		if !strings.Contains(rec.Body.String(), "Not authenticated") {
			t.Fatalf("body = %q", rec.Body.String())
		}
	})

	t.Run("malformed token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Could not validate credentials") {
			t.Fatalf("body = %q", rec.Body.String())
		}
	})
}
