package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/basic"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/inventario-app/inventario-api/databases"
	"github.com/inventario-app/inventario-api/models"
)

// MiddlewareDB is a struct that holds the database
type MiddlewareDB struct {
	DB databases.UserDatabase
}

type contextKey string

const userContextKey contextKey = "authUser"

var authenticator auth.Authenticator
var cache store.Cache

// ErrPermissionDenied is returned when the acting user does not hold the
// role a mutation requires
var ErrPermissionDenied = errors.New("permission denied")

// Middleware authenticates the request and stashes the guardian user info in
// the request context so handlers can resolve the acting identity and role
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		user, err := authenticator.Authenticate(r)
		if err != nil {
			zap.S().Errorw("unauthorized",
				"url", r.URL)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		zap.S().Debugf("User %s Authenticated\n", user.UserName())
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithUser returns a copy of the request carrying the given identity, the
// same way Middleware does after a successful authentication
func WithUser(r *http.Request, user auth.Info) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userContextKey, user))
}

// UserFromRequest returns the authenticated identity placed by Middleware
func UserFromRequest(r *http.Request) (auth.Info, bool) {
	user, ok := r.Context().Value(userContextKey).(auth.Info)
	return user, ok
}

// RequireAdmin is the single authorization gate for every mutating
// operation. It returns the acting identity or ErrPermissionDenied.
func RequireAdmin(r *http.Request) (auth.Info, error) {
	user, ok := UserFromRequest(r)
	if !ok {
		return nil, ErrPermissionDenied
	}
	for _, g := range user.Groups() {
		if g == models.RoleAdmin {
			return user, nil
		}
	}
	return nil, ErrPermissionDenied
}

// CreateToken exchanges basic credentials for a bearer token. An
// authenticated principal without a role on its profile is refused outright:
// that is a consistency error, not a viewer.
func (m MiddlewareDB) CreateToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	email, _, ok := r.BasicAuth()
	if !ok {
		http.Error(w, "basic auth failed", http.StatusUnauthorized)
		return
	}

	dbResp, err := m.DB.Find(context.Background(), bson.M{"user.email": email})
	if err != nil || len(dbResp) == 0 {
		http.Error(w, "failed to get user by email", http.StatusUnauthorized)
		return
	}

	user := dbResp[0]
	if user.Details.Role == "" {
		zap.S().Errorw("profile without role, refusing session", "email", email)
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{
			Success: false,
			Error:   "profile record is missing a role",
			Code:    models.CodeProfileMissing,
		})
		return
	}

	token := uuid.New().String()
	authUser := auth.NewDefaultUser(email, user.ID.Hex(), []string{user.Details.Role}, nil)
	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Append(tokenStrategy, token, authUser, r)

	response := map[string]string{
		"token": token,
		"_id":   user.ID.Hex(),
		"role":  user.Details.Role,
	}

	responseBody, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}

	w.Write(responseBody)
}

// SetupGoGuardian sets up the go-guardian middleware
func (m MiddlewareDB) SetupGoGuardian() {
	authenticator = auth.New()
	cache = store.NewFIFO(context.Background(), time.Hour*24)
	basicStrategy := basic.New(m.ValidateUser, cache)
	tokenStrategy := bearer.New(bearer.NoOpAuthenticate, cache)

	authenticator.EnableStrategy(basic.StrategyKey, basicStrategy)
	authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
}

// ValidateUser validates a user's basic credentials against the users
// collection and resolves the profile role into the guardian groups
func (m MiddlewareDB) ValidateUser(ctx context.Context, r *http.Request, email, password string) (auth.Info, error) {
	dbResp, err := m.DB.Find(context.Background(), bson.M{"user.email": email})
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email")
	}
	if len(dbResp) == 0 {
		return nil, fmt.Errorf("no matching email found")
	}

	user := dbResp[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Details.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("failed to compare password")
	}
	if user.Details.Role == "" {
		return nil, fmt.Errorf("profile record is missing a role")
	}

	return auth.NewDefaultUser(email, user.ID.Hex(), []string{user.Details.Role}, nil), nil
}

// RevokeToken revokes a token
func RevokeToken(w http.ResponseWriter, r *http.Request) {
	reqToken := r.Header.Get("Authorization")
	splitToken := strings.Split(reqToken, "Bearer ")
	if len(splitToken) < 2 {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "missing bearer token"}`))
		return
	}
	reqToken = splitToken[1]

	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Revoke(tokenStrategy, reqToken, r)
	body := fmt.Sprintf(`{"revoked token": "%s"}`, reqToken)
	w.Write([]byte(body))
}
