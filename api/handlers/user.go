package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/inventario-app/inventario-api/api"
	"github.com/inventario-app/inventario-api/config"
	"github.com/inventario-app/inventario-api/databases"
	"github.com/inventario-app/inventario-api/models"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User exported for testing purposes
type User struct {
	DB databases.UserDatabase
}

// UserCreateHandler registers a new user account. Accounts are always
// created as viewers; an admin has to be promoted out of band or seeded
// directly.
func (u User) UserCreateHandler(w http.ResponseWriter, r *http.Request) {
	var details models.UserDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	details.Email = strings.ToLower(strings.TrimSpace(details.Email))
	details.Name = strings.TrimSpace(details.Name)

	if !emailRegex.MatchString(details.Email) {
		config.ErrorCode("a valid email is required", models.CodeValidationFailed, http.StatusBadRequest, w)
		return
	}
	if len(details.Password) < 6 {
		config.ErrorCode("password must be at least 6 characters", models.CodeValidationFailed, http.StatusBadRequest, w)
		return
	}
	// This route is open, so any role in the body is ignored.
	details.Role = models.RoleViewer

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	existing, err := u.DB.Find(ctx, bson.M{"user.email": details.Email})
	if err != nil {
		config.ErrorStatus("failed to check email uniqueness", http.StatusInternalServerError, w, err)
		return
	}
	if len(existing) > 0 {
		config.ErrorCode("email is already registered", models.CodeValidationFailed, http.StatusConflict, w)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(details.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}
	details.Password = string(hash)

	now := primitive.NewDateTimeFromTime(time.Now())
	details.CreatedAt = now
	details.UpdatedAt = now

	user := models.User{
		ID:      primitive.NewObjectID(),
		Details: details,
	}
	if _, err := u.DB.InsertOne(ctx, user); err != nil {
		config.ErrorStatus("failed to create user", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"_id":   user.ID.Hex(),
		"email": details.Email,
		"role":  details.Role,
	})
}

// UserMeHandler returns the identity and role bound to the bearer token
func (u User) UserMeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := api.UserFromRequest(r)
	if !ok {
		config.ErrorCode("not authenticated", models.CodePermissionDenied, http.StatusUnauthorized, w)
		return
	}

	role := models.RoleViewer
	for _, g := range user.Groups() {
		if g == models.RoleAdmin {
			role = models.RoleAdmin
		}
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"_id":   user.ID(),
		"email": user.UserName(),
		"role":  role,
	})
}
