package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/cafe-discovery/internal/auth"
	"github.com/ukydev/cafe-discovery/internal/db"
	"github.com/ukydev/cafe-discovery/internal/middleware"
	"github.com/ukydev/cafe-discovery/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService    *auth.Service
	userCollection db.UserCollection
	isAdmin        func(email string) bool
}

// NewAuthHandler creates a new authentication handler. isAdmin decides which
// sign-ups get the admin role; nil means none do.
func NewAuthHandler(authService *auth.Service, userCollection db.UserCollection, isAdmin func(email string) bool) *AuthHandler {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &AuthHandler{
		authService:    authService,
		userCollection: userCollection,
		isAdmin:        isAdmin,
	}
}

// SignUp handles user registration
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	// Validate input
	if err := h.authService.ValidateEmail(req.Email); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.authService.ValidateName("first_name", req.FirstName); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.authService.ValidateName("last_name", req.LastName); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.authService.ValidatePassword(req.Password); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// Check if email already exists
	_, err := h.userCollection.FindUserByEmail(r.Context(), req.Email)
	if err == nil {
		writeError(w, r, http.StatusConflict, "Email already exists")
		return
	}
	if !errors.Is(err, db.ErrNotFound) {
		log.WithError(err).Error("Failed to look up user")
		writeError(w, r, http.StatusInternalServerError, "Failed to create user")
		return
	}

	passwordHash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	role := models.RoleMember
	if h.isAdmin(req.Email) {
		role = models.RoleAdmin
	}

	now := time.Now()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         role,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.userCollection.InsertUser(r.Context(), user); err != nil {
		log.WithError(err).Error("Failed to create user")
		writeError(w, r, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := h.authService.GenerateToken(&user)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	log.WithFields(log.Fields{"user_id": user.ID.Hex(), "role": user.Role}).Info("User signed up")
	writeJSON(w, r, http.StatusCreated, models.LoginResponse{Token: token, User: user})
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.userCollection.FindUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !user.IsActive {
		writeError(w, r, http.StatusUnauthorized, "Account is deactivated")
		return
	}

	if !h.authService.CheckPassword(req.Password, user.PasswordHash) {
		writeError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	// Log error but don't fail the login
	if err := h.userCollection.UpdateLastLogin(r.Context(), user.ID.Hex()); err != nil {
		log.WithError(err).Warn("Failed to update last login")
	}

	writeJSON(w, r, http.StatusOK, models.LoginResponse{Token: token, User: *user})
}

// Self returns the current user's profile
func (h *AuthHandler) Self(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "No user detected.")
		return
	}

	user, err := h.userCollection.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, r, http.StatusOK, user)
}
