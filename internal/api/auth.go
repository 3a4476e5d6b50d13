package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"tagtrack/internal/auth"
	"tagtrack/internal/model"
	"tagtrack/internal/store"
)

// AuthHandler issues tokens for admin and lecturer accounts.
type AuthHandler struct {
	store      store.Store
	jwtIssuer  string
	signingKey string
	tokenTTL   time.Duration
}

func NewAuthHandler(st store.Store, issuer, key string, ttl time.Duration) *AuthHandler {
	return &AuthHandler{store: st, jwtIssuer: issuer, signingKey: key, tokenTTL: ttl}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=admin lecturer"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		failServer(c, err)
		return
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			fail(c, http.StatusBadRequest, "User already exists")
			return
		}
		failServer(c, err)
		return
	}

	token, _, err := auth.Issue(user.ID, user.Role, h.jwtIssuer, h.signingKey, h.tokenTTL)
	if err != nil {
		failServer(c, err)
		return
	}

	respond(c, http.StatusCreated, "User registered successfully", gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
		"token": token,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusBadRequest, "Invalid credentials")
		return
	}
	if err != nil {
		failServer(c, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		fail(c, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, _, err := auth.Issue(user.ID, user.Role, h.jwtIssuer, h.signingKey, h.tokenTTL)
	if err != nil {
		failServer(c, err)
		return
	}

	respond(c, http.StatusOK, "Login successful", gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
		"token": token,
	})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	claims, ok := auth.CurrentClaims(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Not authorized")
		return
	}
	user, err := h.store.GetUser(c.Request.Context(), claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		failServer(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile fetched successfully", user)
}
