package handlers

import (
	"net/http"
	"strings"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/mailfleet/mailfleet/api/middleware"
	"github.com/mailfleet/mailfleet/internal/logger"
	"github.com/mailfleet/mailfleet/internal/models"
	"github.com/mailfleet/mailfleet/internal/repository"
)

const minPasswordLength = 8

type AuthHandler struct {
	log          logger.Logger
	repositories *repository.Repositories
	jwtManager   *middleware.JWTManager
}

func NewAuthHandler(log logger.Logger, repos *repository.Repositories, jwtManager *middleware.JWTManager) *AuthHandler {
	return &AuthHandler{
		log:          log,
		repositories: repos,
		jwtManager:   jwtManager,
	}
}

type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName"`
}

func (h *AuthHandler) Register() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request registerRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
			return
		}
		request.Email = strings.ToLower(strings.TrimSpace(request.Email))
		if !mailvalidate.ValidateEmailSyntax(request.Email).IsValid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email is not a valid address"})
			return
		}
		if len(request.Password) < minPasswordLength {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
			return
		}

		ctx := c.Request.Context()
		existing, err := h.repositories.UserRepository.GetByEmail(ctx, request.Email)
		if err != nil {
			h.log.Errorf("failed to look up user %s: %v", request.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
			return
		}
		if existing != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "an account with this email already exists"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
		if err != nil {
			h.log.Errorf("failed to hash password: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
			return
		}

		user := &models.User{
			Email:        request.Email,
			PasswordHash: string(hash),
			DisplayName:  strings.TrimSpace(request.DisplayName),
		}
		if err := h.repositories.UserRepository.Create(ctx, user); err != nil {
			h.log.Errorf("failed to create user %s: %v", request.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
			return
		}

		c.JSON(http.StatusCreated, user)
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request loginRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
			return
		}

		ctx := c.Request.Context()
		user, err := h.repositories.UserRepository.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(request.Email)))
		if err != nil {
			h.log.Errorf("failed to look up user %s: %v", request.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
			return
		}
		// Same answer for unknown email and wrong password.
		if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}

		token, expiresAt, err := h.jwtManager.GenerateToken(user.ID, user.Email)
		if err != nil {
			h.log.Errorf("failed to issue token for user %s: %v", user.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":     token,
			"expiresAt": expiresAt,
			"user":      user,
		})
	}
}
