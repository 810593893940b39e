package handler

import (
	"errors"
	"log"
	"net/http"

	"milestofund/internal/middleware"
	"milestofund/internal/repository"
	"milestofund/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	svc      *service.AuthService
	userRepo *repository.UserRepository
}

func NewAuthHandler(svc *service.AuthService, userRepo *repository.UserRepository) *AuthHandler {
	return &AuthHandler{svc: svc, userRepo: userRepo}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	u, token, err := h.svc.Register(req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			respondError(c, http.StatusBadRequest, "Email already registered.")
			return
		}
		log.Printf("[auth] register failed: email=%s err=%v", req.Email, err)
		respondError(c, http.StatusInternalServerError, "Registration failed.")
		return
	}
	respondSuccess(c, http.StatusCreated, "Registration successful", gin.H{"token": token, "user": u})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	u, token, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCreds) {
			respondError(c, http.StatusBadRequest, "Invalid email or password.")
			return
		}
		respondError(c, http.StatusInternalServerError, "Login failed.")
		return
	}
	respondSuccess(c, http.StatusOK, "Login successful", gin.H{"token": token, "user": u})
}

func (h *AuthHandler) GetMe(c *gin.Context) {
	u, err := h.userRepo.GetByID(middleware.GetUserID(c))
	if err != nil {
		respondError(c, http.StatusUnauthorized, "User no longer exists.")
		return
	}
	respondSuccess(c, http.StatusOK, "Success", gin.H{"user": u})
}

type UpdateProfileRequest struct {
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	Website   string `json:"website"`
	AvatarURL string `json:"avatar_url"`
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.userRepo.GetByID(middleware.GetUserID(c))
	if err != nil {
		respondError(c, http.StatusNotFound, "User not found.")
		return
	}
	if req.Name != "" {
		u.Name = req.Name
	}
	u.Bio = req.Bio
	u.Website = req.Website
	if req.AvatarURL != "" {
		u.AvatarURL = req.AvatarURL
	}
	if err := h.userRepo.Update(u); err != nil {
		respondError(c, http.StatusInternalServerError, "Profile update failed.")
		return
	}
	respondSuccess(c, http.StatusOK, "Profile updated", gin.H{"user": u})
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	err := h.svc.ChangePassword(middleware.GetUserID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCreds) || errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusBadRequest, "Current password is incorrect.")
			return
		}
		respondError(c, http.StatusInternalServerError, "Password change failed.")
		return
	}
	respondSuccess(c, http.StatusOK, "Password changed successfully", gin.H{})
}
