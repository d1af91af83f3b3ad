package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"peoplework/internal/domain"
	"peoplework/internal/repository"
	"peoplework/internal/service"
)

// UserHandler mantiene dependencias para endpoints de usuarios.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
}

func NewUserHandler(logger *zap.Logger, userServ *service.UserService) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
	}
}

// List maneja GET /api/users (público, paginado, con filtros).
func (h *UserHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 10)

	result, err := h.userServ.List(c.Request.Context(), repository.UserFilter{
		Role:       domain.Role(c.Query("role")),
		Speciality: c.Query("speciality"),
		Keyword:    c.Query("keyword"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidRole) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid role filter"})
			return
		}
		h.logger.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not list users"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProfile maneja GET /api/users/profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondFailed(c, http.StatusUnauthorized, "Unauthorized", identMissingToken)
		return
	}

	user, err := h.userServ.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		h.logger.Error("get profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not fetch profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}

type profileUpdateRequest struct {
	Name       *string `json:"name"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	Speciality *string `json:"speciality"`
	Keywords   *string `json:"keywords"`
}

// UpdateProfile maneja PUT /api/users/profile. El rol nunca cambia por esta vía.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondFailed(c, http.StatusUnauthorized, "Unauthorized", identMissingToken)
		return
	}

	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid profile update request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	user, err := h.userServ.UpdateProfile(c.Request.Context(), claims.UserID, service.ProfileUpdate{
		Name:       req.Name,
		Phone:      req.Phone,
		Address:    req.Address,
		Speciality: req.Speciality,
		Keywords:   req.Keywords,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		h.logger.Error("update profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not update profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetByID maneja GET /api/users/:id (solo admin).
func (h *UserHandler) GetByID(c *gin.Context) {
	user, err := h.userServ.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		h.logger.Error("get user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not fetch user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

type adminUpdateRequest struct {
	profileUpdateRequest
	Role       *string `json:"role"`
	Status     *string `json:"status"`
	IsVerified *bool   `json:"isVerified"`
}

// Update maneja PUT /api/users/:id (solo admin). Única vía de cambio de rol.
func (h *UserHandler) Update(c *gin.Context) {
	var req adminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid admin update request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	update := service.AdminUpdate{
		ProfileUpdate: service.ProfileUpdate{
			Name:       req.Name,
			Phone:      req.Phone,
			Address:    req.Address,
			Speciality: req.Speciality,
			Keywords:   req.Keywords,
		},
		IsVerified: req.IsVerified,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		update.Role = &role
	}
	if req.Status != nil {
		status := domain.UserStatus(*req.Status)
		update.Status = &status
	}

	user, err := h.userServ.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		case errors.Is(err, service.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid role"})
		default:
			h.logger.Error("admin update failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "could not update user"})
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// Delete maneja DELETE /api/users/:id (solo admin, borrado lógico).
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userServ.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		h.logger.Error("delete user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	value := c.Query(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
