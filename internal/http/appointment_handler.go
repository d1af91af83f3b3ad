package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"peoplework/internal/domain"
	"peoplework/internal/service"
)

// AppointmentHandler mantiene dependencias para endpoints de citas.
type AppointmentHandler struct {
	logger   *zap.Logger
	apptServ *service.AppointmentService
}

func NewAppointmentHandler(logger *zap.Logger, apptServ *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{
		logger:   logger,
		apptServ: apptServ,
	}
}

// Create maneja POST /api/appointments. El cliente es quien hace la petición.
func (h *AppointmentHandler) Create(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondFailed(c, http.StatusUnauthorized, "Unauthorized", identMissingToken)
		return
	}

	var req struct {
		Seller          string    `json:"seller" binding:"required"`
		ServiceType     string    `json:"serviceType" binding:"required"`
		AppointmentDate time.Time `json:"appointmentDate" binding:"required"`
		Notes           string    `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create appointment request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	appt, err := h.apptServ.Create(c.Request.Context(), service.CreateAppointmentInput{
		CustomerID:      claims.UserID,
		SellerID:        req.Seller,
		ServiceType:     req.ServiceType,
		AppointmentDate: req.AppointmentDate,
		Notes:           req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSellerNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Seller not found"})
		case errors.Is(err, service.ErrInvalidAppointment):
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid appointment data"})
		default:
			h.logger.Error("create appointment failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "could not create appointment"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": appt})
}

// List maneja GET /api/appointments.
func (h *AppointmentHandler) List(c *gin.Context) {
	appts, err := h.apptServ.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list appointments failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not list appointments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": appts})
}

// GetByID maneja GET /api/appointments/:id.
func (h *AppointmentHandler) GetByID(c *gin.Context) {
	appt, err := h.apptServ.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrAppointmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Appointment not found"})
			return
		}
		h.logger.Error("get appointment failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not fetch appointment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": appt})
}

// Update maneja PUT /api/appointments/:id. Solo estado y notas son editables.
func (h *AppointmentHandler) Update(c *gin.Context) {
	var req struct {
		Status *string `json:"status"`
		Notes  *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update appointment request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	var status *domain.AppointmentStatus
	if req.Status != nil {
		s := domain.AppointmentStatus(*req.Status)
		status = &s
	}

	appt, err := h.apptServ.Update(c.Request.Context(), c.Param("id"), status, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAppointmentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Appointment not found"})
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid appointment status"})
		default:
			h.logger.Error("update appointment failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "could not update appointment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": appt})
}

// Delete maneja DELETE /api/appointments/:id (borrado lógico).
func (h *AppointmentHandler) Delete(c *gin.Context) {
	if err := h.apptServ.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrAppointmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Appointment not found"})
			return
		}
		h.logger.Error("delete appointment failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not delete appointment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Appointment deleted successfully"})
}
