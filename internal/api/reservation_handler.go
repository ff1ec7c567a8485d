package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/LightsoftTeam/baldoria-backend/internal/core"
	"github.com/LightsoftTeam/baldoria-backend/internal/models"
)

// ReservationHandler handles the reservation endpoints used by the door staff and
// the back office.
type ReservationHandler struct {
	reservationService core.ReservationService
	logger             *zap.Logger
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(rs core.ReservationService, logger *zap.Logger) *ReservationHandler {
	return &ReservationHandler{reservationService: rs, logger: logger}
}

// UseReservation handles POST /reservations/use.
func (h *ReservationHandler) UseReservation(c *gin.Context) {
	var req models.UseReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	usedAt, err := h.reservationService.UseReservation(c.Request.Context(), req.ID)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, UseReservationResponse{UsedAt: usedAt})
}

// ListReservations handles GET /reservations?date&enterprise.
func (h *ReservationHandler) ListReservations(c *gin.Context) {
	var q models.GetReservationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	enterprise, err := models.ParseEnterprise(q.Enterprise)
	if err != nil {
		badRequest(c, err)
		return
	}
	day, err := models.ParseDay(q.Date)
	if err != nil {
		badRequest(c, err)
		return
	}

	rows, err := h.reservationService.ListByEnterpriseAndDate(c.Request.Context(), enterprise, day)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Visits handles GET /reservations/visits?from&to.
func (h *ReservationHandler) Visits(c *gin.Context) {
	var q models.GetVisitsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	from, err := models.ParseDay(q.From)
	if err != nil {
		badRequest(c, err)
		return
	}
	to, err := models.ParseDay(q.To)
	if err != nil {
		badRequest(c, err)
		return
	}

	rows, err := h.reservationService.Visits(c.Request.Context(), from, to)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// QRInfo handles GET /reservations/:id/qr-info.
func (h *ReservationHandler) QRInfo(c *gin.Context) {
	info, err := h.reservationService.QRInfo(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
