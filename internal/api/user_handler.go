package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/LightsoftTeam/baldoria-backend/internal/core"
	"github.com/LightsoftTeam/baldoria-backend/internal/models"
)

// UserHandler handles client registration and the client's reservations.
type UserHandler struct {
	userService core.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: us, logger: logger}
}

// CreateUser handles POST /users.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.userService.CreateClient(c.Request.Context(), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// ListUsers handles GET /users?page&limit&search&sortBy&sort.
func (h *UserHandler) ListUsers(c *gin.Context) {
	var q models.GetUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.userService.List(c.Request.Context(), models.NewListUsersParams(q))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetClientByDocument handles GET /users/by-document/:documentType/:documentNumber.
func (h *UserHandler) GetClientByDocument(c *gin.Context) {
	var uri models.GetClientURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.userService.GetClientByDocument(c.Request.Context(), models.DocumentType(uri.DocumentType), uri.DocumentNumber)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetReservations handles GET /users/:id/reservations.
func (h *UserHandler) GetReservations(c *gin.Context) {
	reservations, err := h.userService.GetReservations(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reservations)
}

// AddReservation handles POST /users/:id/reservations. It answers 201 when a
// reservation was created and 200 when one already existed for that day.
func (h *UserHandler) AddReservation(c *gin.Context) {
	var req models.AddReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reservation, isNew, err := h.userService.AddReservation(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	c.JSON(status, AddReservationResponse{Reservation: reservation, IsNew: isNew})
}
