package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trustimonials/trustimonials-backend/errors"
	"github.com/trustimonials/trustimonials-backend/middleware"
	"github.com/trustimonials/trustimonials-backend/models"
	"github.com/trustimonials/trustimonials-backend/types"
)

// SpaceHandler exposes the dashboard space CRUD plus the derived credits view.
type SpaceHandler struct {
	spaceModel *models.SpaceModel
}

func NewSpaceHandler(spaceModel *models.SpaceModel) *SpaceHandler {
	return &SpaceHandler{spaceModel: spaceModel}
}

func (h *SpaceHandler) CreateSpace(c *gin.Context) {
	var req types.SpaceCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	space, err := h.spaceModel.CreateSpace(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, space)
}

func (h *SpaceHandler) GetSpace(c *gin.Context) {
	space, err := h.spaceModel.GetOwnedSpace(
		c.Request.Context(),
		c.Param("spaceId"),
		middleware.GetUserID(c),
		middleware.GetUserRole(c),
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, space)
}

func (h *SpaceHandler) ListSpaces(c *gin.Context) {
	spaces, err := h.spaceModel.ListSpaces(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": spaces})
}

func (h *SpaceHandler) UpdateSpace(c *gin.Context) {
	var req types.SpaceUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	space, err := h.spaceModel.UpdateSpace(
		c.Request.Context(),
		c.Param("spaceId"),
		middleware.GetUserID(c),
		middleware.GetUserRole(c),
		&req,
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, space)
}

func (h *SpaceHandler) DeleteSpace(c *gin.Context) {
	err := h.spaceModel.DeleteSpace(
		c.Request.Context(),
		c.Param("spaceId"),
		middleware.GetUserID(c),
		middleware.GetUserRole(c),
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SpaceHandler) GetCredits(c *gin.Context) {
	credits, err := h.spaceModel.GetCredits(
		c.Request.Context(),
		c.Param("spaceId"),
		middleware.GetUserID(c),
		middleware.GetUserRole(c),
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, credits)
}
