package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trustimonials/trustimonials-backend/errors"
	"github.com/trustimonials/trustimonials-backend/middleware"
	"github.com/trustimonials/trustimonials-backend/models"
	"github.com/trustimonials/trustimonials-backend/types"
)

// WidgetHandler exposes the dashboard widget CRUD and the live preview.
type WidgetHandler struct {
	widgetModel *models.WidgetModel
}

func NewWidgetHandler(widgetModel *models.WidgetModel) *WidgetHandler {
	return &WidgetHandler{widgetModel: widgetModel}
}

func (h *WidgetHandler) CreateWidget(c *gin.Context) {
	var req types.WidgetCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	w, err := h.widgetModel.CreateWidget(
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
	c.JSON(http.StatusCreated, w)
}

func (h *WidgetHandler) GetWidget(c *gin.Context) {
	w, err := h.widgetModel.GetWidget(
		c.Request.Context(),
		c.Param("widgetId"),
		middleware.GetUserID(c),
		middleware.GetUserRole(c),
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *WidgetHandler) ListWidgets(c *gin.Context) {
	widgets, err := h.widgetModel.ListWidgets(
		c.Request.Context(),
		c.Param("spaceId"),
		middleware.GetUserID(c),
		middleware.GetUserRole(c),
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": widgets})
}

func (h *WidgetHandler) UpdateWidget(c *gin.Context) {
	var req types.WidgetUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	w, err := h.widgetModel.UpdateWidget(
		c.Request.Context(),
		c.Param("widgetId"),
		middleware.GetUserID(c),
		middleware.GetUserRole(c),
		&req,
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *WidgetHandler) DeleteWidget(c *gin.Context) {
	err := h.widgetModel.DeleteWidget(
		c.Request.Context(),
		c.Param("widgetId"),
		middleware.GetUserID(c),
		middleware.GetUserRole(c),
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Preview returns the testimonials the widget would currently show on its
// embed, unsanitized, for the dashboard editor.
func (h *WidgetHandler) Preview(c *gin.Context) {
	selected, err := h.widgetModel.Preview(
		c.Request.Context(),
		c.Param("widgetId"),
		middleware.GetUserID(c),
		middleware.GetUserRole(c),
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": selected})
}
