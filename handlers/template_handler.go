package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trustimonials/trustimonials-backend/errors"
	"github.com/trustimonials/trustimonials-backend/middleware"
	"github.com/trustimonials/trustimonials-backend/models"
	"github.com/trustimonials/trustimonials-backend/types"
)

// TemplateHandler exposes the reusable form template CRUD.
type TemplateHandler struct {
	templateModel *models.TemplateModel
}

func NewTemplateHandler(templateModel *models.TemplateModel) *TemplateHandler {
	return &TemplateHandler{templateModel: templateModel}
}

func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req types.TemplateCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	tpl, err := h.templateModel.CreateTemplate(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	tpl, err := h.templateModel.GetTemplate(
		c.Request.Context(),
		c.Param("templateId"),
		middleware.GetUserID(c),
		middleware.GetUserRole(c),
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	templates, err := h.templateModel.ListTemplates(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": templates})
}

func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	var req types.TemplateUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	tpl, err := h.templateModel.UpdateTemplate(
		c.Request.Context(),
		c.Param("templateId"),
		middleware.GetUserID(c),
		middleware.GetUserRole(c),
		&req,
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	err := h.templateModel.DeleteTemplate(
		c.Request.Context(),
		c.Param("templateId"),
		middleware.GetUserID(c),
		middleware.GetUserRole(c),
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
