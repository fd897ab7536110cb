package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trustimonials/trustimonials-backend/errors"
	"github.com/trustimonials/trustimonials-backend/middleware"
	"github.com/trustimonials/trustimonials-backend/models"
	"github.com/trustimonials/trustimonials-backend/types"
)

// LinkHandler exposes the dashboard request link CRUD plus email delivery.
type LinkHandler struct {
	linkModel *models.RequestLinkModel
}

func NewLinkHandler(linkModel *models.RequestLinkModel) *LinkHandler {
	return &LinkHandler{linkModel: linkModel}
}

// linkResponse augments a link with its shareable URL.
type linkResponse struct {
	*types.RequestLink
	URL string `json:"url"`
}

// sendRequest carries the recipient of a testimonial request email.
type sendRequest struct {
	Recipient string `json:"recipient" binding:"required"`
}

func (h *LinkHandler) CreateLink(c *gin.Context) {
	var req types.RequestLinkCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	link, err := h.linkModel.CreateLink(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, linkResponse{RequestLink: link, URL: h.linkModel.PublicURL(link)})
}

func (h *LinkHandler) GetLink(c *gin.Context) {
	link, err := h.linkModel.GetOwnedLink(
		c.Request.Context(),
		c.Param("linkId"),
		middleware.GetUserID(c),
		middleware.GetUserRole(c),
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, linkResponse{RequestLink: link, URL: h.linkModel.PublicURL(link)})
}

func (h *LinkHandler) ListLinks(c *gin.Context) {
	links, err := h.linkModel.ListLinks(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	out := make([]linkResponse, 0, len(links))
	for i := range links {
		out = append(out, linkResponse{RequestLink: &links[i], URL: h.linkModel.PublicURL(&links[i])})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (h *LinkHandler) UpdateLink(c *gin.Context) {
	var req types.RequestLinkUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	link, err := h.linkModel.UpdateLink(
		c.Request.Context(),
		c.Param("linkId"),
		middleware.GetUserID(c),
		middleware.GetUserRole(c),
		&req,
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, linkResponse{RequestLink: link, URL: h.linkModel.PublicURL(link)})
}

func (h *LinkHandler) DeleteLink(c *gin.Context) {
	err := h.linkModel.DeleteLink(
		c.Request.Context(),
		c.Param("linkId"),
		middleware.GetUserID(c),
		middleware.GetUserRole(c),
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SendRequest emails a testimonial request for the link.
func (h *LinkHandler) SendRequest(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	err := h.linkModel.SendRequestEmail(
		c.Request.Context(),
		c.Param("linkId"),
		middleware.GetUserID(c),
		middleware.GetUserRole(c),
		req.Recipient,
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}
