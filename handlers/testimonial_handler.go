package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/trustimonials/trustimonials-backend/errors"
	"github.com/trustimonials/trustimonials-backend/logger"
	"github.com/trustimonials/trustimonials-backend/middleware"
	"github.com/trustimonials/trustimonials-backend/models"
	"github.com/trustimonials/trustimonials-backend/types"
)

// TestimonialHandler exposes the dashboard inbox: listing, imports, the
// moderation endpoints and the space-less legacy collection.
type TestimonialHandler struct {
	testimonialModel *models.TestimonialModel
	linkModel        *models.RequestLinkModel
}

func NewTestimonialHandler(testimonialModel *models.TestimonialModel, linkModel *models.RequestLinkModel) *TestimonialHandler {
	return &TestimonialHandler{testimonialModel: testimonialModel, linkModel: linkModel}
}

// moderationRequest carries a single moderation action.
type moderationRequest struct {
	Action types.ModerationAction `json:"action" binding:"required"`
}

// CreateTestimonial imports a testimonial into a space on behalf of its owner.
func (h *TestimonialHandler) CreateTestimonial(c *gin.Context) {
	var req types.TestimonialCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	t, err := h.testimonialModel.CreateTestimonial(
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
	c.JSON(http.StatusCreated, t)
}

// ListTestimonials returns one inbox page, filtered and sorted via query
// parameters.
func (h *TestimonialHandler) ListTestimonials(c *gin.Context) {
	q := types.TestimonialListQuery{
		Filter: c.DefaultQuery("filter", "all"),
		Sort:   c.Query("sort"),
		Page:   parseIntQuery(c, "page", 1),
		Limit:  parseIntQuery(c, "limit", 20),
	}

	page, err := h.testimonialModel.ListTestimonials(
		c.Request.Context(),
		c.Param("spaceId"),
		middleware.GetUserID(c),
		middleware.GetUserRole(c),
		q,
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreateLegacy records a space-less testimonial, the collection flow that
// predates spaces. A sourceLink slug, when given, must name a usable request
// link and counts as one use.
func (h *TestimonialHandler) CreateLegacy(c *gin.Context) {
	var req types.LegacyTestimonialCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	var linkID string
	if req.SourceLink != "" {
		link, err := h.linkModel.ResolveSlug(c.Request.Context(), req.SourceLink)
		if err != nil {
			_ = c.Error(errors.ValidationFailed("Invalid or expired testimonial link", req.SourceLink))
			return
		}
		linkID = link.ID
	}

	t, err := h.testimonialModel.CreateLegacy(
		c.Request.Context(),
		middleware.GetUserID(c),
		middleware.GetUserRole(c),
		&req,
	)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if linkID != "" {
		if err := h.linkModel.RecordUse(c.Request.Context(), linkID); err != nil {
			logger.GetLogger().Warnw("Failed to record link use", "slug", req.SourceLink, "error", err)
		}
	}
	c.JSON(http.StatusCreated, t)
}

// ListLegacy returns one page of space-less testimonials. Non-admins only
// see approved entries regardless of the status filter.
func (h *TestimonialHandler) ListLegacy(c *gin.Context) {
	q := types.LegacyListQuery{
		Page:  parseIntQuery(c, "page", 1),
		Limit: parseIntQuery(c, "limit", 20),
	}
	if raw := c.Query("status"); raw != "" {
		status := types.TestimonialStatus(raw)
		switch status {
		case types.StatusPending, types.StatusApproved, types.StatusRejected,
			types.StatusArchived, types.StatusSpam:
			q.Status = &status
		default:
			_ = c.Error(errors.ValidationFailed("Invalid filter", "unknown status "+raw))
			return
		}
	}
	if raw := c.Query("rating"); raw != "" {
		rating := parseIntQuery(c, "rating", 0)
		q.Rating = &rating
	}

	page, err := h.testimonialModel.ListLegacy(
		c.Request.Context(),
		middleware.GetUserRole(c),
		q,
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *TestimonialHandler) GetTestimonial(c *gin.Context) {
	t, err := h.testimonialModel.GetTestimonial(
		c.Request.Context(),
		c.Param("testimonialId"),
		middleware.GetUserID(c),
		middleware.GetUserRole(c),
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Moderate applies one action (approve, reject, archive, unarchive, spam,
// delete) to one testimonial.
func (h *TestimonialHandler) Moderate(c *gin.Context) {
	var req moderationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	t, err := h.testimonialModel.Moderate(
		c.Request.Context(),
		c.Param("testimonialId"),
		middleware.GetUserID(c),
		middleware.GetUserRole(c),
		req.Action,
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// BulkModerate applies one action to many testimonials of a space.
func (h *TestimonialHandler) BulkModerate(c *gin.Context) {
	var req types.BulkModerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	result, err := h.testimonialModel.BulkModerate(
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
	c.JSON(http.StatusOK, result)
}

// DeleteTestimonial moves the testimonial to the deleted status.
func (h *TestimonialHandler) DeleteTestimonial(c *gin.Context) {
	err := h.testimonialModel.DeleteTestimonial(
		c.Request.Context(),
		c.Param("testimonialId"),
		middleware.GetUserID(c),
		middleware.GetUserRole(c),
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
