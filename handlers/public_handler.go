package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trustimonials/trustimonials-backend/errors"
	"github.com/trustimonials/trustimonials-backend/internal/metrics"
	"github.com/trustimonials/trustimonials-backend/logger"
	"github.com/trustimonials/trustimonials-backend/models"
	"github.com/trustimonials/trustimonials-backend/types"
)

// PublicHandler serves the anonymous collection surface: space form configs,
// request link resolution and testimonial submissions.
type PublicHandler struct {
	spaceModel       *models.SpaceModel
	testimonialModel *models.TestimonialModel
	linkModel        *models.RequestLinkModel
	templateModel    *models.TemplateModel
	metrics          *metrics.Metrics
}

func NewPublicHandler(
	spaceModel *models.SpaceModel,
	testimonialModel *models.TestimonialModel,
	linkModel *models.RequestLinkModel,
	templateModel *models.TemplateModel,
	m *metrics.Metrics,
) *PublicHandler {
	return &PublicHandler{
		spaceModel:       spaceModel,
		testimonialModel: testimonialModel,
		linkModel:        linkModel,
		templateModel:    templateModel,
		metrics:          m,
	}
}

// GetSpaceConfig returns the public form configuration of an active space.
func (h *PublicHandler) GetSpaceConfig(c *gin.Context) {
	space, err := h.spaceModel.GetPublicSpace(c.Request.Context(), c.Param("spaceId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, space.PublicConfig())
}

// SubmitToSpace accepts an anonymous testimonial submission for a space.
func (h *PublicHandler) SubmitToSpace(c *gin.Context) {
	spaceID := c.Param("spaceId")

	submit, err := bindSubmission(c)
	if err != nil {
		h.metrics.RecordSubmission(string(types.ChannelEmbed), metrics.OutcomeRejected)
		_ = c.Error(err)
		return
	}

	t, err := h.testimonialModel.SubmitToSpace(c.Request.Context(), spaceID, submit, submissionMeta(c))
	if err != nil {
		h.metrics.RecordSubmission(string(types.ChannelEmbed), metrics.OutcomeRejected)
		_ = c.Error(err)
		return
	}

	h.metrics.RecordSubmission(string(types.ChannelEmbed), metrics.OutcomeAccepted)
	c.JSON(http.StatusCreated, t)
}

// ResolveLink resolves a request link slug for the public submission page.
// Unknown slugs are 404; known but unusable links are 410.
func (h *PublicHandler) ResolveLink(c *gin.Context) {
	slug := c.Param("slug")

	link, err := h.linkModel.ResolveSlug(c.Request.Context(), slug)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := gin.H{"slug": link.Slug}
	if link.TemplateID != nil {
		// Loaded on the owner's behalf; the submitter sees the form config of
		// whatever template the link references, public or not.
		if tpl, err := h.templateModel.GetTemplate(c.Request.Context(), *link.TemplateID, link.OwnerID, types.RoleUser); err == nil {
			resp["formConfig"] = tpl.FormConfig
		}
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitViaLink accepts an anonymous testimonial submission through a request
// link and records the use afterwards.
func (h *PublicHandler) SubmitViaLink(c *gin.Context) {
	log := logger.GetLogger()
	slug := c.Param("slug")

	link, err := h.linkModel.ResolveSlug(c.Request.Context(), slug)
	if err != nil {
		h.metrics.RecordSubmission(string(types.ChannelLink), metrics.OutcomeRejected)
		_ = c.Error(err)
		return
	}

	submit, err := bindSubmission(c)
	if err != nil {
		h.metrics.RecordSubmission(string(types.ChannelLink), metrics.OutcomeRejected)
		_ = c.Error(err)
		return
	}

	t, err := h.testimonialModel.SubmitViaLink(c.Request.Context(), slug, submit, submissionMeta(c))
	if err != nil {
		h.metrics.RecordSubmission(string(types.ChannelLink), metrics.OutcomeRejected)
		_ = c.Error(err)
		return
	}

	// Best effort; a failed counter bump never rolls back an accepted
	// submission.
	if err := h.linkModel.RecordUse(c.Request.Context(), link.ID); err != nil {
		log.Warnw("Submission accepted but use count not recorded", "slug", slug, "error", err)
	}

	h.metrics.RecordSubmission(string(types.ChannelLink), metrics.OutcomeAccepted)
	c.JSON(http.StatusCreated, t)
}

// bindSubmission decodes the submission payload. JSON bodies are bound
// directly; multipart form posts carry the payload as JSON in the "data"
// field, leaving the other parts for file uploads.
func bindSubmission(c *gin.Context) (*types.TestimonialSubmit, error) {
	var submit types.TestimonialSubmit

	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		data := c.PostForm("data")
		if data == "" {
			return nil, errors.ValidationFailed("Invalid submission", "multipart submissions require a data field")
		}
		if err := json.Unmarshal([]byte(data), &submit); err != nil {
			return nil, errors.ValidationFailed("Invalid submission", err.Error())
		}
		return &submit, nil
	}

	if err := c.ShouldBindJSON(&submit); err != nil {
		return nil, errors.ValidationFailed("Invalid submission", err.Error())
	}
	return &submit, nil
}

// submissionMeta captures request context server-side. Clients cannot set any
// of these fields.
func submissionMeta(c *gin.Context) map[string]any {
	meta := map[string]any{
		"ip":        c.ClientIP(),
		"userAgent": c.GetHeader("User-Agent"),
	}
	if ref := c.GetHeader("Referer"); ref != "" {
		meta["referer"] = ref
	}
	return meta
}
