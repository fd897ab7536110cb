package handlers

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trustimonials/trustimonials-backend/internal/metrics"
	"github.com/trustimonials/trustimonials-backend/internal/store"
	"github.com/trustimonials/trustimonials-backend/internal/widget"
	"github.com/trustimonials/trustimonials-backend/logger"
	"github.com/trustimonials/trustimonials-backend/models"
	"github.com/trustimonials/trustimonials-backend/types"
)

const htmlContentType = "text/html; charset=utf-8"

// EmbedHandler serves the anonymous embed surface: rendered widget documents
// and the bootstrap script. Every response on the HTML routes is a complete
// document, because the caller is a visible iframe; bare status codes would
// render as blank frames.
type EmbedHandler struct {
	widgetModel   *models.WidgetModel
	metrics       *metrics.Metrics
	publicBaseURL string
}

func NewEmbedHandler(widgetModel *models.WidgetModel, m *metrics.Metrics, publicBaseURL string) *EmbedHandler {
	return &EmbedHandler{
		widgetModel:   widgetModel,
		metrics:       m,
		publicBaseURL: publicBaseURL,
	}
}

// ServeWall renders a wall widget embed document.
func (h *EmbedHandler) ServeWall(c *gin.Context) {
	h.serveEmbed(c, types.WidgetTypeWall)
}

// ServeSingle renders a single widget embed document.
func (h *EmbedHandler) ServeSingle(c *gin.Context) {
	h.serveEmbed(c, types.WidgetTypeSingle)
}

func (h *EmbedHandler) serveEmbed(c *gin.Context, wantType types.WidgetType) {
	log := logger.GetLogger()
	ctx := c.Request.Context()
	id := c.Param("widgetId")

	// Embeds must be frameable everywhere; the global DENY does not apply.
	c.Header("X-Frame-Options", "ALLOWALL")

	w, err := h.widgetModel.GetEmbeddable(ctx, id)
	if err != nil {
		if !stderrors.Is(err, store.ErrNotFound) {
			log.Errorw("Failed to load widget for embed", "widgetId", id, "error", err)
			h.metrics.RecordEmbedRender(string(wantType), metrics.OutcomeError)
			c.Data(http.StatusInternalServerError, htmlContentType, []byte(errorDocument()))
			return
		}
		h.metrics.RecordEmbedRender(string(wantType), metrics.OutcomeNotFound)
		c.Data(http.StatusNotFound, htmlContentType, []byte(notFoundDocument()))
		return
	}
	// A widget served on the wrong route reads exactly like a missing one.
	if w.Type != wantType {
		h.metrics.RecordEmbedRender(string(wantType), metrics.OutcomeNotFound)
		c.Data(http.StatusNotFound, htmlContentType, []byte(notFoundDocument()))
		return
	}

	if !widget.OriginAllowed(w.AllowedOrigins(), c.GetHeader("Origin"), c.GetHeader("Referer")) {
		h.metrics.RecordEmbedRender(string(wantType), metrics.OutcomeAccessDenied)
		c.Data(http.StatusForbidden, htmlContentType, []byte(accessDeniedDocument()))
		return
	}

	selected, err := h.widgetModel.SelectForEmbed(ctx, w)
	if err != nil {
		log.Errorw("Failed to select testimonials for embed", "widgetId", id, "error", err)
		h.metrics.RecordEmbedRender(string(wantType), metrics.OutcomeError)
		c.Data(http.StatusInternalServerError, htmlContentType, []byte(errorDocument()))
		return
	}

	theme := w.EffectiveTheme(types.Theme(c.Query("theme")))

	status := http.StatusOK
	var doc string
	switch wantType {
	case types.WidgetTypeWall:
		doc = widget.RenderWall(w, widget.SanitizeAll(selected), theme)
	default:
		var view *widget.View
		if len(selected) > 0 {
			v := widget.Sanitize(&selected[0])
			view = &v
		}
		doc = widget.RenderSingle(w, view, theme)
		// A single widget with nothing to show is a 404, but still a full
		// document so the iframe explains itself.
		if view == nil {
			status = http.StatusNotFound
		}
	}

	h.metrics.RecordEmbedRender(string(wantType), metrics.OutcomeOK)
	c.Data(status, htmlContentType, []byte(doc))
}

// ServeBootstrap returns the widget's loader script. A missing, disabled or
// private widget gets a no-op comment with the same caching headers, so the
// script tag never errors and never leaks widget existence.
func (h *EmbedHandler) ServeBootstrap(c *gin.Context) {
	id := strings.TrimSuffix(c.Param("widgetId"), ".js")

	c.Header("Cache-Control", "public, max-age=3600")

	w, err := h.widgetModel.GetEmbeddable(c.Request.Context(), id)
	if err != nil {
		c.Data(http.StatusOK, "application/javascript; charset=utf-8", []byte(widget.BootstrapNoop()))
		return
	}
	script := widget.BootstrapScript(w.Type, w.ID, h.baseURL(c))
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", []byte(script))
}

// baseURL picks the base for embed iframe URLs. A configured public base
// wins; otherwise the loader points back at the host it was fetched from,
// honoring the proxy's forwarded scheme.
func (h *EmbedHandler) baseURL(c *gin.Context) string {
	if h.publicBaseURL != "" {
		return h.publicBaseURL
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

// The failure documents carry no widget-specific detail. Missing and private
// widgets must produce byte-identical responses.
func notFoundDocument() string {
	return widget.RenderMessage("Widget not found", "This widget does not exist or is not available.")
}

func accessDeniedDocument() string {
	return widget.RenderMessage("Access denied", "This widget cannot be embedded on this site.")
}

func errorDocument() string {
	return widget.RenderMessage("Something went wrong", "Please try again later.")
}
