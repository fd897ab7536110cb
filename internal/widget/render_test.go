package widget

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustimonials/trustimonials-backend/types"
)

func wallWidget(settings types.WallSettings) *types.Widget {
	return &types.Widget{
		ID:      "w-1",
		SpaceID: "s-1",
		Type:    types.WidgetTypeWall,
		Wall:    &settings,
	}
}

func singleWidget(settings types.SingleSettings) *types.Widget {
	return &types.Widget{
		ID:      "w-2",
		SpaceID: "s-1",
		Type:    types.WidgetTypeSingle,
		Single:  &settings,
	}
}

func TestRenderSingle_ApprovedTestimonialScenario(t *testing.T) {
	rating := 4
	tm := types.Testimonial{
		ID:          "t-1",
		Content:     "Great tool",
		Rating:      &rating,
		Status:      types.StatusApproved,
		SubmittedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
	w := singleWidget(types.SingleSettings{
		DesignTemplate:    types.SingleCardCompact,
		Theme:             types.ThemeLight,
		IsPublic:          true,
		SelectTestimonial: types.SelectAutoLatest,
		ShowRating:        true,
	})

	v := Sanitize(&tm)
	html := RenderSingle(w, &v, types.ThemeLight)

	assert.Contains(t, html, "Great tool")
	assert.Equal(t, 4, strings.Count(html, "★"))
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "trustimonials-resize")
	// No author details or date requested.
	assert.NotContains(t, html, "&mdash;")
	assert.NotContains(t, html, "March 14, 2026")
}

func TestRenderSingle_ConditionalFields(t *testing.T) {
	rating := 5
	tm := types.Testimonial{
		ID:          "t-1",
		AuthorName:  "Ada",
		Content:     "Works",
		Rating:      &rating,
		SubmittedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
	w := singleWidget(types.SingleSettings{
		DesignTemplate:    types.SingleHero,
		Theme:             types.ThemeDark,
		SelectTestimonial: types.SelectAutoLatest,
		ShowAuthorDetails: true,
		ShowRating:        true,
		ShowDate:          true,
		CTA:               &types.CTA{Text: "Try it", URL: "https://example.com"},
	})

	v := Sanitize(&tm)
	html := RenderSingle(w, &v, w.EffectiveTheme(""))

	assert.Contains(t, html, "&mdash; Ada")
	assert.Contains(t, html, "March 14, 2026")
	assert.Contains(t, html, "Try it")
	assert.Contains(t, html, "#1a1a1a")
	// Content is always quoted.
	assert.Contains(t, html, "&ldquo;Works&rdquo;")
}

func TestRenderSingle_NoTestimonialState(t *testing.T) {
	w := singleWidget(types.SingleSettings{
		DesignTemplate:    types.SingleCardCompact,
		Theme:             types.ThemeLight,
		SelectTestimonial: types.SelectManual,
	})

	html := RenderSingle(w, nil, types.ThemeLight)
	assert.Contains(t, html, "No testimonial available")
	assert.Contains(t, html, "<!DOCTYPE html>")
}

func TestRenderWall(t *testing.T) {
	rating := 5
	base := time.Now()
	ts := []types.Testimonial{
		{ID: "t-1", AuthorName: "Ada", Content: "Love it", Rating: &rating, SubmittedAt: base,
			QuestionResponses: []types.QuestionResponse{
				{Question: "Q1", Answer: "A1"},
				{Question: "Q2", Answer: "A2"},
				{Question: "Q3", Answer: "A3"},
			}},
		{ID: "t-2", Content: "Solid", SubmittedAt: base},
	}
	w := wallWidget(types.WallSettings{
		DesignTemplate: types.WallGridCards,
		Theme:          types.ThemeMinimal,
		IsPublic:       true,
		ShowAuthor:     true,
		ShowRating:     true,
		Spacing:        &types.SpacingAndGutter{GapPx: 24, CardRadiusPx: 4},
		CTA:            &types.CTA{Text: "Leave yours"},
	})

	html := RenderWall(w, SanitizeAll(ts), types.ThemeMinimal)

	assert.Contains(t, html, "Love it")
	assert.Contains(t, html, "Solid")
	assert.Contains(t, html, "Ada")
	// Second testimonial has no author name; the sanitizer fills in the default.
	assert.Contains(t, html, AnonymousAuthor)
	assert.Contains(t, html, "minmax(300px,1fr)")
	assert.Contains(t, html, "gap:24px")
	assert.Contains(t, html, "border-radius:4px")
	// Minimal theme carries a border and no shadow.
	assert.Contains(t, html, "border:1px solid #e2e2e2")
	assert.Contains(t, html, "box-shadow:none")
	// Only the first two question responses render.
	assert.Contains(t, html, "A2")
	assert.NotContains(t, html, "A3")
	assert.Contains(t, html, "Leave yours")
}

func TestRenderWall_CTAOnlyWithText(t *testing.T) {
	w := wallWidget(types.WallSettings{
		DesignTemplate: types.WallGridCards,
		Theme:          types.ThemeLight,
		CTA:            &types.CTA{URL: "https://example.com"},
	})
	html := RenderWall(w, nil, types.ThemeLight)
	assert.NotContains(t, html, `class="cta"`)
	assert.Contains(t, html, "No testimonials yet")
}

func TestRenderWall_DefaultSpacing(t *testing.T) {
	w := wallWidget(types.WallSettings{
		DesignTemplate: types.WallGridCards,
		Theme:          types.ThemeLight,
	})
	html := RenderWall(w, nil, types.ThemeLight)
	assert.Contains(t, html, "gap:16px")
	assert.Contains(t, html, "border-radius:8px")
	assert.Contains(t, html, "#f8f9fa")
}

func TestRenderMessage(t *testing.T) {
	html := RenderMessage("Widget not found", "The widget you requested does not exist.")
	assert.Contains(t, html, "Widget not found")
	assert.Contains(t, html, "<!DOCTYPE html>")
	// Message content is escaped like everything else.
	escaped := RenderMessage("<b>", "x")
	assert.NotContains(t, escaped, "<b>")
	assert.Contains(t, escaped, "&lt;b&gt;")
}

func TestBootstrapScript(t *testing.T) {
	js := BootstrapScript(types.WidgetTypeWall, "w-1", "https://api.example.com")
	assert.Contains(t, js, `"trustimonials-wall-w-1"`)
	assert.Contains(t, js, "https://api.example.com/embed/wall/w-1")
	assert.Contains(t, js, "trustimonials-resize")
	// Missing container degrades to a console warning, never a throw.
	assert.Contains(t, js, "console.warn")
	assert.NotContains(t, js, "throw")

	require.Equal(t, "// Widget not found\n", BootstrapNoop())
}
