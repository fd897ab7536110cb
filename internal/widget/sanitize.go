// Package widget implements the embed pipeline: selecting a widget's
// testimonials, sanitizing them, and rendering self-contained HTML documents
// and the bootstrap script.
package widget

import (
	"strings"
	"time"

	"github.com/trustimonials/trustimonials-backend/types"
)

// AnonymousAuthor is substituted for a missing author name before rendering.
const AnonymousAuthor = "Anonymous"

// htmlEscaper escapes the five HTML metacharacters plus the forward slash.
// The slash entity blocks naive </script> reconstruction from user content.
// Replacement is single-pass, so no entity is re-escaped.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// EscapeHTML escapes s for direct interpolation into an HTML document.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// QA is one sanitized question/answer pair.
type QA struct {
	Question string
	Answer   string
}

// View is the render-safe projection of a testimonial. Every string field is
// already escaped; renderers interpolate them verbatim.
type View struct {
	ID          string
	AuthorName  string
	Content     string
	Rating      int
	HasRating   bool
	SubmittedAt time.Time
	Responses   []QA
}

// Sanitize maps a testimonial to its render-safe view. Sanitization is not
// optional: the output is interpolated into HTML served to arbitrary
// third-party origins.
func Sanitize(t *types.Testimonial) View {
	author := t.AuthorName
	if author == "" {
		author = AnonymousAuthor
	}

	v := View{
		ID:          t.ID,
		AuthorName:  EscapeHTML(author),
		Content:     EscapeHTML(t.Content),
		SubmittedAt: t.SubmittedAt,
	}
	if t.Rating != nil {
		v.Rating = *t.Rating
		v.HasRating = true
	}
	for _, qr := range t.QuestionResponses {
		v.Responses = append(v.Responses, QA{
			Question: EscapeHTML(qr.Question),
			Answer:   EscapeHTML(qr.Answer),
		})
	}
	return v
}

// SanitizeAll maps a testimonial slice to views, preserving order.
func SanitizeAll(ts []types.Testimonial) []View {
	views := make([]View, 0, len(ts))
	for i := range ts {
		views = append(views, Sanitize(&ts[i]))
	}
	return views
}
