package widget

import (
	"fmt"
	"strings"

	"github.com/trustimonials/trustimonials-backend/types"
)

// Grid spacing defaults when spacingAndGutter is absent or zero.
const (
	defaultGapPx        = 16
	defaultCardRadiusPx = 8

	maxQuestionResponses = 2
)

// palette holds the theme-dependent colors of an embed document.
type palette struct {
	pageBG     string
	cardBG     string
	text       string
	muted      string
	cardBorder string
	cardShadow string
}

func themePalette(theme types.Theme) palette {
	switch theme {
	case types.ThemeDark:
		return palette{
			pageBG:     "#1a1a1a",
			cardBG:     "#2a2a2a",
			text:       "#f5f5f5",
			muted:      "#a3a3a3",
			cardBorder: "none",
			cardShadow: "0 2px 8px rgba(0,0,0,0.4)",
		}
	case types.ThemeMinimal:
		return palette{
			pageBG:     "#ffffff",
			cardBG:     "#ffffff",
			text:       "#1a1a1a",
			muted:      "#6b6b6b",
			cardBorder: "1px solid #e2e2e2",
			cardShadow: "none",
		}
	default:
		return palette{
			pageBG:     "#f8f9fa",
			cardBG:     "#ffffff",
			text:       "#1a1a1a",
			muted:      "#6b6b6b",
			cardBorder: "none",
			cardShadow: "0 2px 8px rgba(0,0,0,0.08)",
		}
	}
}

// stars renders a five-slot glyph row with rating filled stars.
func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

// RenderWall produces the complete HTML document for a wall widget. views
// must already be sanitized.
func RenderWall(w *types.Widget, views []View, theme types.Theme) string {
	s := w.Wall
	p := themePalette(theme)

	gap := defaultGapPx
	radius := defaultCardRadiusPx
	if s.Spacing != nil {
		if s.Spacing.GapPx > 0 {
			gap = s.Spacing.GapPx
		}
		if s.Spacing.CardRadiusPx > 0 {
			radius = s.Spacing.CardRadiusPx
		}
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	b.WriteString("<style>\n")
	fmt.Fprintf(&b, "body{margin:0;padding:%dpx;background:%s;color:%s;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;}\n", gap, p.pageBG, p.text)
	fmt.Fprintf(&b, ".grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(300px,1fr));gap:%dpx;}\n", gap)
	fmt.Fprintf(&b, ".card{background:%s;border-radius:%dpx;border:%s;box-shadow:%s;padding:20px;}\n", p.cardBG, radius, p.cardBorder, p.cardShadow)
	b.WriteString(".stars{color:#fbbf24;font-size:16px;letter-spacing:2px;margin-bottom:8px;}\n")
	b.WriteString(".content{font-size:15px;line-height:1.6;white-space:pre-line;}\n")
	fmt.Fprintf(&b, ".qa{margin-top:12px;font-size:13px;color:%s;}\n", p.muted)
	b.WriteString(".qa .q{font-weight:600;}\n")
	fmt.Fprintf(&b, ".author{margin-top:12px;font-size:14px;font-weight:600;color:%s;}\n", p.text)
	fmt.Fprintf(&b, ".empty{text-align:center;padding:48px 16px;color:%s;font-size:15px;}\n", p.muted)
	fmt.Fprintf(&b, ".cta{text-align:center;margin-top:%dpx;}\n", gap)
	b.WriteString(".cta a,.cta span{display:inline-block;padding:10px 24px;border-radius:6px;background:#5D5DFF;color:#fff;text-decoration:none;font-size:14px;font-weight:600;}\n")
	b.WriteString("</style>\n</head>\n<body>\n")

	if len(views) == 0 {
		b.WriteString("<div class=\"empty\">No testimonials yet</div>\n")
	} else {
		b.WriteString("<div class=\"grid\">\n")
		for _, v := range views {
			b.WriteString("<div class=\"card\">\n")
			if s.ShowRating && v.HasRating {
				fmt.Fprintf(&b, "<div class=\"stars\">%s</div>\n", stars(v.Rating))
			}
			if v.Content != "" {
				fmt.Fprintf(&b, "<div class=\"content\">%s</div>\n", v.Content)
			}
			for i, qa := range v.Responses {
				if i >= maxQuestionResponses {
					break
				}
				fmt.Fprintf(&b, "<div class=\"qa\"><span class=\"q\">%s</span><br>%s</div>\n", qa.Question, qa.Answer)
			}
			if s.ShowAuthor {
				fmt.Fprintf(&b, "<div class=\"author\">%s</div>\n", v.AuthorName)
			}
			b.WriteString("</div>\n")
		}
		b.WriteString("</div>\n")
	}

	writeCTA(&b, s.CTA)
	writeResizeScript(&b, w.ID)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// RenderSingle produces the complete HTML document for a single widget. view
// must already be sanitized.
func RenderSingle(w *types.Widget, view *View, theme types.Theme) string {
	s := w.Single
	p := themePalette(theme)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	b.WriteString("<style>\n")
	fmt.Fprintf(&b, "body{margin:0;padding:24px;background:%s;color:%s;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;display:flex;justify-content:center;}\n", p.pageBG, p.text)
	fmt.Fprintf(&b, ".card{background:%s;border-radius:12px;border:%s;box-shadow:%s;padding:32px;max-width:560px;width:100%%;text-align:center;}\n", p.cardBG, p.cardBorder, p.cardShadow)
	if s.DesignTemplate == types.SingleHero {
		b.WriteString(".content{font-size:22px;line-height:1.5;font-weight:500;}\n")
	} else {
		b.WriteString(".content{font-size:17px;line-height:1.6;}\n")
	}
	if s.DesignTemplate == types.SingleQuoteOverlay {
		b.WriteString(".card{position:relative;}\n.card:before{content:'\\201C';position:absolute;top:-8px;left:16px;font-size:96px;opacity:0.12;}\n")
	}
	b.WriteString(".stars{color:#fbbf24;font-size:18px;letter-spacing:2px;margin-bottom:12px;}\n")
	fmt.Fprintf(&b, ".author{margin-top:16px;font-size:15px;font-weight:600;color:%s;}\n", p.text)
	fmt.Fprintf(&b, ".date{margin-top:4px;font-size:13px;color:%s;}\n", p.muted)
	fmt.Fprintf(&b, ".empty{text-align:center;padding:48px 16px;color:%s;font-size:15px;}\n", p.muted)
	b.WriteString(".cta{margin-top:20px;}\n")
	b.WriteString(".cta a,.cta span{display:inline-block;padding:10px 24px;border-radius:6px;background:#5D5DFF;color:#fff;text-decoration:none;font-size:14px;font-weight:600;}\n")
	b.WriteString("</style>\n</head>\n<body>\n")

	b.WriteString("<div class=\"card\">\n")
	if view == nil {
		b.WriteString("<div class=\"empty\">No testimonial available</div>\n")
	} else {
		if s.ShowRating && view.HasRating {
			fmt.Fprintf(&b, "<div class=\"stars\">%s</div>\n", stars(view.Rating))
		}
		fmt.Fprintf(&b, "<div class=\"content\">&ldquo;%s&rdquo;</div>\n", view.Content)
		if s.ShowAuthorDetails {
			fmt.Fprintf(&b, "<div class=\"author\">&mdash; %s</div>\n", view.AuthorName)
		}
		if s.ShowDate {
			fmt.Fprintf(&b, "<div class=\"date\">%s</div>\n", view.SubmittedAt.Format("January 2, 2006"))
		}
		writeCTA(&b, s.CTA)
	}
	b.WriteString("</div>\n")

	writeResizeScript(&b, w.ID)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// RenderMessage produces the minimally styled standalone document used for
// every embed failure path. The body is always a rendered page, never a bare
// status code, because the caller is a visible iframe.
func RenderMessage(title, message string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<style>\nbody{margin:0;padding:48px 16px;background:#f8f9fa;color:#1a1a1a;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;text-align:center;}\n")
	b.WriteString("h1{font-size:18px;margin:0 0 8px;}\np{font-size:14px;color:#6b6b6b;margin:0;}\n</style>\n</head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n<p>%s</p>\n", EscapeHTML(title), EscapeHTML(message))
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func writeCTA(b *strings.Builder, cta *types.CTA) {
	if cta == nil || cta.Text == "" {
		return
	}
	b.WriteString("<div class=\"cta\">")
	if cta.URL != "" {
		fmt.Fprintf(b, "<a href=\"%s\" target=\"_blank\" rel=\"noopener\">%s</a>", EscapeHTML(cta.URL), EscapeHTML(cta.Text))
	} else {
		fmt.Fprintf(b, "<span>%s</span>", EscapeHTML(cta.Text))
	}
	b.WriteString("</div>\n")
}

// writeResizeScript posts the document height to the parent page so the
// bootstrap script can size the iframe.
func writeResizeScript(b *strings.Builder, widgetID string) {
	fmt.Fprintf(b, `<script>
(function(){
  function post(){
    parent.postMessage({type:"trustimonials-resize",widgetId:%q,height:document.body.scrollHeight},"*");
  }
  window.addEventListener("load",post);
  window.addEventListener("resize",post);
})();
</script>
`, widgetID)
}
