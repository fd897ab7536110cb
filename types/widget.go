package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// WidgetType selects the layout family of an embeddable widget.
type WidgetType string

const (
	WidgetTypeWall   WidgetType = "wall"
	WidgetTypeSingle WidgetType = "single"
)

// WidgetStatus is the publish state of a widget.
type WidgetStatus string

const (
	WidgetStatusActive   WidgetStatus = "active"
	WidgetStatusDisabled WidgetStatus = "disabled"
)

// Theme is a visual theme shared by spaces and widgets.
type Theme string

const (
	ThemeLight   Theme = "light"
	ThemeDark    Theme = "dark"
	ThemeMinimal Theme = "minimal"
)

// ValidTheme reports whether t is one of the known themes.
func ValidTheme(t Theme) bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeMinimal
}

// WallTemplate is a design template valid for wall widgets.
type WallTemplate string

const (
	WallGridCards WallTemplate = "grid-cards"
	WallMasonry   WallTemplate = "masonry"
	WallCarousel  WallTemplate = "carousel"
)

// SingleTemplate is a design template valid for single widgets.
type SingleTemplate string

const (
	SingleCardCompact  SingleTemplate = "card-compact"
	SingleHero         SingleTemplate = "hero"
	SingleQuoteOverlay SingleTemplate = "quote-overlay"
)

// SortOrder controls wall testimonial ordering.
type SortOrder string

const (
	SortNewest        SortOrder = "newest"
	SortHighestRating SortOrder = "highest_rating"
	SortRandom        SortOrder = "random"
)

// SelectMode controls how a single widget picks its testimonial.
type SelectMode string

const (
	SelectManual     SelectMode = "manual-select"
	SelectAutoLatest SelectMode = "auto-latest"
	SelectAutoRandom SelectMode = "auto-random"
)

// CTA is the optional call-to-action block rendered below a widget.
type CTA struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// AccessControl restricts which origins may embed a widget. An empty list
// means no restriction.
type AccessControl struct {
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// TestimonialFilter narrows the wall selection. MinRating and HasMedia are
// combined with AND; HasMedia itself matches mediaUrl OR thumbnailUrl.
type TestimonialFilter struct {
	MinRating *int `json:"minRating,omitempty"`
	HasMedia  bool `json:"hasMedia,omitempty"`
}

// SpacingAndGutter tunes wall grid spacing. Zero values fall back to the
// render defaults (16px gap, 8px radius).
type SpacingAndGutter struct {
	GapPx        int `json:"gapPx,omitempty"`
	CardRadiusPx int `json:"cardRadiusPx,omitempty"`
}

// WallSettings is the settings variant for wall widgets.
type WallSettings struct {
	DesignTemplate WallTemplate       `json:"designTemplate"`
	Theme          Theme              `json:"theme"`
	IsPublic       bool               `json:"isPublic"`
	ItemsToShow    int                `json:"itemsToShow,omitempty"`
	SortOrder      SortOrder          `json:"sortOrder,omitempty"`
	ShowAuthor     bool               `json:"showAuthor,omitempty"`
	ShowRating     bool               `json:"showRating,omitempty"`
	Filter         *TestimonialFilter `json:"filter,omitempty"`
	Spacing        *SpacingAndGutter  `json:"spacingAndGutter,omitempty"`
	CTA            *CTA               `json:"cta,omitempty"`
	AccessControl  *AccessControl     `json:"accessControl,omitempty"`
}

// Validate enforces the wall settings ruleset. Any violation rejects the
// write entirely.
func (s *WallSettings) Validate() error {
	switch s.DesignTemplate {
	case WallGridCards, WallMasonry, WallCarousel:
	default:
		return fmt.Errorf("invalid design template for wall widget: %q", s.DesignTemplate)
	}
	if !ValidTheme(s.Theme) {
		return fmt.Errorf("invalid theme for wall widget: %q", s.Theme)
	}
	if s.ItemsToShow != 0 && (s.ItemsToShow < 1 || s.ItemsToShow > 50) {
		return fmt.Errorf("items to show must be between 1 and 50")
	}
	switch s.SortOrder {
	case "", SortNewest, SortHighestRating, SortRandom:
	default:
		return fmt.Errorf("invalid sort order for wall widget: %q", s.SortOrder)
	}
	if s.Filter != nil && s.Filter.MinRating != nil {
		if r := *s.Filter.MinRating; r < 1 || r > 5 {
			return fmt.Errorf("minimum rating filter must be between 1 and 5")
		}
	}
	return nil
}

// SingleSettings is the settings variant for single widgets.
type SingleSettings struct {
	DesignTemplate      SingleTemplate `json:"designTemplate"`
	Theme               Theme          `json:"theme"`
	IsPublic            bool           `json:"isPublic"`
	SelectTestimonial   SelectMode     `json:"selectTestimonial"`
	ManualTestimonialID string         `json:"manualTestimonialId,omitempty"`
	ShowAuthorDetails   bool           `json:"showAuthorDetails,omitempty"`
	ShowRating          bool           `json:"showRating,omitempty"`
	ShowDate            bool           `json:"showDate,omitempty"`
	CTA                 *CTA           `json:"cta,omitempty"`
	AccessControl       *AccessControl `json:"accessControl,omitempty"`
}

// Validate enforces the single settings ruleset.
func (s *SingleSettings) Validate() error {
	switch s.DesignTemplate {
	case SingleCardCompact, SingleHero, SingleQuoteOverlay:
	default:
		return fmt.Errorf("invalid design template for single widget: %q", s.DesignTemplate)
	}
	if !ValidTheme(s.Theme) {
		return fmt.Errorf("invalid theme for single widget: %q", s.Theme)
	}
	switch s.SelectTestimonial {
	case SelectManual, SelectAutoLatest, SelectAutoRandom:
	default:
		return fmt.Errorf("invalid testimonial selection method for single widget: %q", s.SelectTestimonial)
	}
	if s.SelectTestimonial == SelectManual && s.ManualTestimonialID == "" {
		return fmt.Errorf("manual testimonial ID is required when using manual-select")
	}
	return nil
}

// Widget is a published, embeddable rendering configuration over a space's
// approved testimonials. Exactly one of Wall/Single is set, matching Type.
type Widget struct {
	ID        string          `json:"id"`
	SpaceID   string          `json:"spaceId"`
	Name      string          `json:"name"`
	Type      WidgetType      `json:"type"`
	Wall      *WallSettings   `json:"wallSettings,omitempty"`
	Single    *SingleSettings `json:"singleSettings,omitempty"`
	Status    WidgetStatus    `json:"status"`
	CreatedBy string          `json:"createdBy"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ValidateSettings checks the settings variant against the widget type and
// runs the variant's own ruleset. Called before every create and update.
func (w *Widget) ValidateSettings() error {
	switch w.Type {
	case WidgetTypeWall:
		if w.Wall == nil || w.Single != nil {
			return fmt.Errorf("wall widget requires wall settings")
		}
		return w.Wall.Validate()
	case WidgetTypeSingle:
		if w.Single == nil || w.Wall != nil {
			return fmt.Errorf("single widget requires single settings")
		}
		return w.Single.Validate()
	default:
		return fmt.Errorf("invalid widget type: %q", w.Type)
	}
}

// DesignTemplate returns the template name of the active settings variant.
func (w *Widget) DesignTemplate() string {
	switch {
	case w.Wall != nil:
		return string(w.Wall.DesignTemplate)
	case w.Single != nil:
		return string(w.Single.DesignTemplate)
	default:
		return ""
	}
}

// IsPublic reports whether the widget may be served on public embed routes.
func (w *Widget) IsPublic() bool {
	switch {
	case w.Wall != nil:
		return w.Wall.IsPublic
	case w.Single != nil:
		return w.Single.IsPublic
	default:
		return false
	}
}

// Theme returns the stored theme of the active settings variant.
func (w *Widget) Theme() Theme {
	switch {
	case w.Wall != nil:
		return w.Wall.Theme
	case w.Single != nil:
		return w.Single.Theme
	default:
		return ThemeLight
	}
}

// EffectiveTheme resolves the request theme override against the stored one.
func (w *Widget) EffectiveTheme(override Theme) Theme {
	if ValidTheme(override) {
		return override
	}
	return w.Theme()
}

// AllowedOrigins returns the embed origin allow-list, or nil when unset.
func (w *Widget) AllowedOrigins() []string {
	var ac *AccessControl
	switch {
	case w.Wall != nil:
		ac = w.Wall.AccessControl
	case w.Single != nil:
		ac = w.Single.AccessControl
	}
	if ac == nil {
		return nil
	}
	return ac.AllowedOrigins
}

// CallToAction returns the CTA block of the active variant, or nil.
func (w *Widget) CallToAction() *CTA {
	switch {
	case w.Wall != nil:
		return w.Wall.CTA
	case w.Single != nil:
		return w.Single.CTA
	}
	return nil
}

// SettingsJSON serializes the active settings variant for storage.
func (w *Widget) SettingsJSON() ([]byte, error) {
	switch {
	case w.Wall != nil:
		return json.Marshal(w.Wall)
	case w.Single != nil:
		return json.Marshal(w.Single)
	default:
		return nil, fmt.Errorf("widget has no settings variant")
	}
}

// DecodeSettings populates the settings variant matching the widget type from
// raw JSON (the wire and storage representation is a flat settings object).
func (w *Widget) DecodeSettings(raw []byte) error {
	switch w.Type {
	case WidgetTypeWall:
		s := &WallSettings{}
		if err := json.Unmarshal(raw, s); err != nil {
			return fmt.Errorf("decode wall settings: %w", err)
		}
		w.Wall, w.Single = s, nil
	case WidgetTypeSingle:
		s := &SingleSettings{}
		if err := json.Unmarshal(raw, s); err != nil {
			return fmt.Errorf("decode single settings: %w", err)
		}
		w.Single, w.Wall = s, nil
	default:
		return fmt.Errorf("invalid widget type: %q", w.Type)
	}
	return nil
}

// WidgetCreate is the request payload for creating a widget. Settings arrive
// as a flat JSON object and are decoded into the variant matching Type.
type WidgetCreate struct {
	Name           string          `json:"name" binding:"required"`
	Type           WidgetType      `json:"type" binding:"required"`
	DesignTemplate string          `json:"designTemplate"`
	Settings       json.RawMessage `json:"settings" binding:"required"`
}

// WidgetUpdate is a partial widget update.
type WidgetUpdate struct {
	Name     *string         `json:"name,omitempty"`
	Status   *WidgetStatus   `json:"status,omitempty"`
	Settings json.RawMessage `json:"settings,omitempty"`
}
