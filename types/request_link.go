package types

import (
	"regexp"
	"time"
)

// slugPattern matches the allowed request link slugs: lowercase alnum,
// hyphens and underscores, 3-50 characters.
var slugPattern = regexp.MustCompile(`^[a-z0-9-_]{3,50}$`)

// ValidSlug reports whether s is an acceptable request link slug.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// RequestLink is the legacy slug-keyed public submission link, independent of
// spaces. The slug is globally unique.
type RequestLink struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"ownerId"`
	Slug       string     `json:"slug"`
	TemplateID *string    `json:"templateId,omitempty"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
	MaxUses    *int       `json:"maxUses,omitempty"`
	Uses       int        `json:"uses"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Usable reports whether the link still accepts submissions: active, not
// expired, and not past its max-uses budget. The check is advisory only; the
// use counter is incremented separately, so two near-simultaneous submissions
// can both pass and push Uses one past MaxUses. That race is accepted.
func (l *RequestLink) Usable(now time.Time) bool {
	if !l.IsActive {
		return false
	}
	if l.ExpiryDate != nil && l.ExpiryDate.Before(now) {
		return false
	}
	if l.MaxUses != nil && l.Uses >= *l.MaxUses {
		return false
	}
	return true
}

// RequestLinkCreate is the request payload for creating a request link.
type RequestLinkCreate struct {
	Slug       string     `json:"slug" binding:"required"`
	TemplateID *string    `json:"templateId"`
	ExpiryDate *time.Time `json:"expiryDate"`
	MaxUses    *int       `json:"maxUses"`
}

// RequestLinkUpdate is a partial request link update.
type RequestLinkUpdate struct {
	IsActive   *bool      `json:"isActive,omitempty"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
	MaxUses    *int       `json:"maxUses,omitempty"`
}
