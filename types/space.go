package types

import (
	"time"
)

// CollectionType controls which kinds of feedback a space's public form collects.
type CollectionType string

const (
	CollectionTextOnly    CollectionType = "text-only"
	CollectionTextAndStar CollectionType = "text-and-star"
	CollectionTextVideo   CollectionType = "text-and-video"
)

// ExtraField is an optional submitter attribute a space may collect.
type ExtraField string

const (
	ExtraFieldName   ExtraField = "name"
	ExtraFieldEmail  ExtraField = "email"
	ExtraFieldTitle  ExtraField = "title"
	ExtraFieldSocial ExtraField = "social"
)

// Space is a tenant-owned testimonial collection surface: the branded form
// configuration plus the settings that scope everything else (testimonials,
// widgets) to one owner.
type Space struct {
	ID             string         `json:"id"`
	OwnerID        string         `json:"ownerId"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Logo           string         `json:"logo,omitempty"`
	HeaderTitle    string         `json:"headerTitle,omitempty"`
	HeaderMessage  string         `json:"headerMessage,omitempty"`
	QuestionList   []string       `json:"questionList"`
	CollectExtras  []ExtraField   `json:"collectExtras,omitempty"`
	CollectionType CollectionType `json:"collectionType"`
	Theme          Theme          `json:"theme"`
	ButtonColor    string         `json:"buttonColor"`
	Language       string         `json:"language"`
	AutoTranslate  bool           `json:"autoTranslate"`
	TemplateID     *string        `json:"templateId,omitempty"`
	ExpiryDate     *time.Time     `json:"expiryDate,omitempty"`
	MaxUses        *int           `json:"maxUses,omitempty"`
	IsActive       bool           `json:"isActive"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// SpaceCreate is the request payload for creating a space.
type SpaceCreate struct {
	Name           string         `json:"name" binding:"required"`
	Description    string         `json:"description"`
	Logo           string         `json:"logo"`
	HeaderTitle    string         `json:"headerTitle"`
	HeaderMessage  string         `json:"headerMessage"`
	QuestionList   []string       `json:"questionList" binding:"required"`
	CollectExtras  []ExtraField   `json:"collectExtras"`
	CollectionType CollectionType `json:"collectionType"`
	Theme          Theme          `json:"theme"`
	ButtonColor    string         `json:"buttonColor"`
	Language       string         `json:"language"`
	AutoTranslate  bool           `json:"autoTranslate"`
	TemplateID     *string        `json:"templateId"`
	ExpiryDate     *time.Time     `json:"expiryDate"`
	MaxUses        *int           `json:"maxUses"`
}

// SpaceUpdate is a partial update; nil fields are left untouched.
type SpaceUpdate struct {
	Name           *string         `json:"name,omitempty"`
	Description    *string         `json:"description,omitempty"`
	Logo           *string         `json:"logo,omitempty"`
	HeaderTitle    *string         `json:"headerTitle,omitempty"`
	HeaderMessage  *string         `json:"headerMessage,omitempty"`
	QuestionList   *[]string       `json:"questionList,omitempty"`
	CollectExtras  *[]ExtraField   `json:"collectExtras,omitempty"`
	CollectionType *CollectionType `json:"collectionType,omitempty"`
	Theme          *Theme          `json:"theme,omitempty"`
	ButtonColor    *string         `json:"buttonColor,omitempty"`
	Language       *string         `json:"language,omitempty"`
	AutoTranslate  *bool           `json:"autoTranslate,omitempty"`
	TemplateID     *string         `json:"templateId,omitempty"`
	ExpiryDate     *time.Time      `json:"expiryDate,omitempty"`
	MaxUses        *int            `json:"maxUses,omitempty"`
}

// PublicSpaceConfig is the subset of a space returned to anonymous visitors
// rendering the submission form.
type PublicSpaceConfig struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Logo           string         `json:"logo,omitempty"`
	HeaderTitle    string         `json:"headerTitle,omitempty"`
	HeaderMessage  string         `json:"headerMessage,omitempty"`
	QuestionList   []string       `json:"questionList"`
	CollectExtras  []ExtraField   `json:"collectExtras,omitempty"`
	CollectionType CollectionType `json:"collectionType"`
	Theme          Theme          `json:"theme"`
	ButtonColor    string         `json:"buttonColor"`
	Language       string         `json:"language"`
	AutoTranslate  bool           `json:"autoTranslate"`
}

// PublicConfig projects the space onto its anonymous-visitor view.
func (s *Space) PublicConfig() PublicSpaceConfig {
	return PublicSpaceConfig{
		ID:             s.ID,
		Name:           s.Name,
		Description:    s.Description,
		Logo:           s.Logo,
		HeaderTitle:    s.HeaderTitle,
		HeaderMessage:  s.HeaderMessage,
		QuestionList:   s.QuestionList,
		CollectExtras:  s.CollectExtras,
		CollectionType: s.CollectionType,
		Theme:          s.Theme,
		ButtonColor:    s.ButtonColor,
		Language:       s.Language,
		AutoTranslate:  s.AutoTranslate,
	}
}

// SpaceCredits is the derived remaining-collection allowance reported on the
// dashboard space detail view.
type SpaceCredits struct {
	VideoCredits int `json:"videoCredits"`
	TextCredits  int `json:"textCredits"`
}
