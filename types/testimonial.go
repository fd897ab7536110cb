package types

import (
	"time"
)

// TestimonialType distinguishes the media shape of a testimonial.
type TestimonialType string

const (
	TestimonialTypeVideo  TestimonialType = "video"
	TestimonialTypeText   TestimonialType = "text"
	TestimonialTypeLinked TestimonialType = "linked"
)

// TestimonialStatus is the moderation state of a testimonial. Only approved
// testimonials are visible on any public surface.
type TestimonialStatus string

const (
	StatusPending  TestimonialStatus = "pending"
	StatusApproved TestimonialStatus = "approved"
	StatusRejected TestimonialStatus = "rejected"
	StatusArchived TestimonialStatus = "archived"
	StatusSpam     TestimonialStatus = "spam"
	StatusDeleted  TestimonialStatus = "deleted"
)

// CollectionChannel records how a testimonial entered the system.
type CollectionChannel string

const (
	ChannelLink   CollectionChannel = "link"
	ChannelEmbed  CollectionChannel = "embed"
	ChannelImport CollectionChannel = "import"
	ChannelSocial CollectionChannel = "social"
)

// QuestionResponse is one structured answer to a space's question.
type QuestionResponse struct {
	QuestionIndex int    `json:"questionIndex"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	Rating        *int   `json:"rating,omitempty"`
}

// Testimonial is one piece of feedback attached to a space, or to a legacy
// request link via SourceLink.
type Testimonial struct {
	ID                string             `json:"id"`
	SpaceID           *string            `json:"spaceId,omitempty"`
	Type              TestimonialType    `json:"type"`
	AuthorName        string             `json:"authorName,omitempty"`
	AuthorEmail       string             `json:"authorEmail,omitempty"`
	Content           string             `json:"content,omitempty"`
	Rating            *int               `json:"rating,omitempty"`
	MediaURL          string             `json:"mediaUrl,omitempty"`
	ThumbnailURL      string             `json:"thumbnailUrl,omitempty"`
	Images            []string           `json:"images,omitempty"`
	QuestionResponses []QuestionResponse `json:"questionResponses,omitempty"`
	CollectedVia      CollectionChannel  `json:"collectedVia"`
	Status            TestimonialStatus  `json:"status"`
	SourceLink        string             `json:"sourceLink,omitempty"`
	SubmittedAt       time.Time          `json:"submittedAt"`
	ApprovedAt        *time.Time         `json:"approvedAt,omitempty"`
	CreatedBy         *string            `json:"createdBy,omitempty"`
	Metadata          map[string]any     `json:"metadata,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// HasMedia reports whether the testimonial carries a media or thumbnail URL.
func (t *Testimonial) HasMedia() bool {
	return t.MediaURL != "" || t.ThumbnailURL != ""
}

// Displayable reports whether the testimonial has anything to show: non-empty
// content or at least one question response.
func (t *Testimonial) Displayable() bool {
	return t.Content != "" || len(t.QuestionResponses) > 0
}

// ModerationAction is an owner/admin-triggered transition request.
type ModerationAction string

const (
	ActionApprove   ModerationAction = "approve"
	ActionReject    ModerationAction = "reject"
	ActionArchive   ModerationAction = "archive"
	ActionUnarchive ModerationAction = "unarchive"
	ActionSpam      ModerationAction = "spam"
	ActionDelete    ModerationAction = "delete"
)

// TargetStatus maps an action to the status it produces. The boolean is false
// for unknown actions.
func (a ModerationAction) TargetStatus() (TestimonialStatus, bool) {
	switch a {
	case ActionApprove:
		return StatusApproved, true
	case ActionReject:
		return StatusRejected, true
	case ActionArchive:
		return StatusArchived, true
	case ActionUnarchive:
		return StatusPending, true
	case ActionSpam:
		return StatusSpam, true
	case ActionDelete:
		return StatusDeleted, true
	default:
		return "", false
	}
}

// CanModerate reports whether the action is a legal single-step transition
// from the given status. Deleted is terminal: nothing but delete (a no-op
// rewrite) may touch it.
func CanModerate(from TestimonialStatus, action ModerationAction) bool {
	switch action {
	case ActionApprove, ActionReject:
		return from == StatusPending
	case ActionArchive, ActionSpam:
		return from != StatusDeleted
	case ActionUnarchive:
		return from == StatusArchived
	case ActionDelete:
		return true
	default:
		return false
	}
}

// AllowedFrom returns the statuses the action may legally start from. Nil
// means any status is legal. Mirrors CanModerate for set-based bulk checks.
func (a ModerationAction) AllowedFrom() []TestimonialStatus {
	switch a {
	case ActionApprove, ActionReject:
		return []TestimonialStatus{StatusPending}
	case ActionArchive, ActionSpam:
		return []TestimonialStatus{StatusPending, StatusApproved, StatusRejected, StatusArchived, StatusSpam}
	case ActionUnarchive:
		return []TestimonialStatus{StatusArchived}
	case ActionDelete:
		return nil
	default:
		return []TestimonialStatus{}
	}
}

// TestimonialListQuery holds the dashboard inbox filters.
type TestimonialListQuery struct {
	Filter string // all | video | text | linked | archived | spam
	Sort   string // column name, descending
	Page   int
	Limit  int
}

// BulkModerationRequest applies one action to many testimonials of a space.
type BulkModerationRequest struct {
	IDs    []string         `json:"ids" binding:"required"`
	Action ModerationAction `json:"action" binding:"required"`
}

// BulkModerationResult reports which ids were transitioned and which were
// skipped (unknown, outside the space, or in a status the action cannot
// leave).
type BulkModerationResult struct {
	Updated []string `json:"updated"`
	Skipped []string `json:"skipped"`
}

// TestimonialSubmit is the anonymous submission payload accepted on the
// public routes. It arrives as the "data" form field of a multipart request.
type TestimonialSubmit struct {
	Type              TestimonialType    `json:"type"`
	AuthorName        string             `json:"authorName"`
	AuthorEmail       string             `json:"authorEmail"`
	Content           string             `json:"content"`
	Rating            *int               `json:"rating"`
	MediaURL          string             `json:"mediaUrl"`
	ThumbnailURL      string             `json:"thumbnailUrl"`
	QuestionResponses []QuestionResponse `json:"questionResponses"`
}

// TestimonialCreate is the authenticated creation payload.
type TestimonialCreate struct {
	Type         TestimonialType   `json:"type" binding:"required"`
	AuthorName   string            `json:"authorName"`
	AuthorEmail  string            `json:"authorEmail"`
	Content      string            `json:"content"`
	Rating       *int              `json:"rating"`
	MediaURL     string            `json:"mediaUrl"`
	ThumbnailURL string            `json:"thumbnailUrl"`
	CollectedVia CollectionChannel `json:"collectedVia"`
}

// LegacyTestimonialCreate is the payload of the space-less dashboard create,
// optionally attributed to a request link by slug.
type LegacyTestimonialCreate struct {
	AuthorName  string   `json:"authorName" binding:"required"`
	AuthorEmail string   `json:"authorEmail"`
	Content     string   `json:"content" binding:"required"`
	Rating      *int     `json:"rating"`
	Images      []string `json:"images"`
	SourceLink  string   `json:"sourceLink"`
}

// LegacyListQuery filters the space-less testimonial listing.
type LegacyListQuery struct {
	Status *TestimonialStatus
	Rating *int
	Page   int
	Limit  int
}
