// Package store defines the persistence interfaces consumed by the model
// layer, plus the sentinel errors stores report.
package store

import (
	"context"

	"github.com/trustimonials/trustimonials-backend/types"
)

// SpaceStore handles space persistence.
type SpaceStore interface {
	Create(ctx context.Context, space *types.Space) (string, error)
	GetByID(ctx context.Context, id string) (*types.Space, error)
	ListByOwner(ctx context.Context, ownerID string) ([]types.Space, error)
	Update(ctx context.Context, id string, update *types.SpaceUpdate) (*types.Space, error)
	Delete(ctx context.Context, id string) error
}

// TestimonialStore handles testimonial persistence, including the bulk and
// selection queries behind moderation and widget rendering.
type TestimonialStore interface {
	Create(ctx context.Context, t *types.Testimonial) (string, error)
	GetByID(ctx context.Context, id string) (*types.Testimonial, error)
	// List returns one inbox page for a space plus the total row count for
	// the active filter.
	List(ctx context.Context, spaceID string, q types.TestimonialListQuery) ([]types.Testimonial, int, error)
	// ListApprovedBySpace returns every approved testimonial of a space in
	// submission order, newest first. Widget selection filters in memory.
	ListApprovedBySpace(ctx context.Context, spaceID string) ([]types.Testimonial, error)
	// ListLegacy returns one page of space-less testimonials (legacy rows
	// collected through request links or created directly) plus the total row
	// count for the active filter. Deleted rows are never returned.
	ListLegacy(ctx context.Context, q types.LegacyListQuery) ([]types.Testimonial, int, error)
	UpdateStatus(ctx context.Context, id string, status types.TestimonialStatus) error
	// UpdateStatusBulk applies the status to the given ids, restricted to the
	// space and to rows currently in one of the allowedFrom statuses (nil
	// means any). Ids outside the space or in a disallowed status are
	// skipped, not errors. Returns the statuses the updated rows had before
	// the write, keyed by id.
	UpdateStatusBulk(ctx context.Context, spaceID string, ids []string, status types.TestimonialStatus, allowedFrom []types.TestimonialStatus) (map[string]types.TestimonialStatus, error)
	// CountByType counts non-deleted testimonials per type for a space.
	CountByType(ctx context.Context, spaceID string) (map[types.TestimonialType]int, error)
}

// WidgetStore handles widget persistence. Widget settings are stored as a
// single JSONB document.
type WidgetStore interface {
	Create(ctx context.Context, w *types.Widget) (string, error)
	GetByID(ctx context.Context, id string) (*types.Widget, error)
	ListBySpace(ctx context.Context, spaceID string) ([]types.Widget, error)
	Update(ctx context.Context, w *types.Widget) error
	Delete(ctx context.Context, id string) error
}

// RequestLinkStore handles slug-keyed request link persistence.
type RequestLinkStore interface {
	Create(ctx context.Context, l *types.RequestLink) (string, error)
	GetByID(ctx context.Context, id string) (*types.RequestLink, error)
	GetBySlug(ctx context.Context, slug string) (*types.RequestLink, error)
	ListByOwner(ctx context.Context, ownerID string) ([]types.RequestLink, error)
	Update(ctx context.Context, id string, update *types.RequestLinkUpdate) (*types.RequestLink, error)
	// IncrementUses bumps the use counter. Runs after the usability check,
	// not atomically with it.
	IncrementUses(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// TemplateStore handles reusable form template persistence.
type TemplateStore interface {
	Create(ctx context.Context, t *types.Template) (string, error)
	GetByID(ctx context.Context, id string) (*types.Template, error)
	// ListVisible returns templates owned by the user plus public ones.
	ListVisible(ctx context.Context, userID string) ([]types.Template, error)
	Update(ctx context.Context, id string, update *types.TemplateUpdate) (*types.Template, error)
	Delete(ctx context.Context, id string) error
}
