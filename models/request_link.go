package models

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/trustimonials/trustimonials-backend/errors"
	"github.com/trustimonials/trustimonials-backend/internal/store"
	"github.com/trustimonials/trustimonials-backend/logger"
	"github.com/trustimonials/trustimonials-backend/types"
)

// RequestEmailSender delivers a testimonial request email. Implemented by
// services.EmailService; nil disables the send endpoint.
type RequestEmailSender interface {
	SendTestimonialRequest(ctx context.Context, to, subject, body, linkURL string) error
}

// RequestLinkModel owns the slug-keyed request links and their public
// resolution semantics.
type RequestLinkModel struct {
	store         store.RequestLinkStore
	templateStore store.TemplateStore
	emailSender   RequestEmailSender
	frontendURL   string
}

func NewRequestLinkModel(s store.RequestLinkStore, ts store.TemplateStore, sender RequestEmailSender, frontendURL string) *RequestLinkModel {
	return &RequestLinkModel{
		store:         s,
		templateStore: ts,
		emailSender:   sender,
		frontendURL:   frontendURL,
	}
}

// CreateLink validates the slug and persists the link. A taken slug is a
// conflict, never silently renamed.
func (rm *RequestLinkModel) CreateLink(ctx context.Context, ownerID string, create *types.RequestLinkCreate) (*types.RequestLink, error) {
	log := logger.GetLogger()

	if !types.ValidSlug(create.Slug) {
		return nil, errors.ValidationFailed(
			"Invalid slug",
			"slug must be 3-50 characters of lowercase letters, digits, hyphens or underscores",
		)
	}
	if create.MaxUses != nil && *create.MaxUses < 1 {
		return nil, errors.ValidationFailed("Invalid request link", "max uses must be positive")
	}
	if create.ExpiryDate != nil && !create.ExpiryDate.After(time.Now()) {
		return nil, errors.ValidationFailed("Invalid request link", "expiry date must be in the future")
	}

	link := &types.RequestLink{
		OwnerID:    ownerID,
		Slug:       create.Slug,
		TemplateID: create.TemplateID,
		ExpiryDate: create.ExpiryDate,
		MaxUses:    create.MaxUses,
		IsActive:   true,
	}
	if _, err := rm.store.Create(ctx, link); err != nil {
		if stderrors.Is(err, store.ErrConflict) {
			return nil, errors.NewConflictError("Slug already taken", create.Slug)
		}
		log.Errorw("Failed to create request link", "slug", create.Slug, "error", err)
		return nil, errors.NewDatabaseError(err)
	}
	return link, nil
}

// GetOwnedLink loads a link and verifies ownership. Foreign links read as
// not found.
func (rm *RequestLinkModel) GetOwnedLink(ctx context.Context, id, userID string, role types.UserRole) (*types.RequestLink, error) {
	link, err := rm.store.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("Request link", id)
		}
		return nil, errors.NewDatabaseError(err)
	}
	if link.OwnerID != userID && role != types.RoleAdmin {
		return nil, errors.NotFound("Request link", id)
	}
	return link, nil
}

// ListLinks returns all request links the user owns.
func (rm *RequestLinkModel) ListLinks(ctx context.Context, ownerID string) ([]types.RequestLink, error) {
	links, err := rm.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, errors.NewDatabaseError(err)
	}
	return links, nil
}

// UpdateLink applies a partial update after an ownership check.
func (rm *RequestLinkModel) UpdateLink(ctx context.Context, id, userID string, role types.UserRole, update *types.RequestLinkUpdate) (*types.RequestLink, error) {
	if _, err := rm.GetOwnedLink(ctx, id, userID, role); err != nil {
		return nil, err
	}
	if update.MaxUses != nil && *update.MaxUses < 1 {
		return nil, errors.ValidationFailed("Invalid request link update", "max uses must be positive")
	}
	if update.ExpiryDate != nil && !update.ExpiryDate.After(time.Now()) {
		return nil, errors.ValidationFailed("Invalid request link update", "expiry date must be in the future")
	}

	link, err := rm.store.Update(ctx, id, update)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("Request link", id)
		}
		return nil, errors.NewDatabaseError(err)
	}
	return link, nil
}

// DeleteLink removes a request link. Testimonials referencing the slug keep
// their source marker.
func (rm *RequestLinkModel) DeleteLink(ctx context.Context, id, userID string, role types.UserRole) error {
	if _, err := rm.GetOwnedLink(ctx, id, userID, role); err != nil {
		return err
	}
	if err := rm.store.Delete(ctx, id); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return errors.NotFound("Request link", id)
		}
		return errors.NewDatabaseError(err)
	}
	return nil
}

// ResolveSlug resolves a public slug for submission. Unknown slugs are 404;
// known but unusable links are 410. The usability check and the later use
// increment are separate statements; the budget may overshoot by one under
// concurrent submissions, which is accepted.
func (rm *RequestLinkModel) ResolveSlug(ctx context.Context, slug string) (*types.RequestLink, error) {
	link, err := rm.store.GetBySlug(ctx, slug)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("Request link", slug)
		}
		return nil, errors.NewDatabaseError(err)
	}
	if !link.Usable(time.Now()) {
		return nil, errors.LinkExpired(slug)
	}
	return link, nil
}

// RecordUse bumps the link's use counter after an accepted submission.
func (rm *RequestLinkModel) RecordUse(ctx context.Context, id string) error {
	if err := rm.store.IncrementUses(ctx, id); err != nil {
		logger.GetLogger().Errorw("Failed to record request link use", "linkId", id, "error", err)
		return errors.NewDatabaseError(err)
	}
	return nil
}

// PublicURL returns the shareable submission URL for a link.
func (rm *RequestLinkModel) PublicURL(link *types.RequestLink) string {
	return fmt.Sprintf("%s/t/%s", rm.frontendURL, link.Slug)
}

// SendRequestEmail emails a testimonial request for the link. Subject and
// body come from the link's template when set, with defaults otherwise.
func (rm *RequestLinkModel) SendRequestEmail(ctx context.Context, id, userID string, role types.UserRole, recipient string) error {
	log := logger.GetLogger()

	if rm.emailSender == nil {
		return errors.InternalServerError("Email delivery is not configured")
	}
	if recipient == "" {
		return errors.ValidationFailed("Invalid request", "recipient email is required")
	}

	link, err := rm.GetOwnedLink(ctx, id, userID, role)
	if err != nil {
		return err
	}

	subject := "We'd love your feedback"
	body := "Hi! Could you take a minute to share a short testimonial with us?"
	if link.TemplateID != nil {
		tpl, err := rm.templateStore.GetByID(ctx, *link.TemplateID)
		if err == nil {
			if tpl.EmailSubject != "" {
				subject = tpl.EmailSubject
			}
			if tpl.EmailBody != "" {
				body = tpl.EmailBody
			}
		} else if !stderrors.Is(err, store.ErrNotFound) {
			return errors.NewDatabaseError(err)
		}
	}

	if err := rm.emailSender.SendTestimonialRequest(ctx, recipient, subject, body, rm.PublicURL(link)); err != nil {
		log.Errorw("Failed to send request email",
			"linkId", id,
			"recipient", logger.MaskEmail(recipient),
			"error", err,
		)
		return errors.Wrap(err, errors.ServerError, "Failed to send request email")
	}
	log.Infow("Request email sent", "linkId", id, "recipient", logger.MaskEmail(recipient))
	return nil
}
