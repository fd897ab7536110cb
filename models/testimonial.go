package models

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/trustimonials/trustimonials-backend/errors"
	"github.com/trustimonials/trustimonials-backend/internal/store"
	"github.com/trustimonials/trustimonials-backend/logger"
	"github.com/trustimonials/trustimonials-backend/types"
)

// TestimonialModel owns testimonial intake and the moderation state machine.
type TestimonialModel struct {
	store      store.TestimonialStore
	spaceModel *SpaceModel
}

func NewTestimonialModel(s store.TestimonialStore, spaceModel *SpaceModel) *TestimonialModel {
	return &TestimonialModel{store: s, spaceModel: spaceModel}
}

// CreateTestimonial imports a testimonial into a space on behalf of its
// owner. Imports still land in pending and go through moderation.
func (tm *TestimonialModel) CreateTestimonial(ctx context.Context, spaceID, userID string, role types.UserRole, create *types.TestimonialCreate) (*types.Testimonial, error) {
	log := logger.GetLogger()

	if _, err := tm.spaceModel.GetOwnedSpace(ctx, spaceID, userID, role); err != nil {
		return nil, err
	}

	t := &types.Testimonial{
		SpaceID:      &spaceID,
		Type:         create.Type,
		AuthorName:   create.AuthorName,
		AuthorEmail:  create.AuthorEmail,
		Content:      create.Content,
		Rating:       create.Rating,
		MediaURL:     create.MediaURL,
		ThumbnailURL: create.ThumbnailURL,
		CollectedVia: create.CollectedVia,
		Status:       types.StatusPending,
		SubmittedAt:  time.Now(),
		CreatedBy:    &userID,
	}
	if t.CollectedVia == "" {
		t.CollectedVia = types.ChannelImport
	}
	if err := validateTestimonial(t); err != nil {
		return nil, err
	}

	if _, err := tm.store.Create(ctx, t); err != nil {
		log.Errorw("Failed to create testimonial", "spaceId", spaceID, "error", err)
		return nil, errors.NewDatabaseError(err)
	}
	return t, nil
}

// SubmitToSpace records an anonymous submission against an active space. The
// result always starts pending. meta carries server-captured request context
// (client IP, user agent) and is never client-controlled.
func (tm *TestimonialModel) SubmitToSpace(ctx context.Context, spaceID string, submit *types.TestimonialSubmit, meta map[string]any) (*types.Testimonial, error) {
	log := logger.GetLogger()

	space, err := tm.spaceModel.GetPublicSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}

	t := buildSubmission(submit)
	t.SpaceID = &spaceID
	t.CollectedVia = types.ChannelEmbed
	t.Metadata = meta

	if err := validateSubmissionForSpace(space, t); err != nil {
		return nil, err
	}

	if _, err := tm.store.Create(ctx, t); err != nil {
		log.Errorw("Failed to store submission", "spaceId", spaceID, "error", err)
		return nil, errors.NewDatabaseError(err)
	}
	log.Infow("Testimonial submitted",
		"spaceId", spaceID,
		"type", t.Type,
		"authorEmail", logger.MaskEmail(t.AuthorEmail),
	)
	return t, nil
}

// SubmitViaLink records an anonymous submission arriving through a slug-keyed
// request link. The testimonial carries the slug, not a space.
func (tm *TestimonialModel) SubmitViaLink(ctx context.Context, slug string, submit *types.TestimonialSubmit, meta map[string]any) (*types.Testimonial, error) {
	log := logger.GetLogger()

	t := buildSubmission(submit)
	t.SourceLink = slug
	t.CollectedVia = types.ChannelLink
	t.Metadata = meta

	if err := validateTestimonial(t); err != nil {
		return nil, err
	}

	if _, err := tm.store.Create(ctx, t); err != nil {
		log.Errorw("Failed to store link submission", "slug", slug, "error", err)
		return nil, errors.NewDatabaseError(err)
	}
	log.Infow("Testimonial submitted via link",
		"slug", slug,
		"authorEmail", logger.MaskEmail(t.AuthorEmail),
	)
	return t, nil
}

// CreateLegacy records a space-less testimonial from the dashboard, the old
// collection flow that predates spaces. Admin submissions are approved
// immediately, everyone else's stay pending. Link attribution is the
// caller's job: sourceLink arrives already validated.
func (tm *TestimonialModel) CreateLegacy(ctx context.Context, userID string, role types.UserRole, create *types.LegacyTestimonialCreate) (*types.Testimonial, error) {
	log := logger.GetLogger()

	t := &types.Testimonial{
		Type:        types.TestimonialTypeText,
		AuthorName:  create.AuthorName,
		AuthorEmail: create.AuthorEmail,
		Content:     create.Content,
		Rating:      create.Rating,
		Images:      create.Images,
		SourceLink:  create.SourceLink,
		Status:      types.StatusPending,
		SubmittedAt: time.Now(),
		CreatedBy:   &userID,
	}
	if create.SourceLink != "" {
		t.CollectedVia = types.ChannelLink
	} else {
		t.CollectedVia = types.ChannelImport
	}
	if role == types.RoleAdmin {
		now := time.Now()
		t.Status = types.StatusApproved
		t.ApprovedAt = &now
	}
	if err := validateTestimonial(t); err != nil {
		return nil, err
	}

	if _, err := tm.store.Create(ctx, t); err != nil {
		log.Errorw("Failed to create legacy testimonial", "userId", userID, "error", err)
		return nil, errors.NewDatabaseError(err)
	}
	return t, nil
}

// ListLegacy returns one page of space-less testimonials. Non-admin callers
// only ever see approved entries; admins may filter by any status.
func (tm *TestimonialModel) ListLegacy(ctx context.Context, role types.UserRole, q types.LegacyListQuery) (*types.PaginatedResponse, error) {
	if role != types.RoleAdmin {
		approved := types.StatusApproved
		q.Status = &approved
	}
	if q.Rating != nil && (*q.Rating < 1 || *q.Rating > 5) {
		return nil, errors.ValidationFailed("Invalid filter", "rating must be between 1 and 5")
	}

	testimonials, total, err := tm.store.ListLegacy(ctx, q)
	if err != nil {
		return nil, errors.NewDatabaseError(err)
	}

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	return &types.PaginatedResponse{
		Data: testimonials,
		Pagination: types.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: (total + limit - 1) / limit,
		},
	}, nil
}

// GetTestimonial loads one testimonial after verifying the caller may see it.
func (tm *TestimonialModel) GetTestimonial(ctx context.Context, id, userID string, role types.UserRole) (*types.Testimonial, error) {
	t, err := tm.store.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.TestimonialNotFound(id)
		}
		return nil, errors.NewDatabaseError(err)
	}
	if err := tm.authorize(ctx, t, userID, role); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTestimonials returns one inbox page for a space the caller owns.
func (tm *TestimonialModel) ListTestimonials(ctx context.Context, spaceID, userID string, role types.UserRole, q types.TestimonialListQuery) (*types.PaginatedResponse, error) {
	if !validListFilter(q.Filter) {
		return nil, errors.ValidationFailed("Invalid filter", "filter must be one of all, video, text, linked, archived, spam")
	}
	if _, err := tm.spaceModel.GetOwnedSpace(ctx, spaceID, userID, role); err != nil {
		return nil, err
	}

	testimonials, total, err := tm.store.List(ctx, spaceID, q)
	if err != nil {
		return nil, errors.NewDatabaseError(err)
	}

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	pages := (total + limit - 1) / limit

	return &types.PaginatedResponse{
		Data: testimonials,
		Pagination: types.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// Moderate applies one moderation action to one testimonial, enforcing the
// transition matrix.
func (tm *TestimonialModel) Moderate(ctx context.Context, id, userID string, role types.UserRole, action types.ModerationAction) (*types.Testimonial, error) {
	log := logger.GetLogger()

	target, ok := action.TargetStatus()
	if !ok {
		return nil, errors.ValidationFailed("Unknown moderation action", string(action))
	}

	t, err := tm.GetTestimonial(ctx, id, userID, role)
	if err != nil {
		return nil, err
	}

	if !types.CanModerate(t.Status, action) {
		return nil, errors.InvalidModerationTransition(string(t.Status), string(action))
	}

	if err := tm.store.UpdateStatus(ctx, id, target); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.TestimonialNotFound(id)
		}
		log.Errorw("Failed to moderate testimonial", "testimonialId", id, "action", action, "error", err)
		return nil, errors.NewDatabaseError(err)
	}

	t.Status = target
	if target == types.StatusApproved {
		now := time.Now()
		t.ApprovedAt = &now
	} else {
		t.ApprovedAt = nil
	}
	log.Infow("Testimonial moderated", "testimonialId", id, "action", action, "userId", userID)
	return t, nil
}

// BulkModerate applies one action to many testimonials of a space. Ids that
// are unknown, belong to another space, or sit in a status the action cannot
// leave are reported as skipped, never as errors.
func (tm *TestimonialModel) BulkModerate(ctx context.Context, spaceID, userID string, role types.UserRole, req *types.BulkModerationRequest) (*types.BulkModerationResult, error) {
	log := logger.GetLogger()

	target, ok := req.Action.TargetStatus()
	if !ok {
		return nil, errors.ValidationFailed("Unknown moderation action", string(req.Action))
	}
	if len(req.IDs) == 0 {
		return nil, errors.ValidationFailed("Invalid bulk moderation request", "ids must not be empty")
	}
	if len(req.IDs) > 100 {
		return nil, errors.ValidationFailed("Invalid bulk moderation request", "at most 100 ids per request")
	}

	if _, err := tm.spaceModel.GetOwnedSpace(ctx, spaceID, userID, role); err != nil {
		return nil, err
	}

	previous, err := tm.store.UpdateStatusBulk(ctx, spaceID, req.IDs, target, req.Action.AllowedFrom())
	if err != nil {
		log.Errorw("Failed bulk moderation", "spaceId", spaceID, "action", req.Action, "error", err)
		return nil, errors.NewDatabaseError(err)
	}

	result := &types.BulkModerationResult{Updated: []string{}, Skipped: []string{}}
	for _, id := range req.IDs {
		if _, ok := previous[id]; ok {
			result.Updated = append(result.Updated, id)
		} else {
			result.Skipped = append(result.Skipped, id)
		}
	}
	log.Infow("Bulk moderation applied",
		"spaceId", spaceID,
		"action", req.Action,
		"updated", len(result.Updated),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

// DeleteTestimonial soft-deletes by moving the testimonial to the deleted
// status. Rows are never removed.
func (tm *TestimonialModel) DeleteTestimonial(ctx context.Context, id, userID string, role types.UserRole) error {
	_, err := tm.Moderate(ctx, id, userID, role, types.ActionDelete)
	return err
}

// authorize checks that the caller owns the testimonial's space, or created
// the testimonial directly for space-less legacy rows. Admins pass.
func (tm *TestimonialModel) authorize(ctx context.Context, t *types.Testimonial, userID string, role types.UserRole) error {
	if role == types.RoleAdmin {
		return nil
	}
	if t.SpaceID != nil {
		_, err := tm.spaceModel.GetOwnedSpace(ctx, *t.SpaceID, userID, role)
		if err != nil {
			return errors.TestimonialNotFound(t.ID)
		}
		return nil
	}
	if t.CreatedBy != nil && *t.CreatedBy == userID {
		return nil
	}
	return errors.TestimonialNotFound(t.ID)
}

func validListFilter(filter string) bool {
	switch filter {
	case "", "all", "video", "text", "linked", "archived", "spam":
		return true
	default:
		return false
	}
}

func buildSubmission(submit *types.TestimonialSubmit) *types.Testimonial {
	t := &types.Testimonial{
		Type:              submit.Type,
		AuthorName:        submit.AuthorName,
		AuthorEmail:       submit.AuthorEmail,
		Content:           submit.Content,
		Rating:            submit.Rating,
		MediaURL:          submit.MediaURL,
		ThumbnailURL:      submit.ThumbnailURL,
		QuestionResponses: submit.QuestionResponses,
		Status:            types.StatusPending,
		SubmittedAt:       time.Now(),
	}
	if t.Type == "" {
		t.Type = types.TestimonialTypeText
	}
	// Pure Q/A submissions get their content synthesized from the answers so
	// single widgets and exports always have a body to show.
	if t.Content == "" && len(t.QuestionResponses) > 0 {
		var answers []string
		for _, qr := range t.QuestionResponses {
			if qr.Answer != "" {
				answers = append(answers, qr.Answer)
			}
		}
		t.Content = strings.Join(answers, "\n\n")
	}
	return t
}

func validateTestimonial(t *types.Testimonial) error {
	var validationErrors []string

	switch t.Type {
	case types.TestimonialTypeText, types.TestimonialTypeVideo, types.TestimonialTypeLinked:
	default:
		validationErrors = append(validationErrors, "invalid testimonial type")
	}
	if t.Rating != nil && (*t.Rating < 1 || *t.Rating > 5) {
		validationErrors = append(validationErrors, "rating must be between 1 and 5")
	}
	if t.Type == types.TestimonialTypeVideo && t.MediaURL == "" {
		validationErrors = append(validationErrors, "video testimonials require a media URL")
	}
	if t.Type == types.TestimonialTypeText && !t.Displayable() {
		validationErrors = append(validationErrors, "text testimonials require content or question responses")
	}
	if len(t.Content) > 5000 {
		validationErrors = append(validationErrors, "content exceeds 5000 characters")
	}
	if len(t.AuthorName) > 100 {
		validationErrors = append(validationErrors, "author name exceeds 100 characters")
	}

	if len(validationErrors) > 0 {
		return errors.ValidationFailed("Invalid testimonial data", strings.Join(validationErrors, "; "))
	}
	return nil
}

// validateSubmissionForSpace layers the space's collection rules on top of
// the base testimonial validation.
func validateSubmissionForSpace(space *types.Space, t *types.Testimonial) error {
	if err := validateTestimonial(t); err != nil {
		return err
	}

	var validationErrors []string

	switch space.CollectionType {
	case types.CollectionTextOnly:
		if t.Type == types.TestimonialTypeVideo {
			validationErrors = append(validationErrors, "this space does not accept video testimonials")
		}
		if t.Rating != nil {
			validationErrors = append(validationErrors, "this space does not collect ratings")
		}
	case types.CollectionTextAndStar:
		if t.Type == types.TestimonialTypeVideo {
			validationErrors = append(validationErrors, "this space does not accept video testimonials")
		}
	case types.CollectionTextVideo:
		// Accepts everything.
	}

	if len(validationErrors) > 0 {
		return errors.ValidationFailed("Submission not accepted", strings.Join(validationErrors, "; "))
	}
	return nil
}
