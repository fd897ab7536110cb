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

// Base collection allowances per space. Remaining credits are derived from
// these minus the current non-deleted testimonial counts.
const (
	baseVideoCredits = 2
	baseTextCredits  = 10
)

// SpaceModel owns space lifecycle and the ownership checks every other model
// routes through.
type SpaceModel struct {
	store            store.SpaceStore
	testimonialStore store.TestimonialStore
}

func NewSpaceModel(s store.SpaceStore, ts store.TestimonialStore) *SpaceModel {
	return &SpaceModel{store: s, testimonialStore: ts}
}

// CreateSpace validates the payload, applies defaults and persists the space.
func (sm *SpaceModel) CreateSpace(ctx context.Context, ownerID string, create *types.SpaceCreate) (*types.Space, error) {
	log := logger.GetLogger()

	if err := validateSpaceCreate(create); err != nil {
		return nil, err
	}

	space := &types.Space{
		OwnerID:        ownerID,
		Name:           create.Name,
		Description:    create.Description,
		Logo:           create.Logo,
		HeaderTitle:    create.HeaderTitle,
		HeaderMessage:  create.HeaderMessage,
		QuestionList:   create.QuestionList,
		CollectExtras:  create.CollectExtras,
		CollectionType: create.CollectionType,
		Theme:          create.Theme,
		ButtonColor:    create.ButtonColor,
		Language:       create.Language,
		AutoTranslate:  create.AutoTranslate,
		TemplateID:     create.TemplateID,
		ExpiryDate:     create.ExpiryDate,
		MaxUses:        create.MaxUses,
		IsActive:       true,
	}
	applySpaceDefaults(space)

	if _, err := sm.store.Create(ctx, space); err != nil {
		log.Errorw("Failed to create space", "ownerId", ownerID, "error", err)
		return nil, errors.NewDatabaseError(err)
	}
	return space, nil
}

// GetOwnedSpace loads a space and verifies the caller may manage it. A space
// that exists but belongs to someone else reads as not found; admins see
// everything.
func (sm *SpaceModel) GetOwnedSpace(ctx context.Context, id, userID string, role types.UserRole) (*types.Space, error) {
	space, err := sm.store.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.SpaceNotFound(id)
		}
		return nil, errors.NewDatabaseError(err)
	}
	if space.OwnerID != userID && role != types.RoleAdmin {
		return nil, errors.SpaceNotFound(id)
	}
	return space, nil
}

// GetPublicSpace loads a space for the anonymous submission surface. Inactive
// spaces read as not found.
func (sm *SpaceModel) GetPublicSpace(ctx context.Context, id string) (*types.Space, error) {
	space, err := sm.store.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.SpaceNotFound(id)
		}
		return nil, errors.NewDatabaseError(err)
	}
	if !space.IsActive {
		return nil, errors.SpaceNotFound(id)
	}
	return space, nil
}

// ListSpaces returns all spaces the user owns.
func (sm *SpaceModel) ListSpaces(ctx context.Context, ownerID string) ([]types.Space, error) {
	spaces, err := sm.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, errors.NewDatabaseError(err)
	}
	return spaces, nil
}

// UpdateSpace applies a partial update after an ownership check.
func (sm *SpaceModel) UpdateSpace(ctx context.Context, id, userID string, role types.UserRole, update *types.SpaceUpdate) (*types.Space, error) {
	log := logger.GetLogger()

	if _, err := sm.GetOwnedSpace(ctx, id, userID, role); err != nil {
		return nil, err
	}
	if err := validateSpaceUpdate(update); err != nil {
		return nil, err
	}

	space, err := sm.store.Update(ctx, id, update)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.SpaceNotFound(id)
		}
		log.Errorw("Failed to update space", "spaceId", id, "error", err)
		return nil, errors.NewDatabaseError(err)
	}
	return space, nil
}

// DeleteSpace deactivates a space. Its data stays; its public submission
// form stops serving.
func (sm *SpaceModel) DeleteSpace(ctx context.Context, id, userID string, role types.UserRole) error {
	log := logger.GetLogger()

	if _, err := sm.GetOwnedSpace(ctx, id, userID, role); err != nil {
		return err
	}
	if err := sm.store.Delete(ctx, id); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return errors.SpaceNotFound(id)
		}
		log.Errorw("Failed to delete space", "spaceId", id, "error", err)
		return errors.NewDatabaseError(err)
	}
	log.Infow("Space deleted", "spaceId", id, "userId", userID)
	return nil
}

// GetCredits derives the remaining collection allowance for a space.
func (sm *SpaceModel) GetCredits(ctx context.Context, id, userID string, role types.UserRole) (*types.SpaceCredits, error) {
	if _, err := sm.GetOwnedSpace(ctx, id, userID, role); err != nil {
		return nil, err
	}

	counts, err := sm.testimonialStore.CountByType(ctx, id)
	if err != nil {
		return nil, errors.NewDatabaseError(err)
	}

	credits := &types.SpaceCredits{
		VideoCredits: baseVideoCredits - counts[types.TestimonialTypeVideo],
		TextCredits:  baseTextCredits - counts[types.TestimonialTypeText] - counts[types.TestimonialTypeLinked],
	}
	if credits.VideoCredits < 0 {
		credits.VideoCredits = 0
	}
	if credits.TextCredits < 0 {
		credits.TextCredits = 0
	}
	return credits, nil
}

func applySpaceDefaults(space *types.Space) {
	if space.CollectionType == "" {
		space.CollectionType = types.CollectionTextAndStar
	}
	if space.Theme == "" {
		space.Theme = types.ThemeLight
	}
	if space.ButtonColor == "" {
		space.ButtonColor = "#5D5DFF"
	}
	if space.Language == "" {
		space.Language = "en"
	}
}

func validateSpaceCreate(create *types.SpaceCreate) error {
	var validationErrors []string

	if strings.TrimSpace(create.Name) == "" {
		validationErrors = append(validationErrors, "space name is required")
	}
	if len(create.Name) > 100 {
		validationErrors = append(validationErrors, "space name exceeds 100 characters")
	}
	if len(create.QuestionList) == 0 {
		validationErrors = append(validationErrors, "at least one question is required")
	}
	if create.CollectionType != "" && !validCollectionType(create.CollectionType) {
		validationErrors = append(validationErrors, "invalid collection type")
	}
	if create.Theme != "" && !types.ValidTheme(create.Theme) {
		validationErrors = append(validationErrors, "invalid theme")
	}
	if create.MaxUses != nil && *create.MaxUses < 1 {
		validationErrors = append(validationErrors, "max uses must be positive")
	}
	if create.ExpiryDate != nil && !create.ExpiryDate.After(time.Now()) {
		validationErrors = append(validationErrors, "expiry date must be in the future")
	}

	if len(validationErrors) > 0 {
		return errors.ValidationFailed("Invalid space data", strings.Join(validationErrors, "; "))
	}
	return nil
}

func validateSpaceUpdate(update *types.SpaceUpdate) error {
	var validationErrors []string

	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		validationErrors = append(validationErrors, "space name cannot be empty")
	}
	if update.QuestionList != nil && len(*update.QuestionList) == 0 {
		validationErrors = append(validationErrors, "question list cannot be empty")
	}
	if update.CollectionType != nil && !validCollectionType(*update.CollectionType) {
		validationErrors = append(validationErrors, "invalid collection type")
	}
	if update.Theme != nil && !types.ValidTheme(*update.Theme) {
		validationErrors = append(validationErrors, "invalid theme")
	}
	if update.MaxUses != nil && *update.MaxUses < 1 {
		validationErrors = append(validationErrors, "max uses must be positive")
	}
	if update.ExpiryDate != nil && !update.ExpiryDate.After(time.Now()) {
		validationErrors = append(validationErrors, "expiry date must be in the future")
	}

	if len(validationErrors) > 0 {
		return errors.ValidationFailed("Invalid space update", strings.Join(validationErrors, "; "))
	}
	return nil
}

func validCollectionType(ct types.CollectionType) bool {
	return ct == types.CollectionTextOnly || ct == types.CollectionTextAndStar || ct == types.CollectionTextVideo
}
