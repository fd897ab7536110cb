package models

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/trustimonials/trustimonials-backend/errors"
	"github.com/trustimonials/trustimonials-backend/internal/store"
	"github.com/trustimonials/trustimonials-backend/internal/widget"
	"github.com/trustimonials/trustimonials-backend/logger"
	"github.com/trustimonials/trustimonials-backend/types"
)

// WidgetModel owns widget lifecycle, settings validation and the dashboard
// preview of what an embed would select.
type WidgetModel struct {
	store            store.WidgetStore
	testimonialStore store.TestimonialStore
	spaceModel       *SpaceModel
}

func NewWidgetModel(s store.WidgetStore, ts store.TestimonialStore, spaceModel *SpaceModel) *WidgetModel {
	return &WidgetModel{store: s, testimonialStore: ts, spaceModel: spaceModel}
}

// CreateWidget validates settings against the widget type and persists the
// widget. Any settings violation rejects the whole write.
func (wm *WidgetModel) CreateWidget(ctx context.Context, spaceID, userID string, role types.UserRole, create *types.WidgetCreate) (*types.Widget, error) {
	log := logger.GetLogger()

	if _, err := wm.spaceModel.GetOwnedSpace(ctx, spaceID, userID, role); err != nil {
		return nil, err
	}
	if strings.TrimSpace(create.Name) == "" {
		return nil, errors.ValidationFailed("Invalid widget data", "widget name is required")
	}

	w := &types.Widget{
		SpaceID:   spaceID,
		Name:      create.Name,
		Type:      create.Type,
		Status:    types.WidgetStatusActive,
		CreatedBy: userID,
	}
	if err := w.DecodeSettings(create.Settings); err != nil {
		return nil, errors.InvalidWidgetSettings(err.Error())
	}
	if err := w.ValidateSettings(); err != nil {
		return nil, errors.InvalidWidgetSettings(err.Error())
	}

	if _, err := wm.store.Create(ctx, w); err != nil {
		log.Errorw("Failed to create widget", "spaceId", spaceID, "error", err)
		return nil, errors.NewDatabaseError(err)
	}
	return w, nil
}

// GetWidget loads a widget after verifying the caller owns its space.
func (wm *WidgetModel) GetWidget(ctx context.Context, id, userID string, role types.UserRole) (*types.Widget, error) {
	w, err := wm.store.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.WidgetNotFound(id)
		}
		return nil, errors.NewDatabaseError(err)
	}
	if _, err := wm.spaceModel.GetOwnedSpace(ctx, w.SpaceID, userID, role); err != nil {
		return nil, errors.WidgetNotFound(id)
	}
	return w, nil
}

// GetEmbeddable loads a widget for the public embed surface. Missing,
// disabled and private widgets are all reported as ErrNotFound so the embed
// page cannot tell them apart.
func (wm *WidgetModel) GetEmbeddable(ctx context.Context, id string) (*types.Widget, error) {
	w, err := wm.store.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if w.Status != types.WidgetStatusActive || !w.IsPublic() {
		return nil, store.ErrNotFound
	}
	return w, nil
}

// ListWidgets returns all widgets of a space the caller owns.
func (wm *WidgetModel) ListWidgets(ctx context.Context, spaceID, userID string, role types.UserRole) ([]types.Widget, error) {
	if _, err := wm.spaceModel.GetOwnedSpace(ctx, spaceID, userID, role); err != nil {
		return nil, err
	}
	widgets, err := wm.store.ListBySpace(ctx, spaceID)
	if err != nil {
		return nil, errors.NewDatabaseError(err)
	}
	return widgets, nil
}

// UpdateWidget applies a partial update. New settings replace the old ones
// wholesale and are validated against the widget's (immutable) type.
func (wm *WidgetModel) UpdateWidget(ctx context.Context, id, userID string, role types.UserRole, update *types.WidgetUpdate) (*types.Widget, error) {
	log := logger.GetLogger()

	w, err := wm.GetWidget(ctx, id, userID, role)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		if strings.TrimSpace(*update.Name) == "" {
			return nil, errors.ValidationFailed("Invalid widget update", "widget name cannot be empty")
		}
		w.Name = *update.Name
	}
	if update.Status != nil {
		if *update.Status != types.WidgetStatusActive && *update.Status != types.WidgetStatusDisabled {
			return nil, errors.ValidationFailed("Invalid widget update", "status must be active or disabled")
		}
		w.Status = *update.Status
	}
	if update.Settings != nil {
		if err := w.DecodeSettings(update.Settings); err != nil {
			return nil, errors.InvalidWidgetSettings(err.Error())
		}
		if err := w.ValidateSettings(); err != nil {
			return nil, errors.InvalidWidgetSettings(err.Error())
		}
	}

	if err := wm.store.Update(ctx, w); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.WidgetNotFound(id)
		}
		log.Errorw("Failed to update widget", "widgetId", id, "error", err)
		return nil, errors.NewDatabaseError(err)
	}
	return w, nil
}

// DeleteWidget removes a widget permanently. Pages embedding it fall back to
// the not-found document on their next load.
func (wm *WidgetModel) DeleteWidget(ctx context.Context, id, userID string, role types.UserRole) error {
	log := logger.GetLogger()

	if _, err := wm.GetWidget(ctx, id, userID, role); err != nil {
		return err
	}
	if err := wm.store.Delete(ctx, id); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return errors.WidgetNotFound(id)
		}
		log.Errorw("Failed to delete widget", "widgetId", id, "error", err)
		return errors.NewDatabaseError(err)
	}
	log.Infow("Widget deleted", "widgetId", id, "userId", userID)
	return nil
}

// SelectForEmbed runs the widget's selection over the space's approved
// testimonials for the public embed surface.
func (wm *WidgetModel) SelectForEmbed(ctx context.Context, w *types.Widget) ([]types.Testimonial, error) {
	approved, err := wm.testimonialStore.ListApprovedBySpace(ctx, w.SpaceID)
	if err != nil {
		return nil, errors.NewDatabaseError(err)
	}
	return widget.Select(w, approved), nil
}

// Preview runs the live embed selection for the dashboard and returns the
// testimonials the widget would currently show, unsanitized.
func (wm *WidgetModel) Preview(ctx context.Context, id, userID string, role types.UserRole) ([]types.Testimonial, error) {
	w, err := wm.GetWidget(ctx, id, userID, role)
	if err != nil {
		return nil, err
	}
	return wm.SelectForEmbed(ctx, w)
}
