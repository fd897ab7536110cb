package models

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/trustimonials/trustimonials-backend/errors"
	"github.com/trustimonials/trustimonials-backend/internal/store"
	"github.com/trustimonials/trustimonials-backend/logger"
	"github.com/trustimonials/trustimonials-backend/types"
)

// TemplateModel owns reusable form templates. Templates are visible to their
// creator plus everyone when public, but only the creator (or an admin) may
// change them.
type TemplateModel struct {
	store store.TemplateStore
}

func NewTemplateModel(s store.TemplateStore) *TemplateModel {
	return &TemplateModel{store: s}
}

// CreateTemplate validates and persists a template.
func (tm *TemplateModel) CreateTemplate(ctx context.Context, userID string, create *types.TemplateCreate) (*types.Template, error) {
	log := logger.GetLogger()

	if strings.TrimSpace(create.Name) == "" {
		return nil, errors.ValidationFailed("Invalid template", "template name is required")
	}
	if err := create.FormConfig.Validate(); err != nil {
		return nil, errors.ValidationFailed("Invalid template", err.Error())
	}

	tpl := &types.Template{
		Name:         create.Name,
		FormConfig:   create.FormConfig,
		EmailSubject: create.EmailSubject,
		EmailBody:    create.EmailBody,
		CreatedBy:    userID,
		IsPublic:     create.IsPublic,
	}
	if _, err := tm.store.Create(ctx, tpl); err != nil {
		log.Errorw("Failed to create template", "userId", userID, "error", err)
		return nil, errors.NewDatabaseError(err)
	}
	return tpl, nil
}

// GetTemplate loads a template visible to the caller: their own or a public
// one.
func (tm *TemplateModel) GetTemplate(ctx context.Context, id, userID string, role types.UserRole) (*types.Template, error) {
	tpl, err := tm.store.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("Template", id)
		}
		return nil, errors.NewDatabaseError(err)
	}
	if !tpl.IsPublic && tpl.CreatedBy != userID && role != types.RoleAdmin {
		return nil, errors.NotFound("Template", id)
	}
	return tpl, nil
}

// ListTemplates returns the caller's templates plus public ones.
func (tm *TemplateModel) ListTemplates(ctx context.Context, userID string) ([]types.Template, error) {
	templates, err := tm.store.ListVisible(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError(err)
	}
	return templates, nil
}

// UpdateTemplate applies a partial update. Only the creator or an admin may
// modify a template, public or not.
func (tm *TemplateModel) UpdateTemplate(ctx context.Context, id, userID string, role types.UserRole, update *types.TemplateUpdate) (*types.Template, error) {
	tpl, err := tm.store.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("Template", id)
		}
		return nil, errors.NewDatabaseError(err)
	}
	if tpl.CreatedBy != userID && role != types.RoleAdmin {
		return nil, errors.Forbidden("Cannot modify template", "only the creator may modify a template")
	}

	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, errors.ValidationFailed("Invalid template update", "template name cannot be empty")
	}
	if update.FormConfig != nil {
		if err := update.FormConfig.Validate(); err != nil {
			return nil, errors.ValidationFailed("Invalid template update", err.Error())
		}
	}

	updated, err := tm.store.Update(ctx, id, update)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("Template", id)
		}
		return nil, errors.NewDatabaseError(err)
	}
	return updated, nil
}

// DeleteTemplate removes a template; spaces referencing it lose the
// reference but keep working.
func (tm *TemplateModel) DeleteTemplate(ctx context.Context, id, userID string, role types.UserRole) error {
	tpl, err := tm.store.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return errors.NotFound("Template", id)
		}
		return errors.NewDatabaseError(err)
	}
	if tpl.CreatedBy != userID && role != types.RoleAdmin {
		return errors.Forbidden("Cannot delete template", "only the creator may delete a template")
	}

	if err := tm.store.Delete(ctx, id); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return errors.NotFound("Template", id)
		}
		return errors.NewDatabaseError(err)
	}
	return nil
}
