package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/trustimonials/trustimonials-backend/internal/store"
	"github.com/trustimonials/trustimonials-backend/types"
)

// Ensure pgSpaceStore implements store.SpaceStore.
var _ store.SpaceStore = (*pgSpaceStore)(nil)

type pgSpaceStore struct {
	pool PgxPoolIface
}

// NewPgSpaceStore creates a new PostgreSQL space store.
func NewPgSpaceStore(pool PgxPoolIface) store.SpaceStore {
	return &pgSpaceStore{pool: pool}
}

const spaceColumns = `id, owner_id, name, description, logo, header_title, header_message,
	question_list, collect_extras, collection_type, theme, button_color, language,
	auto_translate, template_id, expiry_date, max_uses, is_active, created_at, updated_at`

func scanSpace(row pgx.Row) (*types.Space, error) {
	s := &types.Space{}
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.Name, &s.Description, &s.Logo, &s.HeaderTitle, &s.HeaderMessage,
		&s.QuestionList, &s.CollectExtras, &s.CollectionType, &s.Theme, &s.ButtonColor, &s.Language,
		&s.AutoTranslate, &s.TemplateID, &s.ExpiryDate, &s.MaxUses, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new space and returns its generated id.
func (s *pgSpaceStore) Create(ctx context.Context, space *types.Space) (string, error) {
	query := `INSERT INTO spaces (
			owner_id, name, description, logo, header_title, header_message,
			question_list, collect_extras, collection_type, theme, button_color,
			language, auto_translate, template_id, expiry_date, max_uses, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		space.OwnerID, space.Name, space.Description, space.Logo, space.HeaderTitle, space.HeaderMessage,
		space.QuestionList, space.CollectExtras, space.CollectionType, space.Theme, space.ButtonColor,
		space.Language, space.AutoTranslate, space.TemplateID, space.ExpiryDate, space.MaxUses, space.IsActive,
	).Scan(&space.ID, &space.CreatedAt, &space.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to create space: %w", err)
	}
	return space.ID, nil
}

// GetByID retrieves a space by its id.
func (s *pgSpaceStore) GetByID(ctx context.Context, id string) (*types.Space, error) {
	query := `SELECT ` + spaceColumns + ` FROM spaces WHERE id = $1`

	space, err := scanSpace(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("space %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get space by id: %w", err)
	}
	return space, nil
}

// ListByOwner retrieves all spaces owned by a user, newest first.
func (s *pgSpaceStore) ListByOwner(ctx context.Context, ownerID string) ([]types.Space, error) {
	query := `SELECT ` + spaceColumns + ` FROM spaces WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query spaces by owner: %w", err)
	}
	defer rows.Close()

	spaces := []types.Space{}
	for rows.Next() {
		space, err := scanSpace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan space row: %w", err)
		}
		spaces = append(spaces, *space)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during space row iteration: %w", err)
	}
	return spaces, nil
}

// Update applies a partial update and returns the updated space.
func (s *pgSpaceStore) Update(ctx context.Context, id string, update *types.SpaceUpdate) (*types.Space, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	argCount := 0

	addSet := func(column string, value interface{}) {
		argCount++
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argCount))
		args = append(args, value)
	}

	if update.Name != nil {
		addSet("name", *update.Name)
	}
	if update.Description != nil {
		addSet("description", *update.Description)
	}
	if update.Logo != nil {
		addSet("logo", *update.Logo)
	}
	if update.HeaderTitle != nil {
		addSet("header_title", *update.HeaderTitle)
	}
	if update.HeaderMessage != nil {
		addSet("header_message", *update.HeaderMessage)
	}
	if update.QuestionList != nil {
		addSet("question_list", *update.QuestionList)
	}
	if update.CollectExtras != nil {
		addSet("collect_extras", *update.CollectExtras)
	}
	if update.CollectionType != nil {
		addSet("collection_type", *update.CollectionType)
	}
	if update.Theme != nil {
		addSet("theme", *update.Theme)
	}
	if update.ButtonColor != nil {
		addSet("button_color", *update.ButtonColor)
	}
	if update.Language != nil {
		addSet("language", *update.Language)
	}
	if update.AutoTranslate != nil {
		addSet("auto_translate", *update.AutoTranslate)
	}
	if update.TemplateID != nil {
		addSet("template_id", *update.TemplateID)
	}
	if update.ExpiryDate != nil {
		addSet("expiry_date", *update.ExpiryDate)
	}
	if update.MaxUses != nil {
		addSet("max_uses", *update.MaxUses)
	}

	argCount++
	args = append(args, id)

	query := fmt.Sprintf("UPDATE spaces SET %s WHERE id = $%d RETURNING %s",
		joinClauses(setClauses), argCount, spaceColumns)

	space, err := scanSpace(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("space %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update space: %w", err)
	}
	return space, nil
}

// Delete soft-deletes a space by deactivating it. Testimonials and widgets
// stay in place; the public submission form stops serving.
func (s *pgSpaceStore) Delete(ctx context.Context, id string) error {
	cmdTag, err := s.pool.Exec(ctx, `UPDATE spaces SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete space %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("space %s: %w", id, store.ErrNotFound)
	}
	return nil
}
