package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/trustimonials/trustimonials-backend/internal/store"
	"github.com/trustimonials/trustimonials-backend/types"
)

// Ensure pgTemplateStore implements store.TemplateStore.
var _ store.TemplateStore = (*pgTemplateStore)(nil)

type pgTemplateStore struct {
	pool PgxPoolIface
}

// NewPgTemplateStore creates a new PostgreSQL template store.
func NewPgTemplateStore(pool PgxPoolIface) store.TemplateStore {
	return &pgTemplateStore{pool: pool}
}

const templateColumns = `id, name, form_config, email_subject, email_body, created_by, is_public, created_at, updated_at`

func scanTemplate(row pgx.Row) (*types.Template, error) {
	t := &types.Template{}
	err := row.Scan(
		&t.ID, &t.Name, &t.FormConfig, &t.EmailSubject, &t.EmailBody,
		&t.CreatedBy, &t.IsPublic, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a new template and returns its generated id.
func (s *pgTemplateStore) Create(ctx context.Context, t *types.Template) (string, error) {
	query := `INSERT INTO templates (name, form_config, email_subject, email_body, created_by, is_public)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		t.Name, t.FormConfig, t.EmailSubject, t.EmailBody, t.CreatedBy, t.IsPublic,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to create template: %w", err)
	}
	return t.ID, nil
}

// GetByID retrieves a template by its id.
func (s *pgTemplateStore) GetByID(ctx context.Context, id string) (*types.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE id = $1`

	t, err := scanTemplate(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("template %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get template by id: %w", err)
	}
	return t, nil
}

// ListVisible retrieves templates the user owns plus all public ones.
func (s *pgTemplateStore) ListVisible(ctx context.Context, userID string) ([]types.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates
		WHERE created_by = $1 OR is_public = TRUE
		ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query visible templates: %w", err)
	}
	defer rows.Close()

	templates := []types.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template row: %w", err)
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during template row iteration: %w", err)
	}
	return templates, nil
}

// Update applies a partial update and returns the updated template.
func (s *pgTemplateStore) Update(ctx context.Context, id string, update *types.TemplateUpdate) (*types.Template, error) {
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
	if update.FormConfig != nil {
		addSet("form_config", *update.FormConfig)
	}
	if update.EmailSubject != nil {
		addSet("email_subject", *update.EmailSubject)
	}
	if update.EmailBody != nil {
		addSet("email_body", *update.EmailBody)
	}
	if update.IsPublic != nil {
		addSet("is_public", *update.IsPublic)
	}

	argCount++
	args = append(args, id)

	query := fmt.Sprintf("UPDATE templates SET %s WHERE id = $%d RETURNING %s",
		joinClauses(setClauses), argCount, templateColumns)

	t, err := scanTemplate(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("template %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return t, nil
}

// Delete removes a template. Spaces referencing it keep working; the
// reference is nulled by FK.
func (s *pgTemplateStore) Delete(ctx context.Context, id string) error {
	cmdTag, err := s.pool.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("template %s: %w", id, store.ErrNotFound)
	}
	return nil
}
