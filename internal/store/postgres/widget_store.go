package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/trustimonials/trustimonials-backend/internal/store"
	"github.com/trustimonials/trustimonials-backend/types"
)

// Ensure pgWidgetStore implements store.WidgetStore.
var _ store.WidgetStore = (*pgWidgetStore)(nil)

type pgWidgetStore struct {
	pool PgxPoolIface
}

// NewPgWidgetStore creates a new PostgreSQL widget store.
func NewPgWidgetStore(pool PgxPoolIface) store.WidgetStore {
	return &pgWidgetStore{pool: pool}
}

const widgetColumns = `id, space_id, name, type, settings, status, created_by, metadata, created_at, updated_at`

func scanWidget(row pgx.Row) (*types.Widget, error) {
	w := &types.Widget{}
	var settings json.RawMessage
	err := row.Scan(
		&w.ID, &w.SpaceID, &w.Name, &w.Type, &settings, &w.Status,
		&w.CreatedBy, &w.Metadata, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := w.DecodeSettings(settings); err != nil {
		return nil, fmt.Errorf("widget %s has corrupt settings: %w", w.ID, err)
	}
	return w, nil
}

// Create inserts a new widget. Settings are serialized from the active
// variant into one JSONB document.
func (s *pgWidgetStore) Create(ctx context.Context, w *types.Widget) (string, error) {
	settings, err := w.SettingsJSON()
	if err != nil {
		return "", fmt.Errorf("failed to serialize widget settings: %w", err)
	}

	query := `INSERT INTO widgets (space_id, name, type, settings, status, created_by, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err = s.pool.QueryRow(ctx, query,
		w.SpaceID, w.Name, w.Type, settings, w.Status, w.CreatedBy, w.Metadata,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to create widget: %w", err)
	}
	return w.ID, nil
}

// GetByID retrieves a widget by its id.
func (s *pgWidgetStore) GetByID(ctx context.Context, id string) (*types.Widget, error) {
	query := `SELECT ` + widgetColumns + ` FROM widgets WHERE id = $1`

	w, err := scanWidget(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("widget %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get widget by id: %w", err)
	}
	return w, nil
}

// ListBySpace retrieves all widgets of a space, newest first.
func (s *pgWidgetStore) ListBySpace(ctx context.Context, spaceID string) ([]types.Widget, error) {
	query := `SELECT ` + widgetColumns + ` FROM widgets WHERE space_id = $1 ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query widgets by space: %w", err)
	}
	defer rows.Close()

	widgets := []types.Widget{}
	for rows.Next() {
		w, err := scanWidget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan widget row: %w", err)
		}
		widgets = append(widgets, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during widget row iteration: %w", err)
	}
	return widgets, nil
}

// Update rewrites a widget's mutable fields, settings included.
func (s *pgWidgetStore) Update(ctx context.Context, w *types.Widget) error {
	settings, err := w.SettingsJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize widget settings: %w", err)
	}

	query := `UPDATE widgets
		SET name = $1, settings = $2, status = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at`

	err = s.pool.QueryRow(ctx, query, w.Name, settings, w.Status, w.ID).Scan(&w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("widget %s: %w", w.ID, store.ErrNotFound)
		}
		return fmt.Errorf("failed to update widget: %w", err)
	}
	return nil
}

// Delete removes a widget permanently. Embeds referencing it start serving
// the not-found page.
func (s *pgWidgetStore) Delete(ctx context.Context, id string) error {
	cmdTag, err := s.pool.Exec(ctx, `DELETE FROM widgets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete widget %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("widget %s: %w", id, store.ErrNotFound)
	}
	return nil
}
