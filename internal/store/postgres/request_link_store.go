package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/trustimonials/trustimonials-backend/internal/store"
	"github.com/trustimonials/trustimonials-backend/types"
)

// Ensure pgRequestLinkStore implements store.RequestLinkStore.
var _ store.RequestLinkStore = (*pgRequestLinkStore)(nil)

type pgRequestLinkStore struct {
	pool PgxPoolIface
}

// NewPgRequestLinkStore creates a new PostgreSQL request link store.
func NewPgRequestLinkStore(pool PgxPoolIface) store.RequestLinkStore {
	return &pgRequestLinkStore{pool: pool}
}

const requestLinkColumns = `id, owner_id, slug, template_id, expiry_date, max_uses, uses, is_active, created_at, updated_at`

func scanRequestLink(row pgx.Row) (*types.RequestLink, error) {
	l := &types.RequestLink{}
	err := row.Scan(
		&l.ID, &l.OwnerID, &l.Slug, &l.TemplateID, &l.ExpiryDate,
		&l.MaxUses, &l.Uses, &l.IsActive, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Create inserts a new request link. A duplicate slug reports ErrConflict.
func (s *pgRequestLinkStore) Create(ctx context.Context, l *types.RequestLink) (string, error) {
	query := `INSERT INTO request_links (owner_id, slug, template_id, expiry_date, max_uses, uses, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		l.OwnerID, l.Slug, l.TemplateID, l.ExpiryDate, l.MaxUses, l.Uses, l.IsActive,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("slug %q already taken: %w", l.Slug, store.ErrConflict)
		}
		return "", fmt.Errorf("failed to create request link: %w", err)
	}
	return l.ID, nil
}

// GetByID retrieves a request link by its id.
func (s *pgRequestLinkStore) GetByID(ctx context.Context, id string) (*types.RequestLink, error) {
	query := `SELECT ` + requestLinkColumns + ` FROM request_links WHERE id = $1`

	l, err := scanRequestLink(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("request link %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get request link by id: %w", err)
	}
	return l, nil
}

// GetBySlug retrieves a request link by its globally unique slug.
func (s *pgRequestLinkStore) GetBySlug(ctx context.Context, slug string) (*types.RequestLink, error) {
	query := `SELECT ` + requestLinkColumns + ` FROM request_links WHERE slug = $1`

	l, err := scanRequestLink(s.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("request link slug %q: %w", slug, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get request link by slug: %w", err)
	}
	return l, nil
}

// ListByOwner retrieves all request links owned by a user, newest first.
func (s *pgRequestLinkStore) ListByOwner(ctx context.Context, ownerID string) ([]types.RequestLink, error) {
	query := `SELECT ` + requestLinkColumns + ` FROM request_links WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query request links by owner: %w", err)
	}
	defer rows.Close()

	links := []types.RequestLink{}
	for rows.Next() {
		l, err := scanRequestLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request link row: %w", err)
		}
		links = append(links, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during request link row iteration: %w", err)
	}
	return links, nil
}

// Update applies a partial update and returns the updated link.
func (s *pgRequestLinkStore) Update(ctx context.Context, id string, update *types.RequestLinkUpdate) (*types.RequestLink, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	argCount := 0

	addSet := func(column string, value interface{}) {
		argCount++
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argCount))
		args = append(args, value)
	}

	if update.IsActive != nil {
		addSet("is_active", *update.IsActive)
	}
	if update.ExpiryDate != nil {
		addSet("expiry_date", *update.ExpiryDate)
	}
	if update.MaxUses != nil {
		addSet("max_uses", *update.MaxUses)
	}

	argCount++
	args = append(args, id)

	query := fmt.Sprintf("UPDATE request_links SET %s WHERE id = $%d RETURNING %s",
		joinClauses(setClauses), argCount, requestLinkColumns)

	l, err := scanRequestLink(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("request link %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update request link: %w", err)
	}
	return l, nil
}

// IncrementUses bumps the use counter by one.
func (s *pgRequestLinkStore) IncrementUses(ctx context.Context, id string) error {
	query := `UPDATE request_links SET uses = uses + 1, updated_at = NOW() WHERE id = $1`

	cmdTag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment request link uses: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("request link %s: %w", id, store.ErrNotFound)
	}
	return nil
}

// Delete removes a request link permanently.
func (s *pgRequestLinkStore) Delete(ctx context.Context, id string) error {
	cmdTag, err := s.pool.Exec(ctx, `DELETE FROM request_links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete request link %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("request link %s: %w", id, store.ErrNotFound)
	}
	return nil
}
