package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/trustimonials/trustimonials-backend/internal/store"
	"github.com/trustimonials/trustimonials-backend/types"
)

// Ensure pgTestimonialStore implements store.TestimonialStore.
var _ store.TestimonialStore = (*pgTestimonialStore)(nil)

type pgTestimonialStore struct {
	pool PgxPoolIface
}

// NewPgTestimonialStore creates a new PostgreSQL testimonial store.
func NewPgTestimonialStore(pool PgxPoolIface) store.TestimonialStore {
	return &pgTestimonialStore{pool: pool}
}

const testimonialColumns = `id, space_id, type, author_name, author_email, content, rating,
	media_url, thumbnail_url, images, question_responses, collected_via, status,
	source_link, submitted_at, approved_at, created_by, metadata, created_at, updated_at`

func scanTestimonial(row pgx.Row) (*types.Testimonial, error) {
	t := &types.Testimonial{}
	err := row.Scan(
		&t.ID, &t.SpaceID, &t.Type, &t.AuthorName, &t.AuthorEmail, &t.Content, &t.Rating,
		&t.MediaURL, &t.ThumbnailURL, &t.Images, &t.QuestionResponses, &t.CollectedVia, &t.Status,
		&t.SourceLink, &t.SubmittedAt, &t.ApprovedAt, &t.CreatedBy, &t.Metadata, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a new testimonial and returns its generated id.
func (s *pgTestimonialStore) Create(ctx context.Context, t *types.Testimonial) (string, error) {
	query := `INSERT INTO testimonials (
			space_id, type, author_name, author_email, content, rating,
			media_url, thumbnail_url, images, question_responses, collected_via,
			status, source_link, submitted_at, created_by, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		t.SpaceID, t.Type, t.AuthorName, t.AuthorEmail, t.Content, t.Rating,
		t.MediaURL, t.ThumbnailURL, t.Images, t.QuestionResponses, t.CollectedVia,
		t.Status, t.SourceLink, t.SubmittedAt, t.CreatedBy, t.Metadata,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to create testimonial: %w", err)
	}
	return t.ID, nil
}

// GetByID retrieves a testimonial by its id.
func (s *pgTestimonialStore) GetByID(ctx context.Context, id string) (*types.Testimonial, error) {
	query := `SELECT ` + testimonialColumns + ` FROM testimonials WHERE id = $1`

	t, err := scanTestimonial(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("testimonial %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get testimonial by id: %w", err)
	}
	return t, nil
}

// listSortColumns whitelists the sortable inbox columns; anything else falls
// back to submitted_at.
var listSortColumns = map[string]string{
	"submittedAt": "submitted_at",
	"rating":      "rating",
	"authorName":  "author_name",
	"status":      "status",
}

// List returns one inbox page for a space plus the total matching row count.
// Deleted testimonials never appear; archived and spam only appear under
// their own filters.
func (s *pgTestimonialStore) List(ctx context.Context, spaceID string, q types.TestimonialListQuery) ([]types.Testimonial, int, error) {
	where := `space_id = $1`
	args := []interface{}{spaceID}
	argCount := 1

	switch q.Filter {
	case "", "all":
		where += ` AND status NOT IN ('archived', 'spam', 'deleted')`
	case "archived":
		where += ` AND status = 'archived'`
	case "spam":
		where += ` AND status = 'spam'`
	case "video", "text", "linked":
		argCount++
		where += fmt.Sprintf(` AND type = $%d AND status NOT IN ('archived', 'spam', 'deleted')`, argCount)
		args = append(args, q.Filter)
	default:
		return nil, 0, fmt.Errorf("unknown testimonial filter %q", q.Filter)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM testimonials WHERE ` + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count testimonials: %w", err)
	}

	sortCol, ok := listSortColumns[q.Sort]
	if !ok {
		sortCol = "submitted_at"
	}

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	argCount++
	limitArg := argCount
	args = append(args, limit)
	argCount++
	offsetArg := argCount
	args = append(args, (page-1)*limit)

	query := fmt.Sprintf(`SELECT %s FROM testimonials WHERE %s ORDER BY %s DESC LIMIT $%d OFFSET $%d`,
		testimonialColumns, where, sortCol, limitArg, offsetArg)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query testimonials: %w", err)
	}
	defer rows.Close()

	testimonials := []types.Testimonial{}
	for rows.Next() {
		t, err := scanTestimonial(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan testimonial row: %w", err)
		}
		testimonials = append(testimonials, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error during testimonial row iteration: %w", err)
	}
	return testimonials, total, nil
}

// ListApprovedBySpace returns every approved testimonial of a space, newest
// submission first.
func (s *pgTestimonialStore) ListApprovedBySpace(ctx context.Context, spaceID string) ([]types.Testimonial, error) {
	query := `SELECT ` + testimonialColumns + ` FROM testimonials
		WHERE space_id = $1 AND status = 'approved'
		ORDER BY submitted_at DESC`

	rows, err := s.pool.Query(ctx, query, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query approved testimonials: %w", err)
	}
	defer rows.Close()

	testimonials := []types.Testimonial{}
	for rows.Next() {
		t, err := scanTestimonial(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan testimonial row: %w", err)
		}
		testimonials = append(testimonials, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during testimonial row iteration: %w", err)
	}
	return testimonials, nil
}

// ListLegacy returns one page of space-less testimonials plus the total row
// count. Deleted rows never appear.
func (s *pgTestimonialStore) ListLegacy(ctx context.Context, q types.LegacyListQuery) ([]types.Testimonial, int, error) {
	where := `space_id IS NULL AND status != 'deleted'`
	args := []interface{}{}
	argCount := 0

	if q.Status != nil {
		argCount++
		where += fmt.Sprintf(` AND status = $%d`, argCount)
		args = append(args, *q.Status)
	}
	if q.Rating != nil {
		argCount++
		where += fmt.Sprintf(` AND rating = $%d`, argCount)
		args = append(args, *q.Rating)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM testimonials WHERE ` + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count legacy testimonials: %w", err)
	}

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	query := fmt.Sprintf(`SELECT %s FROM testimonials WHERE %s ORDER BY submitted_at DESC LIMIT $%d OFFSET $%d`,
		testimonialColumns, where, argCount+1, argCount+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query legacy testimonials: %w", err)
	}
	defer rows.Close()

	testimonials := []types.Testimonial{}
	for rows.Next() {
		t, err := scanTestimonial(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan testimonial row: %w", err)
		}
		testimonials = append(testimonials, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error during testimonial row iteration: %w", err)
	}
	return testimonials, total, nil
}

// UpdateStatus sets a testimonial's moderation status. Approving stamps
// approved_at; leaving the approved state clears it.
func (s *pgTestimonialStore) UpdateStatus(ctx context.Context, id string, status types.TestimonialStatus) error {
	query := `UPDATE testimonials
		SET status = $1,
		    approved_at = CASE WHEN $1 = 'approved' THEN NOW() ELSE NULL END,
		    updated_at = NOW()
		WHERE id = $2`

	cmdTag, err := s.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update testimonial status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("testimonial %s: %w", id, store.ErrNotFound)
	}
	return nil
}

// UpdateStatusBulk applies the status to the given ids within one space and
// returns the prior status of each updated row. Ids outside the space, or in
// a status not listed in allowedFrom, simply do not appear in the result.
func (s *pgTestimonialStore) UpdateStatusBulk(ctx context.Context, spaceID string, ids []string, status types.TestimonialStatus, allowedFrom []types.TestimonialStatus) (map[string]types.TestimonialStatus, error) {
	if len(ids) == 0 {
		return map[string]types.TestimonialStatus{}, nil
	}

	query := `UPDATE testimonials t
		SET status = $1,
		    approved_at = CASE WHEN $1 = 'approved' THEN NOW() ELSE NULL END,
		    updated_at = NOW()
		FROM (SELECT id, status FROM testimonials
		      WHERE space_id = $2 AND id = ANY($3)
		        AND ($4::text[] IS NULL OR status = ANY($4))) prev
		WHERE t.id = prev.id
		RETURNING t.id, prev.status`

	var fromFilter []string
	for _, st := range allowedFrom {
		fromFilter = append(fromFilter, string(st))
	}

	rows, err := s.pool.Query(ctx, query, status, spaceID, ids, fromFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk update testimonial status: %w", err)
	}
	defer rows.Close()

	previous := map[string]types.TestimonialStatus{}
	for rows.Next() {
		var id string
		var prior types.TestimonialStatus
		if err := rows.Scan(&id, &prior); err != nil {
			return nil, fmt.Errorf("failed to scan bulk update row: %w", err)
		}
		previous[id] = prior
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during bulk update row iteration: %w", err)
	}
	return previous, nil
}

// CountByType counts non-deleted testimonials per type for a space.
func (s *pgTestimonialStore) CountByType(ctx context.Context, spaceID string) (map[types.TestimonialType]int, error) {
	query := `SELECT type, COUNT(*) FROM testimonials
		WHERE space_id = $1 AND status != 'deleted'
		GROUP BY type`

	rows, err := s.pool.Query(ctx, query, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to count testimonials by type: %w", err)
	}
	defer rows.Close()

	counts := map[types.TestimonialType]int{}
	for rows.Next() {
		var tt types.TestimonialType
		var n int
		if err := rows.Scan(&tt, &n); err != nil {
			return nil, fmt.Errorf("failed to scan testimonial count row: %w", err)
		}
		counts[tt] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during testimonial count iteration: %w", err)
	}
	return counts, nil
}
