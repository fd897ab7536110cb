package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustimonials/trustimonials-backend/internal/store"
	"github.com/trustimonials/trustimonials-backend/types"
)

func setupMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func testimonialRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "space_id", "type", "author_name", "author_email", "content", "rating",
		"media_url", "thumbnail_url", "images", "question_responses", "collected_via", "status",
		"source_link", "submitted_at", "approved_at", "created_by", "metadata", "created_at", "updated_at",
	})
}

func addTestimonialRow(rows *pgxmock.Rows, id, spaceID string, status types.TestimonialStatus) *pgxmock.Rows {
	now := time.Now()
	rating := 5
	return rows.AddRow(
		id, &spaceID, types.TestimonialTypeText, "Ada", "ada@example.com", "Great tool", &rating,
		"", "", []string(nil), []types.QuestionResponse(nil), types.ChannelLink, status,
		"", now, (*time.Time)(nil), (*string)(nil), map[string]any(nil), now, now,
	)
}

func TestTestimonialStore_GetByID(t *testing.T) {
	mock := setupMockPool(t)
	s := NewPgTestimonialStore(mock)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := addTestimonialRow(testimonialRows(), "t-1", "s-1", types.StatusApproved)
		mock.ExpectQuery(`SELECT (.+) FROM testimonials WHERE id = \$1`).
			WithArgs("t-1").
			WillReturnRows(rows)

		got, err := s.GetByID(ctx, "t-1")
		require.NoError(t, err)
		assert.Equal(t, "t-1", got.ID)
		assert.Equal(t, types.StatusApproved, got.Status)
		require.NotNil(t, got.SpaceID)
		assert.Equal(t, "s-1", *got.SpaceID)
	})

	t.Run("not found maps to sentinel", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM testimonials WHERE id = \$1`).
			WithArgs("missing").
			WillReturnRows(testimonialRows())

		_, err := s.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTestimonialStore_List_Filters(t *testing.T) {
	mock := setupMockPool(t)
	s := NewPgTestimonialStore(mock)
	ctx := context.Background()

	t.Run("all excludes archived spam deleted", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM testimonials WHERE space_id = \$1 AND status NOT IN \('archived', 'spam', 'deleted'\)`).
			WithArgs("s-1").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT (.+) FROM testimonials WHERE space_id = \$1 AND status NOT IN (.+) ORDER BY submitted_at DESC LIMIT \$2 OFFSET \$3`).
			WithArgs("s-1", 20, 0).
			WillReturnRows(addTestimonialRow(testimonialRows(), "t-1", "s-1", types.StatusPending))

		got, total, err := s.List(ctx, "s-1", types.TestimonialListQuery{Filter: "all"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, got, 1)
		assert.Equal(t, "t-1", got[0].ID)
	})

	t.Run("type filter passes value", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM testimonials WHERE space_id = \$1 AND type = \$2`).
			WithArgs("s-1", "video").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT (.+) FROM testimonials WHERE space_id = \$1 AND type = \$2 (.+) LIMIT \$3 OFFSET \$4`).
			WithArgs("s-1", "video", 20, 0).
			WillReturnRows(testimonialRows())

		got, total, err := s.List(ctx, "s-1", types.TestimonialListQuery{Filter: "video"})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, got)
	})

	t.Run("unknown filter rejected before querying", func(t *testing.T) {
		_, _, err := s.List(ctx, "s-1", types.TestimonialListQuery{Filter: "bogus"})
		assert.Error(t, err)
	})

	t.Run("unknown sort falls back to submitted_at", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM testimonials`).
			WithArgs("s-1").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`ORDER BY submitted_at DESC`).
			WithArgs("s-1", 20, 0).
			WillReturnRows(testimonialRows())

		_, _, err := s.List(ctx, "s-1", types.TestimonialListQuery{Filter: "all", Sort: "evil; DROP TABLE"})
		require.NoError(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTestimonialStore_ListLegacy(t *testing.T) {
	mock := setupMockPool(t)
	s := NewPgTestimonialStore(mock)
	ctx := context.Background()

	t.Run("no filters", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM testimonials WHERE space_id IS NULL AND status != 'deleted'`).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT (.+) FROM testimonials WHERE space_id IS NULL AND status != 'deleted' ORDER BY submitted_at DESC LIMIT \$1 OFFSET \$2`).
			WithArgs(20, 0).
			WillReturnRows(addTestimonialRow(testimonialRows(), "t-1", "", types.StatusApproved))

		got, total, err := s.ListLegacy(ctx, types.LegacyListQuery{})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, got, 1)
		assert.Equal(t, "t-1", got[0].ID)
	})

	t.Run("status and rating filters are passed through", func(t *testing.T) {
		status := types.StatusPending
		rating := 5
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM testimonials WHERE space_id IS NULL AND status != 'deleted' AND status = \$1 AND rating = \$2`).
			WithArgs(status, rating).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT (.+) FROM testimonials WHERE space_id IS NULL (.+) LIMIT \$3 OFFSET \$4`).
			WithArgs(status, rating, 20, 0).
			WillReturnRows(testimonialRows())

		got, total, err := s.ListLegacy(ctx, types.LegacyListQuery{Status: &status, Rating: &rating})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, got)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTestimonialStore_UpdateStatus(t *testing.T) {
	mock := setupMockPool(t)
	s := NewPgTestimonialStore(mock)
	ctx := context.Background()

	t.Run("updates row", func(t *testing.T) {
		mock.ExpectExec(`UPDATE testimonials`).
			WithArgs(types.StatusApproved, "t-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, s.UpdateStatus(ctx, "t-1", types.StatusApproved))
	})

	t.Run("missing row maps to sentinel", func(t *testing.T) {
		mock.ExpectExec(`UPDATE testimonials`).
			WithArgs(types.StatusRejected, "missing").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := s.UpdateStatus(ctx, "missing", types.StatusRejected)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTestimonialStore_UpdateStatusBulk(t *testing.T) {
	mock := setupMockPool(t)
	s := NewPgTestimonialStore(mock)
	ctx := context.Background()

	t.Run("returns prior statuses of updated rows only", func(t *testing.T) {
		ids := []string{"t-1", "t-2", "t-other-space"}
		rows := pgxmock.NewRows([]string{"id", "status"}).
			AddRow("t-1", types.StatusPending).
			AddRow("t-2", types.StatusArchived)
		mock.ExpectQuery(`UPDATE testimonials t`).
			WithArgs(types.StatusSpam, "s-1", ids, []string(nil)).
			WillReturnRows(rows)

		previous, err := s.UpdateStatusBulk(ctx, "s-1", ids, types.StatusSpam, nil)
		require.NoError(t, err)
		assert.Len(t, previous, 2)
		assert.Equal(t, types.StatusPending, previous["t-1"])
		assert.NotContains(t, previous, "t-other-space")
	})

	t.Run("allowed-from filter is passed through", func(t *testing.T) {
		ids := []string{"t-1"}
		mock.ExpectQuery(`UPDATE testimonials t`).
			WithArgs(types.StatusApproved, "s-1", ids, []string{"pending"}).
			WillReturnRows(pgxmock.NewRows([]string{"id", "status"}))

		previous, err := s.UpdateStatusBulk(ctx, "s-1", ids, types.StatusApproved,
			[]types.TestimonialStatus{types.StatusPending})
		require.NoError(t, err)
		assert.Empty(t, previous)
	})

	t.Run("empty id list short-circuits", func(t *testing.T) {
		previous, err := s.UpdateStatusBulk(ctx, "s-1", nil, types.StatusSpam, nil)
		require.NoError(t, err)
		assert.Empty(t, previous)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTestimonialStore_CountByType(t *testing.T) {
	mock := setupMockPool(t)
	s := NewPgTestimonialStore(mock)
	ctx := context.Background()

	rows := pgxmock.NewRows([]string{"type", "count"}).
		AddRow(types.TestimonialTypeVideo, 3).
		AddRow(types.TestimonialTypeText, 7)
	mock.ExpectQuery(`SELECT type, COUNT\(\*\) FROM testimonials`).
		WithArgs("s-1").
		WillReturnRows(rows)

	counts, err := s.CountByType(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 3, counts[types.TestimonialTypeVideo])
	assert.Equal(t, 7, counts[types.TestimonialTypeText])
	assert.NoError(t, mock.ExpectationsWereMet())
}
