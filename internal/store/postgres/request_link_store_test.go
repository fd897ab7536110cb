package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustimonials/trustimonials-backend/internal/store"
	"github.com/trustimonials/trustimonials-backend/types"
)

func requestLinkRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "owner_id", "slug", "template_id", "expiry_date", "max_uses", "uses", "is_active", "created_at", "updated_at",
	})
}

func TestRequestLinkStore_Create(t *testing.T) {
	mock := setupMockPool(t)
	s := NewPgRequestLinkStore(mock)
	ctx := context.Background()

	t.Run("returns generated id", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`INSERT INTO request_links`).
			WithArgs("u-1", "my-product", (*string)(nil), (*time.Time)(nil), (*int)(nil), 0, true).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow("l-1", now, now))

		link := &types.RequestLink{OwnerID: "u-1", Slug: "my-product", IsActive: true}
		id, err := s.Create(ctx, link)
		require.NoError(t, err)
		assert.Equal(t, "l-1", id)
		assert.Equal(t, "l-1", link.ID)
	})

	t.Run("duplicate slug maps to conflict", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO request_links`).
			WithArgs("u-1", "taken", (*string)(nil), (*time.Time)(nil), (*int)(nil), 0, true).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		_, err := s.Create(ctx, &types.RequestLink{OwnerID: "u-1", Slug: "taken", IsActive: true})
		assert.ErrorIs(t, err, store.ErrConflict)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestLinkStore_GetBySlug(t *testing.T) {
	mock := setupMockPool(t)
	s := NewPgRequestLinkStore(mock)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		now := time.Now()
		maxUses := 10
		rows := requestLinkRows().
			AddRow("l-1", "u-1", "my-product", (*string)(nil), (*time.Time)(nil), &maxUses, 4, true, now, now)
		mock.ExpectQuery(`SELECT (.+) FROM request_links WHERE slug = \$1`).
			WithArgs("my-product").
			WillReturnRows(rows)

		got, err := s.GetBySlug(ctx, "my-product")
		require.NoError(t, err)
		assert.Equal(t, "l-1", got.ID)
		assert.Equal(t, 4, got.Uses)
		require.NotNil(t, got.MaxUses)
		assert.Equal(t, 10, *got.MaxUses)
	})

	t.Run("missing slug maps to sentinel", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM request_links WHERE slug = \$1`).
			WithArgs("nope").
			WillReturnRows(requestLinkRows())

		_, err := s.GetBySlug(ctx, "nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestLinkStore_IncrementUses(t *testing.T) {
	mock := setupMockPool(t)
	s := NewPgRequestLinkStore(mock)
	ctx := context.Background()

	t.Run("bumps counter", func(t *testing.T) {
		mock.ExpectExec(`UPDATE request_links SET uses = uses \+ 1`).
			WithArgs("l-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, s.IncrementUses(ctx, "l-1"))
	})

	t.Run("missing link maps to sentinel", func(t *testing.T) {
		mock.ExpectExec(`UPDATE request_links SET uses = uses \+ 1`).
			WithArgs("missing").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, s.IncrementUses(ctx, "missing"), store.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
