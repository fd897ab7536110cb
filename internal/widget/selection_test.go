package widget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustimonials/trustimonials-backend/types"
)

func approvedTestimonial(id string, rating *int, mediaURL string, submittedAt time.Time) types.Testimonial {
	spaceID := "s-1"
	return types.Testimonial{
		ID:          id,
		SpaceID:     &spaceID,
		Type:        types.TestimonialTypeText,
		Content:     "content " + id,
		Rating:      rating,
		MediaURL:    mediaURL,
		Status:      types.StatusApproved,
		SubmittedAt: submittedAt,
	}
}

func intp(v int) *int { return &v }

func TestSelectWall_TruncatesToItemsToShow(t *testing.T) {
	base := time.Now()
	var approved []types.Testimonial
	for i := 0; i < 20; i++ {
		approved = append(approved, approvedTestimonial(
			string(rune('a'+i)), intp(3), "", base.Add(time.Duration(i)*time.Minute)))
	}

	got := SelectWall(&types.WallSettings{ItemsToShow: 5}, approved)
	assert.Len(t, got, 5)

	got = SelectWall(&types.WallSettings{}, approved)
	assert.Len(t, got, DefaultItemsToShow)
}

func TestSelectWall_MinRatingExcludesUnrated(t *testing.T) {
	base := time.Now()
	approved := []types.Testimonial{
		approvedTestimonial("rated-5", intp(5), "", base),
		approvedTestimonial("rated-3", intp(3), "", base),
		approvedTestimonial("unrated", nil, "", base),
	}

	got := SelectWall(&types.WallSettings{
		Filter: &types.TestimonialFilter{MinRating: intp(4)},
	}, approved)

	require.Len(t, got, 1)
	assert.Equal(t, "rated-5", got[0].ID)
}

func TestSelectWall_HasMediaMatchesEitherURL(t *testing.T) {
	base := time.Now()
	withThumb := approvedTestimonial("thumb-only", intp(4), "", base)
	withThumb.ThumbnailURL = "https://cdn.example.com/t.jpg"
	approved := []types.Testimonial{
		approvedTestimonial("with-media", intp(4), "https://cdn.example.com/v.mp4", base),
		withThumb,
		approvedTestimonial("no-media", intp(5), "", base),
	}

	got := SelectWall(&types.WallSettings{
		Filter: &types.TestimonialFilter{HasMedia: true},
	}, approved)

	require.Len(t, got, 2)
	ids := []string{got[0].ID, got[1].ID}
	assert.Contains(t, ids, "with-media")
	assert.Contains(t, ids, "thumb-only")
}

func TestSelectWall_FiltersCombineWithAnd(t *testing.T) {
	base := time.Now()
	approved := []types.Testimonial{
		approvedTestimonial("rated-no-media", intp(5), "", base),
		approvedTestimonial("rated-with-media", intp(5), "https://m", base),
		approvedTestimonial("low-with-media", intp(2), "https://m", base),
	}

	got := SelectWall(&types.WallSettings{
		Filter: &types.TestimonialFilter{MinRating: intp(4), HasMedia: true},
	}, approved)

	require.Len(t, got, 1)
	assert.Equal(t, "rated-with-media", got[0].ID)
}

func TestSelectWall_HighestRatingIsNonIncreasing(t *testing.T) {
	base := time.Now()
	approved := []types.Testimonial{
		approvedTestimonial("a", intp(3), "", base.Add(1*time.Hour)),
		approvedTestimonial("b", intp(5), "", base),
		approvedTestimonial("c", nil, "", base.Add(2*time.Hour)),
		approvedTestimonial("d", intp(5), "", base.Add(3*time.Hour)),
	}

	got := SelectWall(&types.WallSettings{SortOrder: types.SortHighestRating}, approved)
	require.Len(t, got, 4)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, ratingOf(&got[i-1]), ratingOf(&got[i]))
	}
	// Ties break on newer submission time.
	assert.Equal(t, "d", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestSelectWall_DefaultSortIsNewestFirst(t *testing.T) {
	base := time.Now()
	approved := []types.Testimonial{
		approvedTestimonial("old", intp(5), "", base),
		approvedTestimonial("new", intp(1), "", base.Add(time.Hour)),
	}

	got := SelectWall(&types.WallSettings{}, approved)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
}

func TestSelectWall_RandomPreservesMembership(t *testing.T) {
	base := time.Now()
	var approved []types.Testimonial
	for i := 0; i < 10; i++ {
		approved = append(approved, approvedTestimonial(
			string(rune('a'+i)), intp(4), "", base.Add(time.Duration(i)*time.Minute)))
	}

	got := SelectWall(&types.WallSettings{SortOrder: types.SortRandom}, approved)
	require.Len(t, got, 10)
	seen := map[string]bool{}
	for _, t2 := range got {
		seen[t2.ID] = true
	}
	assert.Len(t, seen, 10)
}

func TestSelectSingle(t *testing.T) {
	base := time.Now()
	approved := []types.Testimonial{
		approvedTestimonial("t-1", intp(4), "", base),
		approvedTestimonial("t-2", intp(5), "", base.Add(time.Hour)),
	}

	t.Run("manual-select finds approved match", func(t *testing.T) {
		got := SelectSingle(&types.SingleSettings{
			SelectTestimonial:   types.SelectManual,
			ManualTestimonialID: "t-1",
		}, approved)
		require.NotNil(t, got)
		assert.Equal(t, "t-1", got.ID)
	})

	t.Run("manual-select misses when id not approved", func(t *testing.T) {
		got := SelectSingle(&types.SingleSettings{
			SelectTestimonial:   types.SelectManual,
			ManualTestimonialID: "not-approved",
		}, approved)
		assert.Nil(t, got)
	})

	t.Run("auto-latest picks most recent submission", func(t *testing.T) {
		got := SelectSingle(&types.SingleSettings{SelectTestimonial: types.SelectAutoLatest}, approved)
		require.NotNil(t, got)
		assert.Equal(t, "t-2", got.ID)
	})

	t.Run("auto-random returns a member", func(t *testing.T) {
		got := SelectSingle(&types.SingleSettings{SelectTestimonial: types.SelectAutoRandom}, approved)
		require.NotNil(t, got)
		assert.Contains(t, []string{"t-1", "t-2"}, got.ID)
	})

	t.Run("empty approved set selects nothing", func(t *testing.T) {
		assert.Nil(t, SelectSingle(&types.SingleSettings{SelectTestimonial: types.SelectAutoLatest}, nil))
		assert.Nil(t, SelectSingle(&types.SingleSettings{SelectTestimonial: types.SelectAutoRandom}, nil))
	})
}
