package widget

import (
	"math/rand"
	"sort"

	"github.com/trustimonials/trustimonials-backend/types"
)

// DefaultItemsToShow caps wall output when the widget does not set a limit.
const DefaultItemsToShow = 12

// Select produces the ordered testimonial list a widget renders. It is a pure
// function of the widget settings and the approved set, except for the two
// random modes which draw from math/rand at call time. The input must
// already be restricted to the widget's space with status approved.
func Select(w *types.Widget, approved []types.Testimonial) []types.Testimonial {
	switch {
	case w.Wall != nil:
		return SelectWall(w.Wall, approved)
	case w.Single != nil:
		if t := SelectSingle(w.Single, approved); t != nil {
			return []types.Testimonial{*t}
		}
	}
	return nil
}

// SelectWall filters, orders and truncates the approved set for a wall
// widget.
func SelectWall(s *types.WallSettings, approved []types.Testimonial) []types.Testimonial {
	selected := make([]types.Testimonial, 0, len(approved))
	for _, t := range approved {
		if !matchesFilter(s.Filter, &t) {
			continue
		}
		selected = append(selected, t)
	}

	switch s.SortOrder {
	case types.SortHighestRating:
		sort.SliceStable(selected, func(i, j int) bool {
			ri, rj := ratingOf(&selected[i]), ratingOf(&selected[j])
			if ri != rj {
				return ri > rj
			}
			return selected[i].SubmittedAt.After(selected[j].SubmittedAt)
		})
	case types.SortRandom:
		rand.Shuffle(len(selected), func(i, j int) {
			selected[i], selected[j] = selected[j], selected[i]
		})
	default:
		sort.SliceStable(selected, func(i, j int) bool {
			return selected[i].SubmittedAt.After(selected[j].SubmittedAt)
		})
	}

	limit := s.ItemsToShow
	if limit <= 0 {
		limit = DefaultItemsToShow
	}
	if len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}

// SelectSingle picks the one testimonial a single widget features, or nil
// when nothing qualifies.
func SelectSingle(s *types.SingleSettings, approved []types.Testimonial) *types.Testimonial {
	if len(approved) == 0 && s.SelectTestimonial != types.SelectManual {
		return nil
	}

	switch s.SelectTestimonial {
	case types.SelectManual:
		for i := range approved {
			if approved[i].ID == s.ManualTestimonialID {
				return &approved[i]
			}
		}
		return nil
	case types.SelectAutoRandom:
		return &approved[rand.Intn(len(approved))]
	default:
		// auto-latest
		latest := &approved[0]
		for i := 1; i < len(approved); i++ {
			if approved[i].SubmittedAt.After(latest.SubmittedAt) {
				latest = &approved[i]
			}
		}
		return latest
	}
}

// matchesFilter applies the wall filter. minRating and hasMedia combine with
// AND; hasMedia itself is an OR over mediaUrl and thumbnailUrl. A testimonial
// without a rating never satisfies a minRating threshold.
func matchesFilter(f *types.TestimonialFilter, t *types.Testimonial) bool {
	if f == nil {
		return true
	}
	if f.MinRating != nil {
		if t.Rating == nil || *t.Rating < *f.MinRating {
			return false
		}
	}
	if f.HasMedia && !t.HasMedia() {
		return false
	}
	return true
}

func ratingOf(t *types.Testimonial) int {
	if t.Rating == nil {
		return 0
	}
	return *t.Rating
}
