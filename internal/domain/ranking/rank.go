// Package ranking orders a user's due candidates by learning style and
// primary goal.
package ranking

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"github.com/phrazzld/recall-api/internal/domain"
)

// CandidateFactor is how many candidates the selector fetches per returned
// item, giving the comparators room to surface better-suited items.
const CandidateFactor = 2

// Rank reorders candidates for the profile and truncates the result to
// limit. The input slice is not modified. rng is only used for
// HABIT_BUILDING and may be nil otherwise.
func Rank(candidates []*domain.Item, profile *domain.Profile, limit int, rng *rand.Rand) []*domain.Item {
	ranked := slices.Clone(candidates)

	if profile != nil {
		slices.SortStableFunc(ranked, styleComparator(profile.LearningStyle))
		applyGoal(ranked, profile.PrimaryGoal, rng)
	}

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func styleComparator(style domain.LearningStyle) func(a, b *domain.Item) int {
	switch style {
	case domain.LearningStyleVisual:
		return func(a, b *domain.Item) int {
			return compareBool(b.HasImage(), a.HasImage())
		}
	case domain.LearningStyleHandsOn:
		return func(a, b *domain.Item) int {
			return cmp.Compare(a.ReviewCount, b.ReviewCount)
		}
	case domain.LearningStyleTheoretical:
		return func(a, b *domain.Item) int {
			return cmp.Compare(b.ContentLength(), a.ContentLength())
		}
	default:
		return func(a, b *domain.Item) int {
			return cmp.Compare(nextReviewUnix(a), nextReviewUnix(b))
		}
	}
}

func applyGoal(items []*domain.Item, goal domain.PrimaryGoal, rng *rand.Rand) {
	switch goal {
	case domain.PrimaryGoalLearning:
		slices.SortStableFunc(items, func(a, b *domain.Item) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	case domain.PrimaryGoalHabitBuilding:
		Shuffle(items, rng)
	}
}

// Shuffle permutes items uniformly in place (Fisher-Yates).
func Shuffle(items []*domain.Item, rng *rand.Rand) {
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	for i := len(items) - 1; i > 0; i-- {
		j := intN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// nextReviewUnix treats a missing next review time as the epoch, so never
// reviewed items sort first.
func nextReviewUnix(i *domain.Item) int64 {
	if i.NextReviewAt == nil {
		return 0
	}
	return i.NextReviewAt.UnixNano()
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
