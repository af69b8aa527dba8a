package explore

import (
	"sort"
)

// maxRankedPaths is the most paths a result will carry.
const maxRankedPaths = 10

// RankPaths filters out paths scoring below the relevance threshold, then
// stably sorts the rest by totalScore x confidence descending and returns
// at most the top ten. The sort is stable so paths with equal scores keep
// their construction order; reproducible tests depend on this.
func RankPaths(paths []Path, relevanceThreshold float64) []Path {
	kept := make([]Path, 0, len(paths))
	for _, p := range paths {
		if p.TotalScore >= relevanceThreshold {
			kept = append(kept, p)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].TotalScore*kept[i].Confidence > kept[j].TotalScore*kept[j].Confidence
	})

	if len(kept) > maxRankedPaths {
		kept = kept[:maxRankedPaths]
	}
	return kept
}
