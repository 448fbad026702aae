package group

import "sort"

// RankMembers orders members by score and assigns competition ranks
// (equal scores share a rank, the next rank skips).
func RankMembers(members []Member) []Standing {
	sorted := append([]Member(nil), members...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		if !sorted[i].JoinedAt.Equal(sorted[j].JoinedAt) {
			return sorted[i].JoinedAt.Before(sorted[j].JoinedAt)
		}
		return sorted[i].UserID < sorted[j].UserID
	})

	out := make([]Standing, 0, len(sorted))
	for i, m := range sorted {
		rank := i + 1
		if i > 0 && m.Score == sorted[i-1].Score {
			rank = out[i-1].Rank
		}
		out = append(out, Standing{Member: m, Rank: rank})
	}
	return out
}
