package match

import "time"

// Annotate resolves the status of every match at now.
func Annotate(matches []Match, now time.Time) []Snapshot {
	out := make([]Snapshot, 0, len(matches))
	for _, m := range matches {
		out = append(out, Snapshot{
			Match:  m,
			Status: DeriveStatus(m.PlayedAt, now, m.UpstreamStatus),
		})
	}
	return out
}

// Changed returns the snapshots of next that are new to prev or whose score or
// status differ from the prev record with the same id. Order follows next.
func Changed(prev, next []Snapshot) []Snapshot {
	byID := make(map[int64]Snapshot, len(prev))
	for _, s := range prev {
		byID[s.ID] = s
	}

	out := make([]Snapshot, 0)
	for _, s := range next {
		old, ok := byID[s.ID]
		if !ok || !old.SameState(s) {
			out = append(out, s)
		}
	}
	return out
}

func FindByID(items []Snapshot, id int64) (Snapshot, bool) {
	for _, s := range items {
		if s.ID == id {
			return s, true
		}
	}
	return Snapshot{}, false
}
