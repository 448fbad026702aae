package match

import "context"

// Source reads matches from the upstream provider.
type Source interface {
	ListMatches(ctx context.Context) ([]Match, error)
	GetMatch(ctx context.Context, matchID int64) (Match, bool, error)
}
