package cache

import (
	"context"
	"fmt"
	"strconv"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/hockey-predictor/internal/domain/match"
	basecache "github.com/riskibarqy/hockey-predictor/internal/platform/cache"
)

// MatchSource coalesces upstream reads behind a short-lived byte cache, so
// every relay session and API call within one TTL shares a single fetch.
type MatchSource struct {
	next  match.Source
	cache basecache.BytesStore
}

func NewMatchSource(next match.Source, cache basecache.BytesStore) *MatchSource {
	return &MatchSource{next: next, cache: cache}
}

func (s *MatchSource) ListMatches(ctx context.Context) ([]match.Match, error) {
	raw, err := s.cache.GetOrLoad(ctx, "match:list", func(ctx context.Context) ([]byte, error) {
		items, err := s.next.ListMatches(ctx)
		if err != nil {
			return nil, err
		}
		return sonic.Marshal(items)
	})
	if err != nil {
		return nil, err
	}

	var items []match.Match
	if err := sonic.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode cached matches: %w", err)
	}
	return items, nil
}

func (s *MatchSource) GetMatch(ctx context.Context, matchID int64) (match.Match, bool, error) {
	key := "match:id:" + strconv.FormatInt(matchID, 10)
	raw, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) ([]byte, error) {
		item, exists, err := s.next.GetMatch(ctx, matchID)
		if err != nil {
			return nil, err
		}
		return sonic.Marshal(cachedMatchByID{Value: item, Exists: exists})
	})
	if err != nil {
		return match.Match{}, false, err
	}

	var cached cachedMatchByID
	if err := sonic.Unmarshal(raw, &cached); err != nil {
		return match.Match{}, false, fmt.Errorf("decode cached match: %w", err)
	}
	return cached.Value, cached.Exists, nil
}

type cachedMatchByID struct {
	Value  match.Match `json:"value"`
	Exists bool        `json:"exists"`
}
