package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/hockey-predictor/internal/domain/match"
	"github.com/stretchr/testify/require"
)

type scriptedSource struct {
	mu    sync.Mutex
	steps []scriptedStep
	calls int
}

type scriptedStep struct {
	matches []match.Match
	err     error
}

func (s *scriptedSource) ListMatches(context.Context) ([]match.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.calls
	if idx >= len(s.steps) {
		idx = len(s.steps) - 1
	}
	s.calls++
	step := s.steps[idx]
	return append([]match.Match(nil), step.matches...), step.err
}

func (s *scriptedSource) GetMatch(context.Context, int64) (match.Match, bool, error) {
	return match.Match{}, false, nil
}

type channelSink struct {
	events chan RelayEvent
	err    error
}

func (s *channelSink) Send(ctx context.Context, event RelayEvent) error {
	if s.err != nil {
		return s.err
	}
	select {
	case s.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func nextEvent(t *testing.T, events <-chan RelayEvent, skipPings bool) RelayEvent {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if skipPings && ev.Kind == RelayEventPing {
				continue
			}
			return ev
		case <-deadline:
			t.Fatalf("timed out waiting for relay event")
			return RelayEvent{}
		}
	}
}

func TestMatchRelay_InitialThenDeltasAndErrors(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 14, 19, 0, 0, 0, time.UTC)
	kickoff := now.Add(-30 * time.Minute)
	future := now.Add(48 * time.Hour)

	source := &scriptedSource{steps: []scriptedStep{
		{matches: []match.Match{{ID: 1, PlayedAt: kickoff}, {ID: 2, PlayedAt: future}}},
		{err: errors.New("GET https://stats.internal.example:8443/v2/matches: status 502")},
		{matches: []match.Match{{ID: 1, HomeScore: 1, PlayedAt: kickoff}, {ID: 2, PlayedAt: future}}},
		{matches: []match.Match{{ID: 1, HomeScore: 1, PlayedAt: kickoff}, {ID: 2, PlayedAt: future}, {ID: 3, PlayedAt: future}}},
	}}

	relay := NewMatchRelay(source, MatchRelayConfig{
		PollInterval:      5 * time.Millisecond,
		KeepAliveInterval: time.Hour,
		FetchTimeout:      time.Second,
	}, nil)
	relay.now = func() time.Time { return now }

	sink := &channelSink{events: make(chan RelayEvent, 16)}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Serve(ctx, sink) }()

	initial := nextEvent(t, sink.events, true)
	require.Equal(t, RelayEventMatches, initial.Kind)
	require.Equal(t, RelayUpdateInitial, initial.Type)
	require.Len(t, initial.Matches, 2)
	require.Equal(t, match.StatusLive, initial.Matches[0].Status)
	require.Equal(t, match.StatusScheduled, initial.Matches[1].Status)

	failure := nextEvent(t, sink.events, true)
	require.Equal(t, RelayEventError, failure.Kind)
	require.Equal(t, "failed to fetch matches", failure.Message)
	require.NotContains(t, failure.Message, "stats.internal.example")

	scoreChange := nextEvent(t, sink.events, true)
	require.Equal(t, RelayUpdateDelta, scoreChange.Type)
	require.Len(t, scoreChange.Matches, 1)
	require.Equal(t, int64(1), scoreChange.Matches[0].ID)
	require.Equal(t, 1, scoreChange.Matches[0].HomeScore)

	newMatch := nextEvent(t, sink.events, true)
	require.Equal(t, RelayUpdateDelta, newMatch.Type)
	require.Len(t, newMatch.Matches, 1)
	require.Equal(t, int64(3), newMatch.Matches[0].ID)

	// The script now repeats its last step, which must produce no further deltas.
	select {
	case ev := <-sink.events:
		t.Fatalf("unexpected event after steady state: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatalf("relay did not stop after cancellation")
	}
}

func TestMatchRelay_SendsHeartbeats(t *testing.T) {
	t.Parallel()

	source := &scriptedSource{steps: []scriptedStep{{matches: []match.Match{}}}}
	relay := NewMatchRelay(source, MatchRelayConfig{
		PollInterval:      time.Hour,
		KeepAliveInterval: 5 * time.Millisecond,
		FetchTimeout:      time.Second,
	}, nil)

	sink := &channelSink{events: make(chan RelayEvent, 16)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = relay.Serve(ctx, sink) }()

	initial := nextEvent(t, sink.events, true)
	require.Equal(t, RelayUpdateInitial, initial.Type)
	require.Empty(t, initial.Matches)

	ping := nextEvent(t, sink.events, false)
	require.Equal(t, RelayEventPing, ping.Kind)
}

func TestMatchRelay_SinkFailureEndsSession(t *testing.T) {
	t.Parallel()

	source := &scriptedSource{steps: []scriptedStep{{matches: []match.Match{{ID: 7}}}}}
	relay := NewMatchRelay(source, MatchRelayConfig{
		PollInterval:      5 * time.Millisecond,
		KeepAliveInterval: 5 * time.Millisecond,
		FetchTimeout:      time.Second,
	}, nil)

	writeErr := errors.New("broken pipe")
	sink := &channelSink{events: make(chan RelayEvent, 1), err: writeErr}

	done := make(chan error, 1)
	go func() { done <- relay.Serve(context.Background(), sink) }()

	select {
	case err := <-done:
		require.ErrorIs(t, err, writeErr)
	case <-time.After(2 * time.Second):
		t.Fatalf("relay kept running after sink failure")
	}
}

func TestMatchRelay_RequiresSink(t *testing.T) {
	t.Parallel()

	relay := NewMatchRelay(&scriptedSource{}, MatchRelayConfig{}, nil)
	require.ErrorIs(t, relay.Serve(context.Background(), nil), ErrInvalidInput)
}

func TestRelayErrorMessage(t *testing.T) {
	t.Parallel()

	require.Equal(t, "upstream fetch timed out", relayErrorMessage(fmt.Errorf("list: %w", context.DeadlineExceeded)))
	require.Equal(t, "match source unavailable", relayErrorMessage(fmt.Errorf("%w: circuit open", ErrDependencyUnavailable)))
	require.Equal(t, "failed to fetch matches", relayErrorMessage(errors.New("dial tcp 10.0.0.7:443: connection refused")))
}
