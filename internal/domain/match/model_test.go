package match

import (
	"testing"
	"time"
)

func TestDeriveStatus(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		now      time.Time
		explicit string
		want     Status
	}{
		{name: "before kickoff", now: kickoff.Add(-time.Minute), want: StatusScheduled},
		{name: "at kickoff", now: kickoff, want: StatusLive},
		{name: "inside live window", now: kickoff.Add(2*time.Hour + 59*time.Minute), want: StatusLive},
		{name: "window boundary", now: kickoff.Add(LiveWindow), want: StatusFinished},
		{name: "long after", now: kickoff.Add(48 * time.Hour), want: StatusFinished},
		{name: "explicit final wins over clock", now: kickoff.Add(time.Hour), explicit: "FT", want: StatusFinished},
		{name: "explicit live wins over clock", now: kickoff.Add(5 * time.Hour), explicit: "OT", want: StatusLive},
		{name: "unknown explicit falls back", now: kickoff.Add(-time.Hour), explicit: "whatever", want: StatusScheduled},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := DeriveStatus(kickoff, tc.now, tc.explicit); got != tc.want {
				t.Fatalf("unexpected status: got %s want %s", got, tc.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	if got, ok := ParseStatus(" Finished "); !ok || got != StatusFinished {
		t.Fatalf("unexpected parse result: %s %v", got, ok)
	}
	if _, ok := ParseStatus("postponed"); ok {
		t.Fatalf("expected postponed to be rejected")
	}
}
