package match

import (
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusFinished  Status = "finished"
)

// LiveWindow is how long after kickoff a match counts as live when the
// upstream does not report a state.
const LiveWindow = 3 * time.Hour

// Match is the upstream record. UpstreamStatus is empty unless the provider
// reports an explicit state.
type Match struct {
	ID             int64
	HomeTeamID     int64
	AwayTeamID     int64
	HomeScore      int
	AwayScore      int
	PlayedAt       time.Time
	TournamentID   int64
	UpstreamStatus string
}

// Snapshot is a match as seen by the relay at one fetch, with its status resolved.
type Snapshot struct {
	Match
	Status Status
}

// SameState reports whether two snapshots agree on score and status.
func (s Snapshot) SameState(other Snapshot) bool {
	return s.HomeScore == other.HomeScore &&
		s.AwayScore == other.AwayScore &&
		s.Status == other.Status
}

// DeriveStatus resolves the status of a match kicking off at kickoff.
// An explicit upstream status wins; otherwise the elapsed time decides.
func DeriveStatus(kickoff, now time.Time, explicit string) Status {
	if status, ok := ParseUpstreamStatus(explicit); ok {
		return status
	}

	elapsed := now.Sub(kickoff)
	switch {
	case elapsed < 0:
		return StatusScheduled
	case elapsed < LiveWindow:
		return StatusLive
	default:
		return StatusFinished
	}
}

// ParseUpstreamStatus maps provider status codes onto Status.
func ParseUpstreamStatus(value string) (Status, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "SCHEDULED", "NS", "NOT_STARTED", "TBD":
		return StatusScheduled, true
	case "LIVE", "IN_PLAY", "1P", "2P", "3P", "OT", "SO", "INTERMISSION":
		return StatusLive, true
	case "FINISHED", "FT", "AOT", "AP", "FINAL":
		return StatusFinished, true
	default:
		return "", false
	}
}

func ParseStatus(value string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusScheduled:
		return StatusScheduled, true
	case StatusLive:
		return StatusLive, true
	case StatusFinished:
		return StatusFinished, true
	default:
		return "", false
	}
}
