package group

import "time"

type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

type Group struct {
	ID          string
	Name        string
	OwnerUserID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Member carries the per-group score accumulator. Score only grows, and only
// through prediction settlement.
type Member struct {
	GroupID  string
	UserID   string
	Role     Role
	Score    int
	JoinedAt time.Time
}

type Standing struct {
	Member Member
	Rank   int
}
