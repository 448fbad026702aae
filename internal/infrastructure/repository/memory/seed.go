package memory

import (
	"time"

	"github.com/riskibarqy/hockey-predictor/internal/domain/group"
)

const (
	GroupIDFriday = "grp-friday-night-hockey"
	GroupIDOffice = "grp-office-pool"
)

var seedJoinedAt = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func SeedGroups() []group.Group {
	return []group.Group{
		{ID: GroupIDFriday, Name: "Friday Night Hockey", OwnerUserID: "user-ana", CreatedAt: seedJoinedAt, UpdatedAt: seedJoinedAt},
		{ID: GroupIDOffice, Name: "Office Pool", OwnerUserID: "user-ben", CreatedAt: seedJoinedAt, UpdatedAt: seedJoinedAt},
	}
}

func SeedMembers() []group.Member {
	return []group.Member{
		{GroupID: GroupIDFriday, UserID: "user-ana", Role: group.RoleOwner, JoinedAt: seedJoinedAt},
		{GroupID: GroupIDFriday, UserID: "user-ben", Role: group.RoleMember, JoinedAt: seedJoinedAt.Add(time.Hour)},
		{GroupID: GroupIDFriday, UserID: "user-cho", Role: group.RoleMember, JoinedAt: seedJoinedAt.Add(2 * time.Hour)},
		{GroupID: GroupIDOffice, UserID: "user-ben", Role: group.RoleOwner, JoinedAt: seedJoinedAt},
		{GroupID: GroupIDOffice, UserID: "user-ana", Role: group.RoleMember, JoinedAt: seedJoinedAt.Add(time.Hour)},
	}
}
