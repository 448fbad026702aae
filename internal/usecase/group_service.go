package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/hockey-predictor/internal/domain/group"
	"go.opentelemetry.io/otel/attribute"
)

type Leaderboard struct {
	Group     group.Group
	Standings []group.Standing
}

type GroupService struct {
	groupRepo group.Repository
}

func NewGroupService(groupRepo group.Repository) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

func (s *GroupService) Leaderboard(ctx context.Context, groupID, requesterID string) (Leaderboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.Leaderboard", attribute.String("group_id", groupID))
	defer span.End()

	groupID = strings.TrimSpace(groupID)
	requesterID = strings.TrimSpace(requesterID)
	if groupID == "" {
		return Leaderboard{}, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}
	if requesterID == "" {
		return Leaderboard{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	item, exists, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return Leaderboard{}, fmt.Errorf("get group: %w", err)
	}
	if !exists {
		return Leaderboard{}, fmt.Errorf("%w: group=%s", ErrNotFound, groupID)
	}

	members, err := s.groupRepo.ListMembers(ctx, groupID)
	if err != nil {
		return Leaderboard{}, fmt.Errorf("list group members: %w", err)
	}

	isMember := false
	for _, m := range members {
		if m.UserID == requesterID {
			isMember = true
			break
		}
	}
	if !isMember {
		return Leaderboard{}, fmt.Errorf("%w: not a member of group=%s", ErrForbidden, groupID)
	}

	return Leaderboard{Group: item, Standings: group.RankMembers(members)}, nil
}
