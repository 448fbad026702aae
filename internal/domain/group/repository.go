package group

import "context"

type Repository interface {
	GetByID(ctx context.Context, groupID string) (Group, bool, error)
	GetMember(ctx context.Context, groupID, userID string) (Member, bool, error)
	ListMembers(ctx context.Context, groupID string) ([]Member, error)
}
