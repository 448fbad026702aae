package postgres

import "time"

type groupTableModel struct {
	ID          int64      `db:"id"`
	PublicID    string     `db:"public_id"`
	Name        string     `db:"name"`
	OwnerUserID string     `db:"owner_user_id"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

type groupMemberTableModel struct {
	ID        int64      `db:"id"`
	GroupID   string     `db:"group_public_id"`
	UserID    string     `db:"user_id"`
	Role      string     `db:"role"`
	Score     int        `db:"score"`
	JoinedAt  time.Time  `db:"joined_at"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type groupInsertModel struct {
	PublicID    string `db:"public_id"`
	Name        string `db:"name"`
	OwnerUserID string `db:"owner_user_id"`
}

type groupMemberInsertModel struct {
	GroupID  string    `db:"group_public_id"`
	UserID   string    `db:"user_id"`
	Role     string    `db:"role"`
	Score    int       `db:"score"`
	JoinedAt time.Time `db:"joined_at"`
}
