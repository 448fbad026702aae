package postgres

import (
	"database/sql"
	"time"
)

type predictionTableModel struct {
	ID        int64         `db:"id"`
	PublicID  string        `db:"public_id"`
	UserID    string        `db:"user_id"`
	GroupID   string        `db:"group_public_id"`
	MatchID   int64         `db:"external_match_id"`
	HomeScore int           `db:"home_score"`
	AwayScore int           `db:"away_score"`
	Points    sql.NullInt64 `db:"points"`
	ScoredAt  *time.Time    `db:"scored_at"`
	CreatedAt time.Time     `db:"created_at"`
	UpdatedAt time.Time     `db:"updated_at"`
	DeletedAt *time.Time    `db:"deleted_at"`
}

type predictionInsertModel struct {
	PublicID  string    `db:"public_id"`
	UserID    string    `db:"user_id"`
	GroupID   string    `db:"group_public_id"`
	MatchID   int64     `db:"external_match_id"`
	HomeScore int       `db:"home_score"`
	AwayScore int       `db:"away_score"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
