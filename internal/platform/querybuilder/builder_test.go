package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelect_NumbersPlaceholdersInOrder(t *testing.T) {
	query, args, err := Select("*").From("predictions").
		Where(Eq("group_public_id", "grp-1"), Eq("external_match_id", int64(42)), IsNull("points")).
		OrderBy("created_at DESC", "id DESC").
		ToSQL()
	require.NoError(t, err)
	require.Equal(t, "SELECT * FROM predictions WHERE group_public_id = $1 AND external_match_id = $2 AND points IS NULL ORDER BY created_at DESC, id DESC", query)
	require.Equal(t, []any{"grp-1", int64(42)}, args)
}

func TestSelect_RequiresTable(t *testing.T) {
	_, _, err := Select("id").ToSQL()
	require.Error(t, err)
}

func TestUpdate_IncrementAndExpressions(t *testing.T) {
	query, args, err := Update("group_members").
		Increment("score", 5).
		SetExpr("updated_at", "NOW()").
		Where(Eq("group_public_id", "grp-1"), Eq("user_id", "u-1"), IsNotNull("joined_at"), IsNull("deleted_at")).
		ToSQL()
	require.NoError(t, err)
	require.Equal(t, "UPDATE group_members SET score = score + $1, updated_at = NOW() WHERE group_public_id = $2 AND user_id = $3 AND joined_at IS NOT NULL AND deleted_at IS NULL", query)
	require.Equal(t, []any{5, "grp-1", "u-1"}, args)
}

func TestUpdate_SetBindsValue(t *testing.T) {
	query, args, err := Update("predictions").
		Set("points", 3).
		Where(Eq("public_id", "p-1"), IsNull("points")).
		ToSQL()
	require.NoError(t, err)
	require.Equal(t, "UPDATE predictions SET points = $1 WHERE public_id = $2 AND points IS NULL", query)
	require.Equal(t, []any{3, "p-1"}, args)

	_, _, err = Update("predictions").ToSQL()
	require.Error(t, err)
}

func TestInsertModel_ReadsDBTags(t *testing.T) {
	type row struct {
		ID      string `db:"public_id"`
		Skipped string `db:"-"`
		Home    int    `db:"home_score,omitempty"`
		hidden  int
	}

	query, args, err := InsertModel("predictions", &row{ID: "p1", Home: 3, hidden: 1}, "ON CONFLICT DO NOTHING")
	require.NoError(t, err)
	require.Equal(t, "INSERT INTO predictions (public_id, home_score) VALUES ($1, $2) ON CONFLICT DO NOTHING", query)
	require.Equal(t, []any{"p1", 3}, args)

	_, _, err = InsertModel("predictions", struct{ hidden int }{}, "")
	require.Error(t, err)
}
