package httpapi

import (
	"time"

	"github.com/riskibarqy/hockey-predictor/internal/domain/group"
	"github.com/riskibarqy/hockey-predictor/internal/domain/match"
	"github.com/riskibarqy/hockey-predictor/internal/domain/prediction"
	"github.com/riskibarqy/hockey-predictor/internal/usecase"
)

type upsertPredictionRequest struct {
	GroupID   string `json:"groupId" validate:"required,max=64"`
	MatchID   int64  `json:"matchId" validate:"required,gt=0"`
	HomeScore *int   `json:"homeScore" validate:"required,gte=0,lte=99"`
	AwayScore *int   `json:"awayScore" validate:"required,gte=0,lte=99"`
}

type settleGroupMatchRequest struct {
	MatchID         int64  `json:"matchId" validate:"required,gt=0"`
	GroupID         string `json:"groupId" validate:"required,max=64"`
	ActualHomeScore *int   `json:"actualHomeScore" validate:"required,gte=0"`
	ActualAwayScore *int   `json:"actualAwayScore" validate:"required,gte=0"`
}

type settleMatchJobRequest struct {
	MatchID         int64 `json:"matchId" validate:"required,gt=0"`
	ActualHomeScore *int  `json:"actualHomeScore" validate:"required,gte=0"`
	ActualAwayScore *int  `json:"actualAwayScore" validate:"required,gte=0"`
}

type matchDTO struct {
	ID           int64     `json:"id"`
	HomeTeamID   int64     `json:"home_team_id"`
	AwayTeamID   int64     `json:"away_team_id"`
	HomeScore    int       `json:"home_score"`
	AwayScore    int       `json:"away_score"`
	PlayedAt     time.Time `json:"played_at"`
	TournamentID int64     `json:"tournament_id"`
	Status       string    `json:"status"`
}

type predictionDTO struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	GroupID   string     `json:"groupId"`
	MatchID   int64      `json:"matchId"`
	HomeScore int        `json:"homeScore"`
	AwayScore int        `json:"awayScore"`
	Points    *int       `json:"points"`
	ScoredAt  *time.Time `json:"scoredAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type settlementResultDTO struct {
	PredictionsScored int `json:"predictionsScored"`
	MembersUpdated    int `json:"membersUpdated"`
}

type matchSettlementResultDTO struct {
	MatchID           int64    `json:"matchId"`
	Groups            int      `json:"groups"`
	FailedGroups      []string `json:"failedGroups"`
	PredictionsScored int      `json:"predictionsScored"`
	MembersUpdated    int      `json:"membersUpdated"`
}

type sweepResultDTO struct {
	MatchesChecked    int `json:"matchesChecked"`
	MatchesFinished   int `json:"matchesFinished"`
	FailedMatches     int `json:"failedMatches"`
	PredictionsScored int `json:"predictionsScored"`
	MembersUpdated    int `json:"membersUpdated"`
}

type leaderboardDTO struct {
	GroupID   string               `json:"groupId"`
	GroupName string               `json:"groupName"`
	Standings []leaderboardEntryDTO `json:"standings"`
}

type leaderboardEntryDTO struct {
	Rank     int       `json:"rank"`
	UserID   string    `json:"userId"`
	Role     string    `json:"role"`
	Score    int       `json:"score"`
	JoinedAt time.Time `json:"joinedAt"`
}

type livePointsDTO struct {
	Match  matchDTO             `json:"match"`
	Points []livePointsEntryDTO `json:"points"`
}

type livePointsEntryDTO struct {
	PredictionID string `json:"predictionId"`
	UserID       string `json:"userId"`
	HomeScore    int    `json:"homeScore"`
	AwayScore    int    `json:"awayScore"`
	Points       int    `json:"points"`
}

type relayMatchesPayload struct {
	Type    string     `json:"type"`
	Matches []matchDTO `json:"matches"`
}

type relayErrorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type relayPingPayload struct{}

func matchToDTO(v match.Snapshot) matchDTO {
	return matchDTO{
		ID:           v.ID,
		HomeTeamID:   v.HomeTeamID,
		AwayTeamID:   v.AwayTeamID,
		HomeScore:    v.HomeScore,
		AwayScore:    v.AwayScore,
		PlayedAt:     v.PlayedAt.UTC(),
		TournamentID: v.TournamentID,
		Status:       string(v.Status),
	}
}

func matchesToDTO(items []match.Snapshot) []matchDTO {
	out := make([]matchDTO, 0, len(items))
	for _, item := range items {
		out = append(out, matchToDTO(item))
	}
	return out
}

func predictionToDTO(v prediction.Prediction) predictionDTO {
	return predictionDTO{
		ID:        v.ID,
		UserID:    v.UserID,
		GroupID:   v.GroupID,
		MatchID:   v.MatchID,
		HomeScore: v.PredictedHome,
		AwayScore: v.PredictedAway,
		Points:    v.Points,
		ScoredAt:  v.ScoredAt,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func leaderboardToDTO(v usecase.Leaderboard) leaderboardDTO {
	standings := make([]leaderboardEntryDTO, 0, len(v.Standings))
	for _, s := range v.Standings {
		standings = append(standings, standingToDTO(s))
	}
	return leaderboardDTO{
		GroupID:   v.Group.ID,
		GroupName: v.Group.Name,
		Standings: standings,
	}
}

func standingToDTO(v group.Standing) leaderboardEntryDTO {
	return leaderboardEntryDTO{
		Rank:     v.Rank,
		UserID:   v.Member.UserID,
		Role:     string(v.Member.Role),
		Score:    v.Member.Score,
		JoinedAt: v.Member.JoinedAt,
	}
}

func livePointsToDTO(v usecase.LivePointsPreview) livePointsDTO {
	points := make([]livePointsEntryDTO, 0, len(v.Points))
	for _, item := range v.Points {
		points = append(points, livePointsEntryDTO{
			PredictionID: item.Prediction.ID,
			UserID:       item.Prediction.UserID,
			HomeScore:    item.Prediction.PredictedHome,
			AwayScore:    item.Prediction.PredictedAway,
			Points:       item.Points,
		})
	}
	return livePointsDTO{
		Match:  matchToDTO(v.Match),
		Points: points,
	}
}
