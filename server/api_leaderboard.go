package server

import (
	"net/http"
	"strconv"
)

const leaderboardPageSize = 20

type LeaderboardItem struct {
	UserID string `json:"user_id"`
	Score int64 `json:"score"`
}

type LeaderboardResponse struct {
	Page int `json:"page"`
	HasNextPage bool `json:"has_next_page"`
	ItemCount int `json:"item_count"`
	Items []LeaderboardItem `json:"items"`
}

//GetLeaderboard serves GET /v1/leaderboard?type=&mode=&page=
func (s *Server) GetLeaderboard(w http.ResponseWriter, r *http.Request) {

	q := r.URL.Query()

	page := 0
	if reqPage, err := strconv.Atoi(q.Get("page")); err == nil && reqPage > 0 {
		page = reqPage
	}

	scores, err := s.leaderboard.GetScores(q.Get("type"), q.Get("mode"), page, leaderboardPageSize)
	if err != nil {
		s.logger.Errorw("Leaderboard could not be read", "error", err)
		writeJSON(w, http.StatusInternalServerError, &Error{Code: ERROR_RUNTIME_EXCEPTION, Message: "leaderboard unavailable"})
		return
	}

	response := &LeaderboardResponse{
		Page: page,
		HasNextPage: len(scores) == leaderboardPageSize,
		Items: make([]LeaderboardItem, 0, len(scores)),
	}
	for _, score := range scores {
		response.Items = append(response.Items, LeaderboardItem{UserID: score.UserID, Score: score.Score})
	}
	response.ItemCount = len(response.Items)

	writeJSON(w, http.StatusOK, response)

}

//ListMatches serves GET /v1/matches?game=&mode=
func (s *Server) ListMatches(w http.ResponseWriter, r *http.Request) {

	q := r.URL.Query()
	game := s.gameHolder.Get(q.Get("game"))
	if game == nil {
		writeJSON(w, http.StatusNotFound, &Error{Code: ERROR_MATCH_NOT_FOUND, Message: "game not found"})
		return
	}

	mode := q.Get("mode")
	writeJSON(w, http.StatusOK, &MatchListResp{Mode: mode, Matches: game.ListMatches(mode)})

}
