package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/tournament-engine/leaderboard"
)

const maxLeaderboardLimit = 100

type LeaderboardHandler struct {
	board leaderboard.Leaderboard
}

func NewLeaderboardHandler(board leaderboard.Leaderboard) *LeaderboardHandler {
	return &LeaderboardHandler{board: board}
}

// TopHandler godoc
// @Summary Рейтинг за все время (чемпион +3, финалист +2, третье место +1)
// @Tags leaderboard
// @Produce json
// @Param limit query int false "По умолчанию 10, максимум 100"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /leaderboard [get]
func (h *LeaderboardHandler) TopHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := optionalIntQuery(r, "limit")
	if err != nil || (limit != nil && (*limit <= 0 || *limit > maxLeaderboardLimit)) {
		badRequestResponse(w, r, errors.New("limit must be between 1 and 100"))
		return
	}
	n := 0
	if limit != nil {
		n = *limit
	}

	entries, err := h.board.Top(r.Context(), n)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
