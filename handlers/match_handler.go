package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/tournament-engine/middleware"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

// ListHandler godoc
// @Summary Матчи турнира
// @Tags matches
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param round query int false "Номер раунда"
// @Param group query string false "Метка группы"
// @Param phase query string false "knockout | league | group | ladder"
// @Param status query string false "pending | in_progress | completed | bye | walkover"
// @Param participant_id query int false "Матчи участника"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournamentID}/matches [get]
func (h *MatchHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var filter repositories.MatchFilter
	if filter.Round, err = optionalIntQuery(r, "round"); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if filter.ParticipantID, err = optionalIntQuery(r, "participant_id"); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filter.GroupLabel = optionalStringQuery(r, "group")
	if raw := optionalStringQuery(r, "phase"); raw != nil {
		phase := models.MatchPhase(*raw)
		filter.Phase = &phase
	}
	if raw := optionalStringQuery(r, "status"); raw != nil {
		status := models.MatchStatus(*raw)
		filter.Status = &status
	}

	matches, err := h.matchService.ListMatches(r.Context(), tournamentID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler godoc
// @Summary Матч турнира
// @Tags matches
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournamentID}/matches/{matchID} [get]
func (h *MatchHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, ok := matchIDs(w, r)
	if !ok {
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), tournamentID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartHandler godoc
// @Summary Начать матч (pending -> in_progress)
// @Tags matches
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Матч не готов или уже начат"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/matches/{matchID}/start [post]
func (h *MatchHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, ok := matchIDs(w, r)
	if !ok {
		return
	}

	match, err := h.matchService.StartMatch(r.Context(), tournamentID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitResultHandler godoc
// @Summary Внести результат матча
// @Tags matches
// @Description Результат принимается ровно один раз; победитель продвигается по сетке.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param matchID path int true "Match ID"
// @Param input body services.SubmitResultInput true "Победитель, счет, сеты"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Некорректный счет"
// @Failure 409 {object} map[string]string "Матч уже завершен / участники неизвестны"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/matches/{matchID}/result [post]
func (h *MatchHandler) SubmitResultHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, ok := matchIDs(w, r)
	if !ok {
		return
	}

	var input services.SubmitResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.TournamentID, input.MatchID = tournamentID, matchID

	outcome, err := h.matchService.SubmitResult(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	// Без JWT_SECRET_KEY маршрут открыт и пользователя в контексте нет.
	if userID, err := middleware.GetUserIDFromContext(r.Context()); err == nil {
		slog.InfoContext(r.Context(), "match result reported", "tournament_id", tournamentID, "match_id", matchID, "reported_by", userID)
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": outcome}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReportLadderResultHandler godoc
// @Summary Записать матч открытой лестницы
// @Tags matches
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param input body services.LadderResultInput true "Участники, победитель, счет"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "Турнир не open_ladder или не запущен"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/ladder/results [post]
func (h *MatchHandler) ReportLadderResultHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.LadderResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.TournamentID = tournamentID

	outcome, err := h.matchService.ReportLadderResult(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"result": outcome}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func matchIDs(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	return tournamentID, matchID, true
}
