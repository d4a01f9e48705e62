package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/seeding"
	"github.com/Dosada05/tournament-engine/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	bracketService    services.BracketService
	seedingService    services.SeedingService
}

func NewTournamentHandler(ts services.TournamentService, bs services.BracketService, ss services.SeedingService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
		bracketService:    bs,
		seedingService:    ss,
	}
}

type applySeedingRequest struct {
	Source   seeding.Source `json:"source"`
	LeagueID string         `json:"league_id,omitempty"`
	// Seeds: participant_id -> seed
	Seeds map[int]int `json:"seeds,omitempty"`
}

// CreateHandler godoc
// @Summary Создать турнир
// @Tags tournaments
// @Accept json
// @Produce json
// @Param input body services.CreateTournamentInput true "Название, формат и настройки"
// @Success 201 {object} map[string]interface{} "Турнир в статусе draft"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Security BearerAuth
// @Router /tournaments [post]
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler godoc
// @Summary Турнир с участниками, группами, таблицами и матчами
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /tournaments/{tournamentID} [get]
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler godoc
// @Summary Список турниров
// @Tags tournaments
// @Produce json
// @Param format query string false "single_elimination | round_robin | group_knockout | open_ladder"
// @Param status query string false "Статус турнира"
// @Param limit query int false "По умолчанию 20, максимум 100"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /tournaments [get]
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ListTournamentsFilter
	query := r.URL.Query()

	if formatStr := query.Get("format"); formatStr != "" {
		format := models.TournamentFormat(formatStr)
		filter.Format = &format
	}
	if statusStr := query.Get("status"); statusStr != "" {
		status := models.TournamentStatus(statusStr)
		filter.Status = &status
	}
	limit, err := optionalIntQuery(r, "limit")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if limit != nil {
		filter.Limit = *limit
	}
	offset, err := optionalIntQuery(r, "offset")
	if err != nil || (offset != nil && *offset < 0) {
		badRequestResponse(w, r, errors.New("invalid offset query parameter"))
		return
	}
	if offset != nil {
		filter.Offset = *offset
	}

	tournaments, err := h.tournamentService.ListTournaments(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler godoc
// @Summary Удалить турнир вместе с участниками, матчами и таблицами
// @Tags tournaments
// @Param tournamentID path int true "Tournament ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /tournaments/{tournamentID} [delete]
func (h *TournamentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.DeleteTournament(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// tournamentAction adapts a lifecycle operation that returns the updated tournament.
func (h *TournamentHandler) tournamentAction(action func(r *http.Request, id int) (*models.Tournament, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := getIDFromURL(r, "tournamentID")
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}

		tournament, err := action(r, id)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}

		if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
	}
}

// OpenRegistrationHandler godoc
// @Summary Открыть регистрацию (draft -> registration_open)
// @Tags lifecycle
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Недопустимый переход статуса"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/open [post]
func (h *TournamentHandler) OpenRegistrationHandler(w http.ResponseWriter, r *http.Request) {
	h.tournamentAction(func(r *http.Request, id int) (*models.Tournament, error) {
		return h.tournamentService.OpenRegistration(r.Context(), id)
	})(w, r)
}

// CloseRegistrationHandler godoc
// @Summary Закрыть регистрацию (registration_open -> registration_closed)
// @Tags lifecycle
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Недопустимый переход статуса"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/close [post]
func (h *TournamentHandler) CloseRegistrationHandler(w http.ResponseWriter, r *http.Request) {
	h.tournamentAction(func(r *http.Request, id int) (*models.Tournament, error) {
		return h.tournamentService.CloseRegistration(r.Context(), id)
	})(w, r)
}

// CancelHandler godoc
// @Summary Отменить турнир
// @Tags lifecycle
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Турнир уже завершен или отменен"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/cancel [post]
func (h *TournamentHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	h.tournamentAction(func(r *http.Request, id int) (*models.Tournament, error) {
		return h.tournamentService.CancelTournament(r.Context(), id)
	})(w, r)
}

// FinalizeHandler godoc
// @Summary Завершить турнир вручную (обязательно для open_ladder)
// @Tags lifecycle
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Турнир не запущен или сетка не доиграна"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/finalize [post]
func (h *TournamentHandler) FinalizeHandler(w http.ResponseWriter, r *http.Request) {
	h.tournamentAction(func(r *http.Request, id int) (*models.Tournament, error) {
		return h.tournamentService.FinalizeTournament(r.Context(), id)
	})(w, r)
}

// GenerateScheduleHandler godoc
// @Summary Сгенерировать расписание и запустить турнир
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Регистрация не закрыта или расписание уже есть"
// @Failure 422 {object} map[string]string "Недостаточно участников"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/schedule [post]
func (h *TournamentHandler) GenerateScheduleHandler(w http.ResponseWriter, r *http.Request) {
	h.tournamentAction(func(r *http.Request, id int) (*models.Tournament, error) {
		return h.bracketService.GenerateSchedule(r.Context(), id)
	})(w, r)
}

// RegenerateScheduleHandler godoc
// @Summary Пересоздать расписание (все результаты сбрасываются)
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/schedule/regenerate [post]
func (h *TournamentHandler) RegenerateScheduleHandler(w http.ResponseWriter, r *http.Request) {
	h.tournamentAction(func(r *http.Request, id int) (*models.Tournament, error) {
		return h.bracketService.RegenerateSchedule(r.Context(), id)
	})(w, r)
}

// GenerateKnockoutHandler godoc
// @Summary Сгенерировать плей-офф по итогам групп
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Групповой этап не завершен или плей-офф уже создан"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/knockout [post]
func (h *TournamentHandler) GenerateKnockoutHandler(w http.ResponseWriter, r *http.Request) {
	h.tournamentAction(func(r *http.Request, id int) (*models.Tournament, error) {
		return h.bracketService.GenerateKnockoutFromGroups(r.Context(), id)
	})(w, r)
}

// ApplySeedingHandler godoc
// @Summary Посев участников (random | manual | rating_based)
// @Tags brackets
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param input body applySeedingRequest true "Источник посева"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Некорректный посев"
// @Failure 409 {object} map[string]string "Регистрация не закрыта"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/seeding [post]
func (h *TournamentHandler) ApplySeedingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input applySeedingRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participants, err := h.seedingService.ApplySeeding(r.Context(), id, seeding.Request{
		Source:   input.Source,
		LeagueID: input.LeagueID,
		Seeds:    input.Seeds,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participants": participants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StandingsHandler godoc
// @Summary Общая и групповые таблицы
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournamentID}/standings [get]
func (h *TournamentHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.tournamentService.GetStandings(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
