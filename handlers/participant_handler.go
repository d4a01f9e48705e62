package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/services"
)

type ParticipantHandler struct {
	participantService services.ParticipantService
}

func NewParticipantHandler(ps services.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{
		participantService: ps,
	}
}

type registerParticipantRequest struct {
	ParticipantID int `json:"participant_id"`
}

// Register godoc
// @Summary Зарегистрировать участника в турнире
// @Tags participants
// @Description Имя и рейтинг берутся из справочника участников.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param input body registerParticipantRequest true "ID участника"
// @Success 201 {object} map[string]interface{} "Участник зарегистрирован"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Failure 409 {object} map[string]string "Регистрация закрыта / Турнир полон / Уже зарегистрирован"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/participants [post]
func (h *ParticipantHandler) Register(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input registerParticipantRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.RegisterParticipant(r.Context(), tournamentID, input.ParticipantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Withdraw godoc
// @Summary Снять участника до старта турнира
// @Tags participants
// @Param tournamentID path int true "Tournament ID"
// @Param participantID path int true "Participant ID"
// @Success 204
// @Failure 404 {object} map[string]string "Участник не зарегистрирован"
// @Failure 409 {object} map[string]string "Турнир уже начался"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/participants/{participantID} [delete]
func (h *ParticipantHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	participantID, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.participantService.WithdrawParticipant(r.Context(), tournamentID, participantID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List godoc
// @Summary Участники турнира в порядке регистрации
// @Tags participants
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param status query string false "registered | withdrawn"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournamentID}/participants [get]
func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var status *models.ParticipantStatus
	if raw := optionalStringQuery(r, "status"); raw != nil {
		s := models.ParticipantStatus(*raw)
		if s != models.ParticipantRegistered && s != models.ParticipantWithdrawn {
			badRequestResponse(w, r, errors.New("invalid status query parameter"))
			return
		}
		status = &s
	}

	participants, err := h.participantService.ListParticipants(r.Context(), tournamentID, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participants": participants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
