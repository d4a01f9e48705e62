package services

import (
	"errors"
	"fmt"
)

// Виды ошибок движка. Каждая конкретная ошибка ниже оборачивает один из них,
// HTTP-слой сопоставляет коды через errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidState  = errors.New("invalid state")
	ErrConflict      = errors.New("conflict")
	ErrConfiguration = errors.New("configuration error")

	// Ошибка валидации входных данных (400)
	ErrValidationFailed = errors.New("validation failed")
)

// NotFound
var (
	ErrTournamentNotFound   = fmt.Errorf("%w: tournament not found", ErrNotFound)
	ErrMatchNotFound        = fmt.Errorf("%w: match not found", ErrNotFound)
	ErrParticipantNotFound  = fmt.Errorf("%w: participant is not registered in this tournament", ErrNotFound)
	ErrMatchNotInTournament = fmt.Errorf("%w: match does not belong to this tournament", ErrNotFound)
)

// InvalidState
var (
	ErrTournamentInvalidStatus = fmt.Errorf("%w: operation not allowed in the current tournament status", ErrInvalidState)
	ErrRegistrationNotOpen     = fmt.Errorf("%w: tournament registration is not open", ErrInvalidState)
	ErrWithdrawAfterStart      = fmt.Errorf("%w: participants cannot withdraw once the tournament has started", ErrInvalidState)
	ErrSeedingNotAllowed       = fmt.Errorf("%w: seeding is only possible while registration is closed", ErrInvalidState)
	ErrScheduleExists          = fmt.Errorf("%w: schedule already generated, use regenerate", ErrInvalidState)
	ErrNothingToRegenerate     = fmt.Errorf("%w: schedule has no unplayed matches left to regenerate", ErrInvalidState)
	ErrFormatNotSupported      = fmt.Errorf("%w: operation is not supported for this tournament format", ErrInvalidState)
	ErrGroupStageUnfinished    = fmt.Errorf("%w: group stage still has unresolved matches", ErrInvalidState)
	ErrKnockoutExists          = fmt.Errorf("%w: knockout phase already generated", ErrInvalidState)
	ErrTournamentUndecided     = fmt.Errorf("%w: tournament still has unresolved matches", ErrInvalidState)
	ErrMatchNotReady           = fmt.Errorf("%w: match participants are not known yet", ErrInvalidState)
	ErrMatchNotPending         = fmt.Errorf("%w: match is not pending", ErrInvalidState)
	ErrWinnerNotParticipant    = fmt.Errorf("%w: winner not a participant of this match", ErrInvalidState)
	ErrPlayerNotRegistered     = fmt.Errorf("%w: player is not a registered participant of this tournament", ErrInvalidState)
)

// Conflict
var (
	ErrMatchAlreadyResolved = fmt.Errorf("%w: match already completed", ErrConflict)
	ErrTournamentFull       = fmt.Errorf("%w: tournament registration is full", ErrConflict)
	ErrAlreadyRegistered    = fmt.Errorf("%w: participant is already registered for this tournament", ErrConflict)
	ErrConcurrentUpdate     = fmt.Errorf("%w: tournament was changed concurrently, reload and retry", ErrConflict)
)

// Configuration
var (
	ErrNotEnoughParticipants = fmt.Errorf("%w: at least two registered participants are required", ErrConfiguration)
	ErrNotEnoughQualifiers   = fmt.Errorf("%w: group stage produced fewer than two qualifiers", ErrConfiguration)
)

// Validation
var (
	ErrTournamentNameRequired = fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	ErrInvalidFormat          = fmt.Errorf("%w: unknown tournament format", ErrValidationFailed)
	ErrInvalidParticipantID   = fmt.Errorf("%w: participant id must be positive", ErrValidationFailed)
	ErrInvalidScore           = fmt.Errorf("%w: invalid score", ErrValidationFailed)
	ErrInvalidSets            = fmt.Errorf("%w: invalid set detail", ErrValidationFailed)
	ErrSelfMatch              = fmt.Errorf("%w: a participant cannot play against themselves", ErrValidationFailed)
)
