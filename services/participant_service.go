package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-engine/directory"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

type ParticipantService interface {
	RegisterParticipant(ctx context.Context, tournamentID, participantID int) (*models.Participant, error)
	WithdrawParticipant(ctx context.Context, tournamentID, participantID int) error
	// ListParticipants returns participants in registration order; status nil means all.
	ListParticipants(ctx context.Context, tournamentID int, status *models.ParticipantStatus) ([]*models.Participant, error)
}

type participantService struct {
	tx              repositories.TxManager
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	directory       directory.ParticipantDirectory
	logger          *slog.Logger
}

func NewParticipantService(
	tx repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	dir directory.ParticipantDirectory,
	logger *slog.Logger,
) ParticipantService {
	return &participantService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		directory:       dir,
		logger:          logger,
	}
}

func (s *participantService) RegisterParticipant(ctx context.Context, tournamentID, participantID int) (*models.Participant, error) {
	if participantID <= 0 {
		return nil, ErrInvalidParticipantID
	}
	// Справочник не должен блокировать регистрацию: при сбое возвращает профиль по умолчанию.
	profile := s.directory.Lookup(ctx, participantID)

	p := &models.Participant{
		TournamentID:  tournamentID,
		ParticipantID: participantID,
		Name:          profile.Name,
		Rating:        profile.Rating,
		Status:        models.ParticipantRegistered,
	}
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return mapRepositoryError(err)
		}
		if t.Status != models.StatusRegistrationOpen {
			return ErrRegistrationNotOpen
		}
		if err := s.participantRepo.Add(ctx, exec, p); err != nil {
			return mapRepositoryError(err)
		}
		// Условный инкремент: проверка вместимости и статуса атомарна.
		if err := s.tournamentRepo.IncrementParticipants(ctx, exec, tournamentID); err != nil {
			mapped := mapRepositoryError(err)
			if errors.Is(mapped, ErrTournamentInvalidStatus) {
				return ErrRegistrationNotOpen
			}
			return mapped
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "participant registered", "tournament_id", tournamentID, "participant_id", participantID)
	return p, nil
}

func (s *participantService) WithdrawParticipant(ctx context.Context, tournamentID, participantID int) error {
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return mapRepositoryError(err)
		}
		switch t.Status {
		case models.StatusRegistrationOpen, models.StatusRegistrationClosed:
		case models.StatusInProgress, models.StatusCompleted:
			return ErrWithdrawAfterStart
		default:
			return fmt.Errorf("%w: cannot withdraw while tournament is %s", ErrTournamentInvalidStatus, t.Status)
		}

		if err := s.participantRepo.Withdraw(ctx, exec, tournamentID, participantID); err != nil {
			return mapRepositoryError(err)
		}
		return mapRepositoryError(s.tournamentRepo.DecrementParticipants(ctx, exec, tournamentID))
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "participant withdrawn", "tournament_id", tournamentID, "participant_id", participantID)
	return nil
}

func (s *participantService) ListParticipants(ctx context.Context, tournamentID int, status *models.ParticipantStatus) ([]*models.Participant, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, mapRepositoryError(err)
	}
	participants, err := s.participantRepo.ListByTournament(ctx, nil, tournamentID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of tournament %d: %w", tournamentID, err)
	}
	return participants, nil
}
