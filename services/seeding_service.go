package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/seeding"
)

type SeedingService interface {
	// ApplySeeding assigns seeds 1..N to the registered participants and returns them in seed order.
	ApplySeeding(ctx context.Context, tournamentID int, req seeding.Request) ([]*models.Participant, error)
}

type seedingService struct {
	tx              repositories.TxManager
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	seeder          *seeding.Seeder
	logger          *slog.Logger
}

func NewSeedingService(
	tx repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	seeder *seeding.Seeder,
	logger *slog.Logger,
) SeedingService {
	return &seedingService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		seeder:          seeder,
		logger:          logger,
	}
}

func (s *seedingService) ApplySeeding(ctx context.Context, tournamentID int, req seeding.Request) ([]*models.Participant, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if t.Status != models.StatusRegistrationClosed {
		return nil, ErrSeedingNotAllowed
	}

	registered := models.ParticipantRegistered
	participants, err := s.participantRepo.ListByTournament(ctx, nil, tournamentID, &registered)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of tournament %d: %w", tournamentID, err)
	}

	// Внешний рейтинг запрашивается вне транзакции.
	seeded, err := s.seeder.Seed(ctx, participants, req)
	if err != nil {
		if errors.Is(err, seeding.ErrUnknownSource) || errors.Is(err, seeding.ErrInvalidSeeds) {
			return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
		return nil, fmt.Errorf("failed to seed tournament %d: %w", tournamentID, err)
	}

	seeds := make(map[int]int, len(seeded))
	for _, p := range seeded {
		if p.Seed != nil {
			seeds[p.ParticipantID] = *p.Seed
		}
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		locked, err := s.tournamentRepo.GetForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return mapRepositoryError(err)
		}
		if locked.Status != models.StatusRegistrationClosed {
			return ErrSeedingNotAllowed
		}
		// Состав мог измениться (отказ участника) между чтением и записью.
		if locked.TotalParticipants != len(seeded) {
			return ErrConcurrentUpdate
		}
		return mapRepositoryError(s.participantRepo.UpdateSeeds(ctx, exec, tournamentID, seeds))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "seeding applied", "tournament_id", tournamentID, "source", req.Source, "participants", len(seeded))
	return seeded, nil
}
