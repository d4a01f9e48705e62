package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/models"
)

const archiveContentType = "application/json"

// ArchiveKey is the object key of a tournament's result archive.
func ArchiveKey(tournamentID int) string {
	return fmt.Sprintf("archives/tournaments/%d.json", tournamentID)
}

// SnapshotSource loads the full projection of a tournament.
type SnapshotSource interface {
	GetTournament(ctx context.Context, tournamentID int) (*models.Tournament, error)
}

type Archive struct {
	ArchivedAt time.Time          `json:"archived_at"`
	Tournament *models.Tournament `json:"tournament"`
}

// ResultArchiver stores a JSON snapshot of every completed tournament and removes it
// when the tournament is deleted.
type ResultArchiver struct {
	uploader FileUploader
	source   SnapshotSource
	logger   *slog.Logger
}

func NewResultArchiver(uploader FileUploader, source SnapshotSource, logger *slog.Logger) *ResultArchiver {
	return &ResultArchiver{uploader: uploader, source: source, logger: logger}
}

func (a *ResultArchiver) Handle(ctx context.Context, evt events.Event) error {
	switch evt.Type {
	case events.TypeTournamentCompleted:
		_, err := a.Archive(ctx, evt.TournamentID)
		return err
	case events.TypeTournamentDeleted:
		if err := a.uploader.Delete(ctx, ArchiveKey(evt.TournamentID)); err != nil {
			return fmt.Errorf("remove archive of tournament %d: %w", evt.TournamentID, err)
		}
		return nil
	}
	return nil
}

// Archive uploads the current snapshot of a tournament and returns where it is published.
func (a *ResultArchiver) Archive(ctx context.Context, tournamentID int) (*UploadResult, error) {
	t, err := a.source.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("load tournament %d for archive: %w", tournamentID, err)
	}

	body, err := json.Marshal(Archive{ArchivedAt: time.Now().UTC(), Tournament: t})
	if err != nil {
		return nil, fmt.Errorf("marshal archive of tournament %d: %w", tournamentID, err)
	}

	res, err := a.uploader.Upload(ctx, ArchiveKey(tournamentID), archiveContentType, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "tournament archived", "tournament_id", tournamentID, "location", res.Location)
	return res, nil
}
