package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Topic carries every tournament event; the type travels in metadata and in the body.
const Topic = "tournament.events"

const metadataType = "event_type"

// Publisher is what services depend on. Publishing never fails the caller.
type Publisher interface {
	Publish(ctx context.Context, eventType string, tournamentID int, payload interface{})
}

// HandlerFunc handles one decoded event. A returned error is logged and the event is dropped.
type HandlerFunc func(ctx context.Context, evt Event) error

type Bus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
	wg     sync.WaitGroup
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, watermill.NewSlogLogger(logger)),
		logger: logger,
	}
}

func (b *Bus) Publish(ctx context.Context, eventType string, tournamentID int, payload interface{}) {
	evt := Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		TournamentID: tournamentID,
		OccurredAt:   time.Now().UTC(),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			b.logger.ErrorContext(ctx, "failed to marshal event payload", "type", eventType, "tournament_id", tournamentID, "error", err)
			return
		}
		evt.Payload = raw
	}

	body, err := json.Marshal(evt)
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to marshal event", "type", eventType, "error", err)
		return
	}

	msg := message.NewMessage(evt.ID, body)
	msg.Metadata.Set(metadataType, eventType)
	if err := b.pubsub.Publish(Topic, msg); err != nil {
		b.logger.ErrorContext(ctx, "failed to publish event", "type", eventType, "tournament_id", tournamentID, "error", err)
		return
	}
	b.logger.DebugContext(ctx, "event published", "id", evt.ID, "type", eventType, "tournament_id", tournamentID)
}

// Subscribe starts a consumer goroutine named name that runs until ctx is done or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context, name string, handler HandlerFunc) error {
	messages, err := b.pubsub.Subscribe(ctx, Topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", name, err)
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for msg := range messages {
			var evt Event
			if err := json.Unmarshal(msg.Payload, &evt); err != nil {
				b.logger.Error("event subscriber got malformed message", "subscriber", name, "message_id", msg.UUID, "error", err)
				msg.Ack()
				continue
			}
			if err := handler(msg.Context(), evt); err != nil {
				b.logger.Warn("event subscriber failed", "subscriber", name, "type", evt.Type, "tournament_id", evt.TournamentID, "error", err)
			}
			msg.Ack()
		}
		b.logger.Info("event subscriber stopped", "subscriber", name)
	}()
	return nil
}

func (b *Bus) Close() error {
	err := b.pubsub.Close()
	b.wg.Wait()
	return err
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, int, interface{}) {}
