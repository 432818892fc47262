package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kilnhall/internal/domain/notify"
	"kilnhall/internal/pkg/clock"
	"kilnhall/internal/pkg/config"
	"kilnhall/internal/pkg/errs"

	"github.com/google/uuid"
)

// FollowUpCommands maintains the bounded chain of delay follow-up jobs. One
// chain per delay episode: the first link goes out ~12h after the delay is
// reported, later links ~24h apart, each keyed (reservation, episode,
// ordinal) so replays cannot fork the chain.
type FollowUpCommands interface {
	StartChain(ctx context.Context, reservationID, userID uuid.UUID, episodeID uuid.UUID, reason string) error
	ScheduleNext(ctx context.Context, userID uuid.UUID, p notify.Payload) error
}

type followUpChainerImpl struct {
	enqueuer Enqueuer
	cfg      config.NotifyConfig
	clock    clock.Clock
	logger   *slog.Logger
}

func NewFollowUpChainer(
	enqueuer Enqueuer,
	cfg config.NotifyConfig,
	clock clock.Clock,
	logger *slog.Logger,
) FollowUpCommands {
	return &followUpChainerImpl{
		enqueuer: enqueuer,
		cfg:      cfg,
		clock:    clock,
		logger:   logger,
	}
}

// StartChain enqueues the first follow-up for a fresh delay episode.
// Re-reporting the same episode is a no-op through job dedupe.
func (c *followUpChainerImpl) StartChain(ctx context.Context, reservationID, userID uuid.UUID, episodeID uuid.UUID, reason string) error {
	return c.enqueueLink(ctx, notify.Payload{
		ReservationID:   &reservationID,
		EpisodeID:       &episodeID,
		Reason:          reason,
		FollowUpOrdinal: 1,
	}, userID, c.cfg.FollowUpInitial)
}

// ScheduleNext runs after a follow-up delivered successfully. The chain is
// self-terminating: past the ordinal cap nothing is enqueued, and a link
// whose reservation is no longer delayed gets skipped by the queue engine's
// revalidation rather than here.
func (c *followUpChainerImpl) ScheduleNext(ctx context.Context, userID uuid.UUID, p notify.Payload) error {
	if p.ReservationID == nil || p.EpisodeID == nil {
		return errs.Mark(errs.New("follow-up payload missing reservation or episode"), errs.ErrInvalidPayload)
	}

	next := p.FollowUpOrdinal + 1
	if next > c.cfg.FollowUpMax {
		c.logger.InfoContext(ctx, "follow-up chain reached its cap",
			slog.String("reservation_id", p.ReservationID.String()),
			slog.Int("ordinal", p.FollowUpOrdinal),
		)
		return nil
	}

	p.FollowUpOrdinal = next
	return c.enqueueLink(ctx, p, userID, c.cfg.FollowUpInterval)
}

func (c *followUpChainerImpl) enqueueLink(ctx context.Context, p notify.Payload, userID uuid.UUID, delay time.Duration) error {
	key := followUpDedupeKey(*p.ReservationID, *p.EpisodeID, p.FollowUpOrdinal)

	_, err := c.enqueuer.Enqueue(ctx, notify.Spec{
		Kind:      notify.KindReservationDelayFollowUp,
		DedupeKey: key,
		UserID:    userID,
		Payload:   p,
		BaseTime:  c.clock.Now().Add(delay),
	})
	return err
}

func followUpDedupeKey(reservationID, episodeID uuid.UUID, ordinal int) string {
	return fmt.Sprintf("resv:%s:episode:%s:followup:%d", reservationID, episodeID, ordinal)
}
