package repository

import (
	"context"
	"encoding/json"
	"time"

	"kilnhall/internal/domain/reservation"
	"kilnhall/internal/infra"
	"kilnhall/internal/infra/sqlc"
	"kilnhall/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type ReservationQueries interface {
	GetReservation(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Reservations, error)
	ListSweepReservations(ctx context.Context, db sqlc.DBTX) ([]sqlc.Reservations, error)
	ApplyStorageTransition(ctx context.Context, db sqlc.DBTX, arg sqlc.ApplyStorageTransitionParams) error
	ResetReservationStorage(ctx context.Context, db sqlc.DBTX, arg sqlc.ResetReservationStorageParams) error
	IncrementReminderFailure(ctx context.Context, db sqlc.DBTX, id uuid.UUID) error
	AppendNoticeHistory(ctx context.Context, db sqlc.DBTX, arg sqlc.AppendNoticeHistoryParams) error
	CreateReservationAudit(ctx context.Context, db sqlc.DBTX, arg sqlc.CreateReservationAuditParams) error
	PruneReservationAudit(ctx context.Context, db sqlc.DBTX, arg sqlc.PruneReservationAuditParams) error
}

type ReservationRepository struct {
	queries ReservationQueries
	db      sqlc.DBTX
}

func NewReservationRepository(queries *sqlc.Queries, db sqlc.DBTX) *ReservationRepository {
	return &ReservationRepository{
		queries: queries,
		db:      db,
	}
}

func (r *ReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Snapshot, error) {
	row, err := r.queries.GetReservation(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation", err)
	}

	return toSnapshotFromRow(row)
}

func (r *ReservationRepository) ListSweepCandidates(ctx context.Context) ([]*reservation.Snapshot, error) {
	rows, err := r.queries.ListSweepReservations(ctx, r.db)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list sweep reservations", err)
	}

	result := make([]*reservation.Snapshot, 0, len(rows))
	for _, row := range rows {
		snap, err := toSnapshotFromRow(row)
		if err != nil {
			return nil, err
		}
		result = append(result, snap)
	}

	return result, nil
}

// ApplyStorageTransition persists one sweep decision: the new storage
// status, counters, the (possibly backfilled) anchor and the appended
// notice history.
func (r *ReservationRepository) ApplyStorageTransition(ctx context.Context, snap *reservation.Snapshot) error {
	history, err := json.Marshal(snap.NoticeHistory)
	if err != nil {
		return infra.WrapRepoErr("failed to encode notice history", err)
	}

	params := sqlc.ApplyStorageTransitionParams{
		ID:                  snap.ID,
		StorageStatus:       string(snap.StorageStatus),
		PickupReminderCount: snap.PickupReminderCount,
		ReadyForPickupAt:    pgconv.TimePtrToPgtype(snap.ReadyForPickupAt),
		NoticeHistory:       history,
		PwStatus:            string(snap.Pickup.Status),
		PwMissedCount:       snap.Pickup.MissedCount,
	}

	if err := r.queries.ApplyStorageTransition(ctx, r.db, params); err != nil {
		return infra.WrapRepoErr("failed to apply storage transition", err)
	}

	return nil
}

// ResetOnPickupReady zeroes the storage-policy state when a reservation
// becomes pickup-ready, leaving a single pickup_ready notice.
func (r *ReservationRepository) ResetOnPickupReady(ctx context.Context, id uuid.UUID, readyAt time.Time) error {
	history, err := json.Marshal([]reservation.Notice{{At: readyAt, Event: "pickup_ready"}})
	if err != nil {
		return infra.WrapRepoErr("failed to encode notice history", err)
	}

	params := sqlc.ResetReservationStorageParams{
		ID:               id,
		ReadyForPickupAt: pgconv.TimeToPgtype(readyAt),
		NoticeHistory:    history,
	}

	if err := r.queries.ResetReservationStorage(ctx, r.db, params); err != nil {
		return infra.WrapRepoErr("failed to reset reservation storage", err)
	}

	return nil
}

func (r *ReservationRepository) RecordReminderFailure(ctx context.Context, id uuid.UUID) error {
	if err := r.queries.IncrementReminderFailure(ctx, r.db, id); err != nil {
		return infra.WrapRepoErr("failed to record reminder failure", err)
	}

	return nil
}

// AppendNotice persists one appended notice entry on the snapshot's history.
func (r *ReservationRepository) AppendNotice(ctx context.Context, snap *reservation.Snapshot, notice reservation.Notice) error {
	snap.NoticeHistory = reservation.AppendNotice(snap.NoticeHistory, notice)

	history, err := json.Marshal(snap.NoticeHistory)
	if err != nil {
		return infra.WrapRepoErr("failed to encode notice history", err)
	}

	params := sqlc.AppendNoticeHistoryParams{
		ID:            snap.ID,
		NoticeHistory: history,
	}

	if err := r.queries.AppendNoticeHistory(ctx, r.db, params); err != nil {
		return infra.WrapRepoErr("failed to append notice history", err)
	}

	return nil
}

// AppendAudit writes an audit entry and prunes the per-reservation trail to
// the bounded size.
func (r *ReservationRepository) AppendAudit(ctx context.Context, id uuid.UUID, event string, detail any) error {
	var detailJSON []byte
	if detail != nil {
		var err error
		detailJSON, err = json.Marshal(detail)
		if err != nil {
			return infra.WrapRepoErr("failed to encode audit detail", err)
		}
	}

	err := r.queries.CreateReservationAudit(ctx, r.db, sqlc.CreateReservationAuditParams{
		ReservationID: id,
		Event:         event,
		Detail:        detailJSON,
	})
	if err != nil {
		return infra.WrapRepoErr("failed to create reservation audit", err)
	}

	err = r.queries.PruneReservationAudit(ctx, r.db, sqlc.PruneReservationAuditParams{
		ReservationID: id,
		Keep:          reservation.MaxNoticeHistory,
	})
	if err != nil {
		return infra.WrapRepoErr("failed to prune reservation audit", err)
	}

	return nil
}

func toSnapshotFromRow(row sqlc.Reservations) (*reservation.Snapshot, error) {
	var history []reservation.Notice
	if len(row.NoticeHistory) > 0 {
		if err := json.Unmarshal(row.NoticeHistory, &history); err != nil {
			return nil, infra.WrapRepoErr("failed to decode notice history", err)
		}
	}

	return &reservation.Snapshot{
		ID:         row.ID,
		UserID:     row.UserID,
		FiringID:   pgconv.UUIDPtrFromPgtype(row.FiringID),
		Status:     reservation.Status(row.Status),
		LoadStatus: reservation.LoadStatus(row.LoadStatus),
		Estimated: reservation.EstimatedWindow{
			Start:      pgconv.TimePtrFromPgtype(row.EstWindowStart),
			End:        pgconv.TimePtrFromPgtype(row.EstWindowEnd),
			UpdatedAt:  pgconv.TimePtrFromPgtype(row.EstWindowUpdatedAt),
			SLAState:   reservation.SLAState(row.SlaState),
			Confidence: stringOrEmpty(row.Confidence.String, row.Confidence.Valid),
		},
		DelayEpisodeID:       pgconv.UUIDPtrFromPgtype(row.DelayEpisodeID),
		StorageStatus:        reservation.StorageStatus(row.StorageStatus),
		PickupReminderCount:  row.PickupReminderCount,
		ReminderFailureCount: row.ReminderFailureCount,
		ReadyForPickupAt:     pgconv.TimePtrFromPgtype(row.ReadyForPickupAt),
		NoticeHistory:        history,
		Pickup: reservation.PickupWindow{
			RequestedStart:  pgconv.TimePtrFromPgtype(row.PwRequestedStart),
			RequestedEnd:    pgconv.TimePtrFromPgtype(row.PwRequestedEnd),
			ConfirmedStart:  pgconv.TimePtrFromPgtype(row.PwConfirmedStart),
			ConfirmedEnd:    pgconv.TimePtrFromPgtype(row.PwConfirmedEnd),
			Status:          reservation.PickupWindowStatus(row.PwStatus),
			MissedCount:     row.PwMissedCount,
			RescheduleCount: row.PwRescheduleCount,
		},
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}, nil
}

func stringOrEmpty(s string, valid bool) string {
	if !valid {
		return ""
	}
	return s
}
