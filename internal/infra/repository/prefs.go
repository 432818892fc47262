package repository

import (
	"context"
	"encoding/json"

	"kilnhall/internal/domain/notify"
	"kilnhall/internal/infra"
	"kilnhall/internal/infra/sqlc"
	"kilnhall/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type PreferencesQueries interface {
	GetNotificationPreferences(ctx context.Context, db sqlc.DBTX, userID uuid.UUID) (sqlc.NotificationPreferences, error)
}

type PreferencesRepository struct {
	queries PreferencesQueries
	db      sqlc.DBTX
}

func NewPreferencesRepository(queries *sqlc.Queries, db sqlc.DBTX) *PreferencesRepository {
	return &PreferencesRepository{
		queries: queries,
		db:      db,
	}
}

// Find returns the user's saved preferences, or the defaults when the user
// never saved any.
func (r *PreferencesRepository) Find(ctx context.Context, userID uuid.UUID) (notify.Preferences, error) {
	row, err := r.queries.GetNotificationPreferences(ctx, r.db, userID)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return notify.DefaultPreferences(userID), nil
		}
		return notify.Preferences{}, infra.WrapRepoErr("failed to find notification preferences", err)
	}

	return toPreferencesFromRow(row)
}

func toPreferencesFromRow(row sqlc.NotificationPreferences) (notify.Preferences, error) {
	var toggles map[notify.Kind]bool
	if len(row.EventToggles) > 0 {
		if err := json.Unmarshal(row.EventToggles, &toggles); err != nil {
			return notify.Preferences{}, infra.WrapRepoErr("failed to decode event toggles", err)
		}
	}

	return notify.Preferences{
		UserID:  row.UserID,
		Enabled: row.Enabled,
		Channels: notify.Channels{
			InApp: row.InappEnabled,
			Email: row.EmailEnabled,
			Push:  row.PushEnabled,
			SMS:   row.SmsEnabled,
		},
		EventToggles:       toggles,
		ReservationUpdates: row.ReservationUpdates,
		QuietHours: notify.QuietHours{
			Enabled:     row.QuietHoursEnabled,
			StartMinute: int(row.QuietHoursStartMin),
			EndMinute:   int(row.QuietHoursEndMin),
			Timezone:    row.QuietHoursTimezone,
		},
		Frequency: notify.Frequency{
			Mode:        notify.FrequencyMode(row.FrequencyMode),
			DigestHours: int(row.FrequencyDigestHrs),
		},
	}, nil
}
