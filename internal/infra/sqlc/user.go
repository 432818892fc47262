package sqlc

import (
	"context"

	"github.com/google/uuid"
)

const getUserContact = `
SELECT id, email, email_verified, phone, phone_verified, auth_phone, role, display_name
FROM users
WHERE id = $1
`

func (q *Queries) GetUserContact(ctx context.Context, db DBTX, id uuid.UUID) (Users, error) {
	row := db.QueryRow(ctx, getUserContact, id)
	var i Users
	err := row.Scan(
		&i.ID, &i.Email, &i.EmailVerified, &i.Phone, &i.PhoneVerified,
		&i.AuthPhone, &i.Role, &i.DisplayName,
	)
	return i, err
}

const getNotificationPreferences = `
SELECT user_id, enabled,
       inapp_enabled, email_enabled, push_enabled, sms_enabled,
       event_toggles, reservation_updates,
       quiet_hours_enabled, quiet_hours_start_min, quiet_hours_end_min, quiet_hours_timezone,
       frequency_mode, frequency_digest_hrs
FROM notification_preferences
WHERE user_id = $1
`

func (q *Queries) GetNotificationPreferences(ctx context.Context, db DBTX, userID uuid.UUID) (NotificationPreferences, error) {
	row := db.QueryRow(ctx, getNotificationPreferences, userID)
	var i NotificationPreferences
	err := row.Scan(
		&i.UserID, &i.Enabled,
		&i.InappEnabled, &i.EmailEnabled, &i.PushEnabled, &i.SmsEnabled,
		&i.EventToggles, &i.ReservationUpdates,
		&i.QuietHoursEnabled, &i.QuietHoursStartMin, &i.QuietHoursEndMin, &i.QuietHoursTimezone,
		&i.FrequencyMode, &i.FrequencyDigestHrs,
	)
	return i, err
}
