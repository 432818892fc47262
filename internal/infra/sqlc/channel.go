package sqlc

import (
	"context"

	"github.com/google/uuid"
)

const createInappNotification = `
INSERT INTO inapp_notifications (id, user_id, kind, title, body, payload, created_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (id) DO NOTHING
`

type CreateInappNotificationParams struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Kind    string
	Title   string
	Body    string
	Payload []byte
}

func (q *Queries) CreateInappNotification(ctx context.Context, db DBTX, arg CreateInappNotificationParams) (int64, error) {
	result, err := db.Exec(ctx, createInappNotification,
		arg.ID, arg.UserID, arg.Kind, arg.Title, arg.Body, arg.Payload,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const createMailMessage = `
INSERT INTO mail_queue (id, recipient, subject, body, status, created_at)
VALUES ($1, $2, $3, $4, 'pending', now())
ON CONFLICT (id) DO NOTHING
`

type CreateMailMessageParams struct {
	ID        uuid.UUID
	Recipient string
	Subject   string
	Body      string
}

func (q *Queries) CreateMailMessage(ctx context.Context, db DBTX, arg CreateMailMessageParams) (int64, error) {
	result, err := db.Exec(ctx, createMailMessage, arg.ID, arg.Recipient, arg.Subject, arg.Body)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getActiveDeviceTokens = `
SELECT id, user_id, token, platform, active, last_seen_at
FROM device_tokens
WHERE user_id = $1 AND active
ORDER BY last_seen_at DESC
LIMIT $2
`

type GetActiveDeviceTokensParams struct {
	UserID uuid.UUID
	Limit  int32
}

func (q *Queries) GetActiveDeviceTokens(ctx context.Context, db DBTX, arg GetActiveDeviceTokensParams) ([]DeviceTokens, error) {
	rows, err := db.Query(ctx, getActiveDeviceTokens, arg.UserID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DeviceTokens
	for rows.Next() {
		var i DeviceTokens
		if err := rows.Scan(&i.ID, &i.UserID, &i.Token, &i.Platform, &i.Active, &i.LastSeenAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deactivateDeviceToken = `
UPDATE device_tokens SET active = false WHERE token = $1
`

func (q *Queries) DeactivateDeviceToken(ctx context.Context, db DBTX, token string) error {
	_, err := db.Exec(ctx, deactivateDeviceToken, token)
	return err
}
