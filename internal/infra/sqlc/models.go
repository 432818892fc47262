package sqlc

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type NotificationJobs struct {
	ID             uuid.UUID
	Kind           string
	DedupeKey      string
	UserID         uuid.UUID
	InappEnabled   bool
	EmailEnabled   bool
	PushEnabled    bool
	SmsEnabled     bool
	Payload        []byte
	Status         string
	RunAfter       pgtype.Timestamptz
	Attempts       int32
	LastError      pgtype.Text
	LastErrorClass pgtype.Text
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

type DeadLetters struct {
	JobID        uuid.UUID
	Kind         string
	DedupeKey    string
	UserID       uuid.UUID
	Payload      []byte
	Attempts     int32
	ErrorClass   string
	ErrorMessage string
	FailedAt     pgtype.Timestamptz
}

type InappNotifications struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Kind      string
	Title     string
	Body      string
	Payload   []byte
	ReadAt    pgtype.Timestamptz
	CreatedAt pgtype.Timestamptz
}

type MailQueue struct {
	ID        uuid.UUID
	Recipient string
	Subject   string
	Body      string
	Status    string
	CreatedAt pgtype.Timestamptz
}

type DeviceTokens struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Token      string
	Platform   string
	Active     bool
	LastSeenAt pgtype.Timestamptz
}

type Users struct {
	ID            uuid.UUID
	Email         pgtype.Text
	EmailVerified bool
	Phone         pgtype.Text
	PhoneVerified bool
	AuthPhone     pgtype.Text
	Role          string
	DisplayName   pgtype.Text
}

type NotificationPreferences struct {
	UserID              uuid.UUID
	Enabled             bool
	InappEnabled        bool
	EmailEnabled        bool
	PushEnabled         bool
	SmsEnabled          bool
	EventToggles        []byte
	ReservationUpdates  bool
	QuietHoursEnabled   bool
	QuietHoursStartMin  int32
	QuietHoursEndMin    int32
	QuietHoursTimezone  string
	FrequencyMode       string
	FrequencyDigestHrs  int32
}

type Reservations struct {
	ID                   uuid.UUID
	UserID               uuid.UUID
	FiringID             pgtype.UUID
	Status               string
	LoadStatus           string
	EstWindowStart       pgtype.Timestamptz
	EstWindowEnd         pgtype.Timestamptz
	EstWindowUpdatedAt   pgtype.Timestamptz
	SlaState             string
	Confidence           pgtype.Text
	DelayEpisodeID       pgtype.UUID
	StorageStatus        string
	PickupReminderCount  int32
	ReminderFailureCount int32
	ReadyForPickupAt     pgtype.Timestamptz
	NoticeHistory        []byte
	PwRequestedStart     pgtype.Timestamptz
	PwRequestedEnd       pgtype.Timestamptz
	PwConfirmedStart     pgtype.Timestamptz
	PwConfirmedEnd       pgtype.Timestamptz
	PwStatus             string
	PwMissedCount        int32
	PwRescheduleCount    int32
	CreatedAt            pgtype.Timestamptz
	UpdatedAt            pgtype.Timestamptz
}

type ReservationAudit struct {
	ID            int64
	ReservationID uuid.UUID
	Event         string
	Detail        []byte
	CreatedAt     pgtype.Timestamptz
}
