package commands

import (
	"context"
	"log/slog"
	"strings"

	"kilnhall/internal/domain/notify"
	"kilnhall/internal/infra/provider"
	"kilnhall/internal/pkg/config"
	"kilnhall/internal/pkg/errs"
)

// Soft-failure markers recorded comma-joined in the job's lastError when the
// run still counts as done.
const (
	WarnSMSHardFail          = "SMS_HARD_FAIL"
	WarnSMSFallbackEmailSent = "SMS_FALLBACK_EMAIL_SENT"
	WarnSMSNoPhone           = "SMS_NO_PHONE"
	WarnEmailNoAddress       = "EMAIL_NO_ADDRESS"
	WarnPushNoTokens         = "PUSH_NO_TOKENS"
)

type DispatchOutcome struct {
	Warnings []string
}

func (o DispatchOutcome) JoinedWarnings() *string {
	if len(o.Warnings) == 0 {
		return nil
	}
	joined := strings.Join(o.Warnings, ",")
	return &joined
}

// Dispatcher sends one job's content over its enabled channels, sequentially:
// in-app, then SMS (with email fallback on a hard provider rejection), then
// email, then push. The first hard error aborts the run; per-channel
// idempotent writes make a later re-dispatch safe.
type Dispatcher interface {
	Dispatch(ctx context.Context, job *notify.Job, channels notify.Channels) (DispatchOutcome, error)
}

type dispatcherImpl struct {
	inappStore   InAppStore
	mailStore    MailStore
	contactStore ContactStore
	tokenStore   DeviceTokenStore
	smsSender    SMSSender
	pushSender   PushSender
	cfg          config.NotifyConfig
	logger       *slog.Logger
}

func NewDispatcher(
	inappStore InAppStore,
	mailStore MailStore,
	contactStore ContactStore,
	tokenStore DeviceTokenStore,
	smsSender SMSSender,
	pushSender PushSender,
	cfg config.NotifyConfig,
	logger *slog.Logger,
) Dispatcher {
	return &dispatcherImpl{
		inappStore:   inappStore,
		mailStore:    mailStore,
		contactStore: contactStore,
		tokenStore:   tokenStore,
		smsSender:    smsSender,
		pushSender:   pushSender,
		cfg:          cfg,
		logger:       logger,
	}
}

func (d *dispatcherImpl) Dispatch(ctx context.Context, job *notify.Job, channels notify.Channels) (DispatchOutcome, error) {
	var outcome DispatchOutcome

	content, err := notify.BuildContent(job.Kind, job.Payload)
	if err != nil {
		return outcome, err
	}

	if channels.InApp {
		if err := d.sendInApp(ctx, job, content); err != nil {
			return outcome, err
		}
	}

	var contact *ContactSnapshot
	if channels.SMS || channels.Email {
		contact, err = d.contactStore.FindContact(ctx, job.UserID)
		if err != nil {
			return outcome, err
		}
	}

	if channels.SMS {
		warnings, err := d.sendSMS(ctx, job, content, contact)
		outcome.Warnings = append(outcome.Warnings, warnings...)
		if err != nil {
			return outcome, err
		}
	}

	if channels.Email {
		warning, err := d.sendEmail(ctx, job, content, contact, "email")
		if warning != "" {
			outcome.Warnings = append(outcome.Warnings, warning)
		}
		if err != nil {
			return outcome, err
		}
	}

	if channels.Push {
		warning, err := d.sendPush(ctx, job, content)
		if warning != "" {
			outcome.Warnings = append(outcome.Warnings, warning)
		}
		if err != nil {
			return outcome, err
		}
	}

	return outcome, nil
}

func (d *dispatcherImpl) sendInApp(ctx context.Context, job *notify.Job, content notify.Content) error {
	id := notify.ChannelDedupeID(job.DedupeKey, "inapp")
	_, err := d.inappStore.CreateIfAbsent(ctx, id, job.UserID, string(job.Kind), content.Title, content.Body, job.Payload)
	if err != nil {
		return errs.Wrap(err, "in-app send failed")
	}
	return nil
}

// sendSMS delivers over SMS, falling back to email when the provider rejects
// the destination number permanently. The fallback mail record carries its
// own dedupe suffix so it never collides with a primary email send.
func (d *dispatcherImpl) sendSMS(ctx context.Context, job *notify.Job, content notify.Content, contact *ContactSnapshot) ([]string, error) {
	if contact == nil || contact.Phone == nil {
		return []string{WarnSMSNoPhone}, nil
	}

	result, err := d.smsSender.Send(ctx, *contact.Phone, content.Body)
	if err != nil {
		return nil, err
	}
	if !result.HardFailed {
		return nil, nil
	}

	d.logger.WarnContext(ctx, "sms hard failure, falling back to email",
		slog.String("job_id", job.ID.String()),
		slog.String("provider_code", result.ProviderCode),
	)

	warnings := []string{WarnSMSHardFail}
	warning, err := d.sendEmail(ctx, job, content, contact, "fallback")
	if err != nil {
		return warnings, err
	}
	if warning != "" {
		return append(warnings, warning), nil
	}
	return append(warnings, WarnSMSFallbackEmailSent), nil
}

func (d *dispatcherImpl) sendEmail(ctx context.Context, job *notify.Job, content notify.Content, contact *ContactSnapshot, suffix string) (string, error) {
	if contact == nil || contact.Email == nil {
		return WarnEmailNoAddress, nil
	}

	id := notify.ChannelDedupeID(job.DedupeKey, suffix)
	_, err := d.mailStore.CreateIfAbsent(ctx, id, *contact.Email, content.Title, content.Body)
	if err != nil {
		return "", errs.Wrap(err, "email send failed")
	}
	return "", nil
}

// sendPush relays to all active device tokens in one call. Per-token
// rejections are side effects (permanently invalid tokens get deactivated),
// never a job failure; only a relay-level error propagates.
func (d *dispatcherImpl) sendPush(ctx context.Context, job *notify.Job, content notify.Content) (string, error) {
	tokens, err := d.tokenStore.ListActive(ctx, job.UserID, d.cfg.MaxDeviceTokens)
	if err != nil {
		return "", err
	}
	if len(tokens) == 0 {
		return WarnPushNoTokens, nil
	}

	results, err := d.pushSender.Send(ctx, tokens, content.Title, content.Body, job.Payload)
	if err != nil {
		return "", err
	}

	for i, result := range results {
		if result.OK || i >= len(tokens) {
			continue
		}
		if provider.InvalidToken(result.ProviderCode) {
			if err := d.tokenStore.Deactivate(ctx, tokens[i]); err != nil {
				d.logger.WarnContext(ctx, "failed to deactivate device token",
					slog.String("token_hash", result.TokenHash),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	return "", nil
}
