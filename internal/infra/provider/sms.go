package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"kilnhall/internal/domain/notify"
	"kilnhall/internal/pkg/config"
	"kilnhall/internal/pkg/errs"
)

// Provider error codes that mean the destination number itself is bad.
// These never succeed on retry, so the dispatcher falls back to email
// instead of burning attempts.
var smsHardFailCodes = map[string]struct{}{
	"21211": {}, // invalid 'To' number
	"21408": {}, // region not enabled
	"21610": {}, // recipient unsubscribed
	"21614": {}, // not a mobile number
}

type SMSResult struct {
	// HardFailed means the provider rejected the destination permanently.
	HardFailed   bool
	ProviderCode string
}

type SMSClient struct {
	cfg    config.SMSConfig
	client *http.Client
	pacer  *Pacer
}

func NewSMSClient(cfg config.SMSConfig) *SMSClient {
	return &SMSClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		pacer:  NewPacer(cfg.RatePerSec, cfg.Burst),
	}
}

type smsErrorBody struct {
	Code    json.Number `json:"code"`
	Message string      `json:"message"`
}

// Send delivers one SMS. A hard provider rejection of the destination is
// reported through SMSResult with a nil error; every other failure is
// returned as an error carrying enough detail for classification.
func (c *SMSClient) Send(ctx context.Context, to, body string) (SMSResult, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return SMSResult{}, errs.Wrap(err, "sms pacer wait interrupted")
	}

	form := url.Values{}
	form.Set("From", c.cfg.From)
	form.Set("To", to)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/messages", strings.NewReader(form.Encode()))
	if err != nil {
		return SMSResult{}, errs.Wrap(err, "failed to build sms request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.cfg.AuthToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return SMSResult{}, errs.Wrap(err, "sms request failed")
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return SMSResult{}, nil
	}

	if resp.StatusCode == http.StatusBadRequest {
		var errBody smsErrorBody
		if decodeErr := json.Unmarshal(bytes.TrimSpace(raw), &errBody); decodeErr == nil {
			if _, hard := smsHardFailCodes[errBody.Code.String()]; hard {
				return SMSResult{HardFailed: true, ProviderCode: errBody.Code.String()}, nil
			}
		}
	}

	return SMSResult{}, errs.Wrap(
		&notify.HTTPStatusError{Status: resp.StatusCode, Body: string(raw)},
		"sms provider rejected message",
	)
}
