package provider

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"kilnhall/internal/domain/notify"
	"kilnhall/internal/pkg/config"
	"kilnhall/internal/pkg/errs"
)

// Provider codes meaning the device token is gone for good. The dispatcher
// deactivates matching tokens so they are not retried on the next job.
var pushInvalidTokenCodes = map[string]struct{}{
	"UNREGISTERED":      {},
	"INVALID_ARGUMENT":  {},
	"TOKEN_NOT_ACTIVE":  {},
	"MISMATCHED_SENDER": {},
	"REGISTRATION_GONE": {},
}

type PushResult struct {
	TokenHash    string
	OK           bool
	ProviderCode string
}

type PushClient struct {
	cfg    config.PushConfig
	client *http.Client
	pacer  *Pacer
}

func NewPushClient(cfg config.PushConfig) *PushClient {
	return &PushClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		pacer:  NewPacer(cfg.RatePerSec, cfg.Burst),
	}
}

// TokenHash returns the stable fingerprint under which send outcomes are
// logged. Raw tokens never leave this package except to the relay itself.
func TokenHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

type pushSendRequest struct {
	Tokens []string        `json:"tokens"`
	Title  string          `json:"title"`
	Body   string          `json:"body"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type pushSendResponse struct {
	Results []struct {
		Token string `json:"token"`
		OK    bool   `json:"ok"`
		Code  string `json:"code,omitempty"`
	} `json:"results"`
}

// InvalidToken reports whether a per-token provider code means the token
// should be deactivated.
func InvalidToken(providerCode string) bool {
	_, ok := pushInvalidTokenCodes[providerCode]
	return ok
}

// Send pushes one message to a batch of device tokens through the relay.
// Per-token outcomes come back in order; a transport or relay-level failure
// is returned as an error for classification.
func (c *PushClient) Send(ctx context.Context, tokens []string, title, body string, data []byte) ([]PushResult, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, errs.Wrap(err, "push pacer wait interrupted")
	}

	payload, err := json.Marshal(pushSendRequest{
		Tokens: tokens,
		Title:  title,
		Body:   body,
		Data:   data,
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode push request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.RelayURL+"/send", bytes.NewReader(payload))
	if err != nil {
		return nil, errs.Wrap(err, "failed to build push request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.AuthToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errs.Wrap(err, "push request failed")
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errs.Wrap(
			&notify.HTTPStatusError{Status: resp.StatusCode, Body: string(raw)},
			"push relay rejected batch",
		)
	}

	var decoded pushSendResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, errs.Wrap(err, "failed to decode push response")
	}

	results := make([]PushResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		results = append(results, PushResult{
			TokenHash:    TokenHash(r.Token),
			OK:           r.OK,
			ProviderCode: r.Code,
		})
	}
	return results, nil
}
