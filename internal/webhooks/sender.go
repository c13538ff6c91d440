// Package webhooks posts domain events to configured HTTP endpoints and keeps
// a ledger of every attempt.
package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/patino82/construction-app/internal/events"
	"github.com/patino82/construction-app/internal/models"
)

// SettingsSource supplies the operator-managed webhook map.
type SettingsSource interface {
	Get(ctx context.Context, forceRefresh bool) (models.AdminSettings, error)
}

// Recorder stores delivery attempts.
type Recorder interface {
	Record(ctx context.Context, d Delivery) error
}

// Sender delivers events to webhook endpoints.
type Sender struct {
	static     map[string]string
	settings   SettingsSource
	ledger     Recorder
	httpClient *http.Client
}

// Option configures a Sender.
type Option func(*Sender)

// WithSettings adds the settings webhook map as a URL source.
func WithSettings(s SettingsSource) Option { return func(w *Sender) { w.settings = s } }

// WithLedger records every attempt.
func WithLedger(r Recorder) Option { return func(w *Sender) { w.ledger = r } }

// WithHTTPClient overrides the default client.
func WithHTTPClient(c *http.Client) Option { return func(w *Sender) { w.httpClient = c } }

// NewSender builds a sender. static maps event name to URL and takes
// precedence over settings.
func NewSender(static map[string]string, opts ...Option) *Sender {
	s := &Sender{
		static:     map[string]string{},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for k, v := range static {
		if v = strings.TrimSpace(v); v != "" {
			s.static[strings.ToUpper(k)] = v
		}
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Resolve returns the endpoint for an event, or "" when none is configured.
func (s *Sender) Resolve(ctx context.Context, event string) string {
	key := strings.ToUpper(event)
	if u := s.static[key]; u != "" {
		return u
	}
	if s.settings == nil {
		return ""
	}
	cfg, err := s.settings.Get(ctx, false)
	if err != nil {
		slog.Warn("Webhook settings unavailable", "event", event, "error", err)
		return ""
	}
	for _, name := range []string{event, event + "_WEBHOOK"} {
		if u := cfg.Webhooks[name]; u != "" {
			return u
		}
		for k, u := range cfg.Webhooks {
			if strings.EqualFold(k, name) && u != "" {
				return u
			}
		}
	}
	return ""
}

// SmokeTargets are the endpoints exercised by Smoke.
var SmokeTargets = []string{"FO_CHECKIN", "COO_DIGEST", "MEAL_PLAN"}

// SmokeResult is the outcome of one smoke delivery.
type SmokeResult struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Status int    `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Smoke posts a dry-run "{NAME}_SMOKE" event to every configured target.
// Unconfigured targets are left out of the result.
func (s *Sender) Smoke(ctx context.Context) []SmokeResult {
	var out []SmokeResult
	for _, name := range SmokeTargets {
		target := s.Resolve(ctx, name)
		if target == "" {
			continue
		}
		e := events.New(name+"_SMOKE", map[string]any{"dryRun": true})
		status, err := s.deliver(ctx, target, e)
		res := SmokeResult{Name: name, OK: err == nil, Status: status}
		if err != nil {
			res.Error = err.Error()
			slog.Error("Smoke webhook failed", "target", name, "error", err)
		}
		out = append(out, res)
	}
	return out
}

// Publish posts e to its endpoint. Events with no endpoint are skipped.
func (s *Sender) Publish(ctx context.Context, e events.Event) error {
	target := s.Resolve(ctx, e.Name)
	if target == "" {
		slog.Debug("No webhook configured", "event", e.Name)
		return nil
	}

	status, err := s.deliver(ctx, target, e)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", e.Name, err)
	}
	slog.Info("Webhook delivered", "event", e.Name, "status", status)
	return nil
}

// deliver posts e to target and records the attempt.
func (s *Sender) deliver(ctx context.Context, target string, e events.Event) (int, error) {
	var status int
	var err error
	if IsSlackWebhook(target) {
		status, err = s.postSlack(ctx, target, e)
	} else {
		status, err = s.postJSON(ctx, target, e)
	}
	s.record(ctx, e, target, status, err)
	return status, err
}

func (s *Sender) record(ctx context.Context, e events.Event, target string, status int, err error) {
	if s.ledger == nil {
		return
	}
	d := Delivery{EventID: e.ID, Event: e.Name, URL: redact(target), StatusCode: status, CreatedAt: time.Now().UTC()}
	if err != nil {
		d.Error = err.Error()
	}
	if rerr := s.ledger.Record(ctx, d); rerr != nil {
		slog.Warn("Failed to record webhook delivery", "event", e.Name, "error", rerr)
	}
}

func (s *Sender) postJSON(ctx context.Context, target string, e events.Event) (int, error) {
	body := make(map[string]any, len(e.Payload)+1)
	maps.Copy(body, e.Payload)
	body["event"] = e.Name
	raw, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(raw))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-ID", e.ID)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, unwrapURLError(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("endpoint returned %s", resp.Status)
	}
	return resp.StatusCode, nil
}

func (s *Sender) postSlack(ctx context.Context, target string, e events.Event) (int, error) {
	err := slack.PostWebhookCustomHTTPContext(ctx, target, s.httpClient, &slack.WebhookMessage{Text: SlackText(e)})
	if err == nil {
		return http.StatusOK, nil
	}
	var statusErr slack.StatusCodeError
	if errors.As(err, &statusErr) {
		return statusErr.Code, err
	}
	var rateErr *slack.RateLimitedError
	if errors.As(err, &rateErr) {
		return http.StatusTooManyRequests, err
	}
	return 0, unwrapURLError(err)
}

// IsSlackWebhook reports whether u is a Slack incoming-webhook URL.
func IsSlackWebhook(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	return parsed.Host == "hooks.slack.com" && strings.HasPrefix(parsed.Path, "/services/")
}

// SlackText renders an event as a one-line Slack message.
func SlackText(e events.Event) string {
	keys := make([]string, 0, len(e.Payload))
	for k := range e.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*", e.Name)
	for _, k := range keys {
		switch v := e.Payload[k].(type) {
		case string, fmt.Stringer, int, int64, float64, bool:
			fmt.Fprintf(&b, " %s=%v", k, v)
		default:
			raw, _ := json.Marshal(v)
			fmt.Fprintf(&b, " %s=%s", k, raw)
		}
	}
	return b.String()
}

// redact drops the path of Slack URLs, which carries the secret.
func redact(u string) string {
	if IsSlackWebhook(u) {
		return "https://hooks.slack.com/services/***"
	}
	return u
}

func unwrapURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s request failed: %w", uerr.Op, uerr.Err)
	}
	return err
}
