package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/lucaferri/campusgate/internal/infrastructure/mqtt"
)

// Canonical audit actions.
const (
	ActionLogin          = "login"
	ActionFreshLogin     = "fresh_login"
	ActionRefresh        = "refresh"
	ActionLogout         = "logout"
	ActionLoginFailed    = "login_failed"
	ActionUserCreated    = "user_created"
	ActionUsernameChange = "username_changed"
	ActionPasswordChange = "password_changed"
	ActionAccessDenied   = "access_denied"
)

// Publisher is the broker side of the recorder. *mqtt.Client satisfies it;
// tests substitute their own.
type Publisher interface {
	Publish(topic string, payload []byte) error
	IsConnected() bool
}

// Recorder writes audit entries to the repository and mirrors them to the
// broker. publisher may be nil when MQTT is disabled.
type Recorder struct {
	repo      *Repository
	publisher Publisher
	logger    *slog.Logger
}

// NewRecorder wires a recorder.
func NewRecorder(repo *Repository, publisher Publisher, logger *slog.Logger) *Recorder {
	return &Recorder{repo: repo, publisher: publisher, logger: logger}
}

// Record stores an event. Failures are logged, never propagated: an audit
// outage must not take authentication down with it.
func (r *Recorder) Record(ctx context.Context, action, userID, source, details string) {
	entry := &Entry{
		Action:  action,
		UserID:  userID,
		Source:  source,
		Details: details,
	}
	if err := r.repo.Create(ctx, entry); err != nil {
		r.logger.Error("recording audit entry failed", "action", action, "error", err)
		return
	}

	if r.publisher == nil || !r.publisher.IsConnected() {
		return
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		r.logger.Error("encoding audit entry failed", "action", action, "error", err)
		return
	}
	if err := r.publisher.Publish(mqtt.TopicAudit(action), payload); err != nil {
		r.logger.Warn("publishing audit entry failed", "action", action, "error", err)
	}
}

// List exposes stored entries for the audit endpoint.
func (r *Recorder) List(ctx context.Context, filter Filter) ([]*Entry, error) {
	return r.repo.List(ctx, filter)
}
