// Package trigger notifies an external agent runner when a task is assigned
// to an agent. The notification is best effort: failures are logged and
// never surface to the API caller.
package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Timeout bounds a single trigger call.
const Timeout = 5 * time.Second

// agentPrefix marks an assignee as a runnable agent rather than a person.
const agentPrefix = "Agent:"

// Notifier posts task assignments to the agent runner endpoint.
type Notifier struct {
	url    string
	client *http.Client
	logger zerolog.Logger
}

// New builds a Notifier for the given runner URL. An empty URL disables
// notification entirely.
func New(url string, logger zerolog.Logger) *Notifier {
	return &Notifier{
		url:    url,
		client: &http.Client{Timeout: Timeout},
		logger: logger,
	}
}

// ShouldFire reports whether the assignee names a runnable agent.
func ShouldFire(assignedTo string) bool {
	return strings.HasPrefix(assignedTo, agentPrefix)
}

// Fire posts {"taskId": id} to the runner. It blocks for at most Timeout
// and only logs on failure; callers fire it from a goroutine.
func (n *Notifier) Fire(ctx context.Context, taskID string) {
	if n.url == "" {
		return
	}

	body, err := json.Marshal(map[string]string{"taskId": taskID})
	if err != nil {
		n.logger.Warn().Err(err).Str("task_id", taskID).Msg("trigger payload encode failed")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		n.logger.Warn().Err(err).Str("task_id", taskID).Msg("trigger request build failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn().Err(err).Str("task_id", taskID).Msg("agent trigger failed")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		n.logger.Warn().Int("status", resp.StatusCode).Str("task_id", taskID).Msg("agent trigger rejected")
		return
	}
	n.logger.Debug().Str("task_id", taskID).Msg("agent trigger delivered")
}
