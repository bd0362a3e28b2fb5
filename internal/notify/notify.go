// Package notify reports tower events to a remote collector over HTTP.
package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotificationFailed reports a non-2xx response or transport failure.
// The returned error wraps the underlying cause.
var ErrNotificationFailed = errors.New("notification failed")

// requestTimeout bounds each notification attempt. There is no retry:
// exactly one POST per Notify call.
const requestTimeout = 5 * time.Second

// Event is the notification payload sent to the collector.
type Event struct {
	Identifier string `json:"identifier"`
	Timestamp  string `json:"timestamp"`
	Message    string `json:"message"`
}

// Result is the two-tier success outcome of a notification: Data holds
// the parsed JSON response when the collector answered with JSON,
// otherwise Data is nil and Text carries the body verbatim. Text is
// always the raw body.
type Result struct {
	Data any
	Text string
}

// Notifier posts events to a single collector endpoint. It holds no
// mutable state, so concurrent Notify calls are safe.
type Notifier struct {
	endpoint string
	client   *http.Client
}

// now is swapped in tests for stable timestamps.
var now = time.Now

// New creates a notifier for endpoint. The URL is stored verbatim; a
// malformed endpoint surfaces as a notification error on the first call.
func New(endpoint string) *Notifier {
	return &Notifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: requestTimeout},
	}
}

// Notify sends one event and blocks until response, transport failure
// or timeout. The timestamp is the current UTC time in ISO-8601 with a
// trailing "Z".
func (n *Notifier) Notify(identifier, message string) (*Result, error) {
	evt := Event{
		Identifier: identifier,
		Timestamp:  now().UTC().Format("2006-01-02T15:04:05.000000") + "Z",
		Message:    message,
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %w", ErrNotificationFailed, err)
	}

	resp, err := n.client.Post(n.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: post %s: %w", ErrNotificationFailed, n.endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrNotificationFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrNotificationFailed, resp.Status)
	}

	result := &Result{Text: string(respBody)}
	var data any
	if err := json.Unmarshal(respBody, &data); err == nil {
		result.Data = data
	}
	return result, nil
}
