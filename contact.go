package folio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// ContactSuccessMessage is shown once a message was accepted.
const ContactSuccessMessage = "Thank you, your message has been submitted."

const (
	maxMessageLength = 5000
	contactTimeout   = 10 * time.Second
	maxErrorBody     = 64 << 10
)

// ErrContactDisabled is returned when no contact endpoint is configured.
var ErrContactDisabled = errors.New("contact form is not configured")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ContactMessage is a visitor's contact form submission.
type ContactMessage struct {
	Email   string `json:"email" form:"email"`
	Message string `json:"message" form:"message"`
}

// Normalize trims surrounding whitespace from every field.
func (m *ContactMessage) Normalize() {
	m.Email = strings.TrimSpace(m.Email)
	m.Message = strings.TrimSpace(m.Message)
}

// Validate checks the message before it is forwarded.
func (m ContactMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Email,
			validation.Required.Error("please enter your email address"),
			validation.Match(emailPattern).Error("please enter a valid email address"),
		),
		validation.Field(&m.Message,
			validation.Required.Error("please enter a message"),
			validation.RuneLength(1, maxMessageLength),
		),
	)
}

// ContactError is a rejection from the form endpoint.
type ContactError struct {
	Status int
	Reason string
}

func (e *ContactError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("contact endpoint returned %d", e.Status)
	}
	return e.Reason
}

// HTTPDoer is the part of *http.Client the forwarder needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ContactForwarder posts contact messages to a formspree-compatible endpoint.
// Failed submissions are not retried.
type ContactForwarder struct {
	Endpoint string
	Client   HTTPDoer
}

// NewContactForwarder returns a forwarder for endpoint. A nil client uses an
// http.Client with a short timeout.
func NewContactForwarder(endpoint string, client HTTPDoer) *ContactForwarder {
	if client == nil {
		client = &http.Client{Timeout: contactTimeout}
	}
	return &ContactForwarder{Endpoint: endpoint, Client: client}
}

// Enabled reports whether an endpoint is configured.
func (f *ContactForwarder) Enabled() bool {
	return f != nil && f.Endpoint != ""
}

// Send forwards msg and returns the submission id sent with it.
func (f *ContactForwarder) Send(ctx context.Context, msg ContactMessage) (string, error) {
	if !f.Enabled() {
		return "", ErrContactDisabled
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("encode contact message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build contact request: %w", err)
	}
	id := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", id)

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send contact message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return id, nil
	}
	return "", &ContactError{Status: resp.StatusCode, Reason: errorReason(resp.Body)}
}

// errorReason extracts a human readable reason from a formspree-style error
// body: {"error": "..."} or {"errors": [{"message": "..."}]}.
func errorReason(r io.Reader) string {
	var body struct {
		Error  string `json:"error"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(io.LimitReader(r, maxErrorBody)).Decode(&body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	msgs := make([]string, 0, len(body.Errors))
	for _, e := range body.Errors {
		if e.Message != "" {
			msgs = append(msgs, e.Message)
		}
	}
	return strings.Join(msgs, "; ")
}

// ValidationMessage flattens a validation error into one sentence for the
// form.
func ValidationMessage(err error) string {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err.Error()
	}
	for _, field := range []string{"email", "message"} {
		if e, ok := errs[field]; ok && e != nil {
			return strings.ToUpper(e.Error()[:1]) + e.Error()[1:] + "."
		}
	}
	return err.Error()
}
