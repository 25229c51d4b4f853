// Package notify sends customer-facing SMS through the Twilio REST API.
// Delivery is fire-and-forget from the scheduling engine's point of view:
// failures are logged, never surfaced as booking errors.
package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/belmontfield/dispatch/internal/config"
	"github.com/belmontfield/dispatch/internal/observability"
)

type SMSSender struct {
	accountSID string
	authToken  string
	from       string
	client     *http.Client
	logger     observability.Logger
}

func NewSMSSender(cfg *config.Config, logger observability.Logger) *SMSSender {
	return &SMSSender{
		accountSID: cfg.TwilioAccountSID,
		authToken:  cfg.TwilioAuthToken,
		from:       cfg.TwilioFrom,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

func (s *SMSSender) Configured() bool {
	return s.accountSID != "" && s.authToken != "" && s.from != ""
}

// Send delivers one message. When Twilio is not configured it reports a
// simulated success so the agent flow can proceed in development.
func (s *SMSSender) Send(ctx context.Context, to, body string) (sid string, simulated bool, err error) {
	if !s.Configured() {
		s.logger.WithField("to", to).Debug("twilio not configured, simulating sms send")
		return "", true, nil
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", s.from)
	form.Set("Body", body)

	endpoint := "https://api.twilio.com/2010-04-01/Accounts/" + s.accountSID + "/Messages.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", false, err
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", false, errors.Newf("twilio returned status %d", resp.StatusCode)
	}
	var out struct {
		Sid string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false, err
	}
	return out.Sid, false, nil
}
