// Package alert delivers failure notifications to a Slack incoming webhook.
// Alerts fire only for failed runs and only when a webhook URL is configured;
// delivery problems are the caller's to log, never to escalate, since a dead
// webhook must not mask the validation verdict.
package alert

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"dqcheck/internal/validate"
)

const defaultTimeout = 10 * time.Second

// Slack posts run failures to an incoming webhook.
type Slack struct {
	webhookURL string
	repository string
	client     *resty.Client
}

// NewSlack builds an alerter for the webhook. repository names the source
// repo in the message; timeout <= 0 uses the default.
func NewSlack(webhookURL, repository string, timeout time.Duration) *Slack {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(2)
	return &Slack{
		webhookURL: webhookURL,
		repository: repository,
		client:     client,
	}
}

// Enabled reports whether a webhook URL is configured.
func (s *Slack) Enabled() bool { return s.webhookURL != "" }

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Fields []slackField `json:"fields"`
}

type slackMessage struct {
	Attachments []slackAttachment `json:"attachments"`
}

// Notify posts the failed-run summary. Calling a disabled alerter is a
// no-op.
func (s *Slack) Notify(ctx context.Context, rep validate.Report) error {
	if !s.Enabled() {
		return nil
	}

	msg := slackMessage{
		Attachments: []slackAttachment{{
			Color: "#FF0000",
			Title: "❌ Data Quality Check Failed",
			Fields: []slackField{
				{Title: "Failed Expectations", Value: strconv.Itoa(rep.FailedConstraints), Short: true},
				{Title: "Invalid Rows", Value: strconv.Itoa(rep.InvalidRows), Short: true},
				{Title: "Repository", Value: s.repository, Short: false},
			},
		}},
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(msg).
		Post(s.webhookURL)
	if err != nil {
		return fmt.Errorf("post slack webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("slack webhook status %s", resp.Status())
	}
	return nil
}
