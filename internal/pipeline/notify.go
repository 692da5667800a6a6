package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hakim/sahin/internal/models"
)

// NotifyConfig configures where to send completion notifications.
type NotifyConfig struct {
	WebhookURL string // if empty, no notifications
	Timeout    time.Duration
}

// completionPayload is the JSON body posted to the webhook endpoint.
type completionPayload struct {
	Domain           string            `json:"domain"`
	ScanID           string            `json:"scan_id"`
	Risk             models.RiskLevel  `json:"risk"`
	RiskNote         string            `json:"risk_note"`
	Subdomains       int               `json:"subdomains"`
	Live             int               `json:"live"`
	OpenPorts        int               `json:"open_ports"`
	Paths            int               `json:"paths"`
	InterestingPaths int               `json:"interesting_paths"`
	StagesRun        []string          `json:"stages_run"`
	ElapsedSeconds   float64           `json:"elapsed_seconds"`
	Errors           map[string]string `json:"errors"`
}

// SendCompletion posts a JSON summary of report to the webhook URL.
// Returns nil if WebhookURL is empty (no-op). Errors are returned,
// but callers should treat them as warnings.
func (n *NotifyConfig) SendCompletion(ctx context.Context, report *models.Report) error {
	if n == nil || n.WebhookURL == "" {
		return nil
	}

	payload := completionPayload{
		Domain:           report.Domain,
		ScanID:           report.ScanID,
		Risk:             report.Risk,
		RiskNote:         report.RiskNote,
		Subdomains:       len(report.Subdomains),
		Live:             len(report.Live),
		OpenPorts:        report.Ports.TotalOpen(),
		Paths:            len(report.Paths),
		InterestingPaths: report.InterestingCount,
		StagesRun:        report.StagesRun,
		ElapsedSeconds:   report.Elapsed().Seconds(),
		Errors:           report.StageErrors,
	}

	timeout := n.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	resp, err := resty.New().
		SetTimeout(timeout).
		R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(n.WebhookURL)
	if err != nil {
		return fmt.Errorf("notify: posting to %s: %w", n.WebhookURL, err)
	}

	if !resp.IsSuccess() {
		return fmt.Errorf("notify: webhook returned non-2xx status %d", resp.StatusCode())
	}

	return nil
}
