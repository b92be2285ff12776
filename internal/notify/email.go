// Package notify sends completion reports for finished scans.
package notify

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/parakeep/parascan/internal/tracker"
)

// Notifier receives the final state of a scan once it reaches a
// terminal status.
type Notifier interface {
	ScanFinished(t *tracker.Task) error
}

type EmailNotifier struct {
	apiKey      string
	fromName    string
	fromAddress string
	recipient   string
}

func NewEmailNotifier(apiKey, fromName, fromAddress, recipient string) *EmailNotifier {
	return &EmailNotifier{
		apiKey:      apiKey,
		fromName:    fromName,
		fromAddress: fromAddress,
		recipient:   recipient,
	}
}

func (n *EmailNotifier) ScanFinished(t *tracker.Task) error {
	subject := fmt.Sprintf("Scan %s: %s", t.Status, t.Directory)
	body := buildReport(t)

	from := mail.NewEmail(n.fromName, n.fromAddress)
	to := mail.NewEmail("", n.recipient)
	email := mail.NewSingleEmail(from, subject, to, body, body)
	client := sendgrid.NewSendClient(n.apiKey)

	response, err := client.Send(email)
	if err != nil {
		return fmt.Errorf("failed to send completion report: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}

	log.Printf("Completion report sent to %s (status: %d)", n.recipient, response.StatusCode)
	return nil
}

func buildReport(t *tracker.Task) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Scan of %s finished with status %s.\n\n", t.Directory, t.Status)
	fmt.Fprintf(&b, "Files scanned: %d\n", t.TotalFiles)
	fmt.Fprintf(&b, "Batches delivered: %d/%d\n", t.ProcessedBatches(), t.TotalBatches)

	if t.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", t.Error)
	}
	if t.CompletedAt != nil {
		duration := t.CompletedAt.Sub(t.CreatedAt).Round(time.Millisecond)
		fmt.Fprintf(&b, "Duration: %s\n", duration)
	}

	return b.String()
}
