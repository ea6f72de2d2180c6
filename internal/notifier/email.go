package notifier

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/jobsniper-dev/jobsniper/internal/model"
	"github.com/jobsniper-dev/jobsniper/internal/notify"
)

// Ensure EmailNotifier implements model.Notifier.
var _ model.Notifier = (*EmailNotifier)(nil)

// EmailNotifier sends the HTML digest over SMTP with STARTTLS.
type EmailNotifier struct {
	host     string
	port     int
	from     string
	to       string
	password string
	logger   *slog.Logger
}

// NewEmailNotifier returns a notifier that emails the digest of new matches.
func NewEmailNotifier(host string, port int, from, to, password string, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{
		host:     host,
		port:     port,
		from:     from,
		to:       to,
		password: password,
		logger:   logger,
	}
}

// Notify renders the digest and sends it as a single HTML email.
func (n *EmailNotifier) Notify(postings []model.VerifiedPosting) error {
	if len(postings) == 0 {
		return nil
	}

	body, err := notify.RenderDigest(postings)
	if err != nil {
		return err
	}

	msg := n.buildMessage(notify.DigestSubject(len(postings)), body)
	addr := fmt.Sprintf("%s:%d", n.host, n.port)
	auth := smtp.PlainAuth("", n.from, n.password, n.host)

	if err := smtp.SendMail(addr, auth, n.from, []string{n.to}, msg); err != nil {
		return fmt.Errorf("sending digest email: %w", err)
	}

	n.logger.Info("digest email sent", "to", n.to, "postings", len(postings))
	return nil
}

func (n *EmailNotifier) buildMessage(subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.from)
	fmt.Fprintf(&b, "To: %s\r\n", n.to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
