package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"custodia/internal/domain/user"
	"custodia/internal/domain/visitrequest"
	"custodia/internal/shared/config"
	"custodia/internal/shared/logger"
)

// SMTPDecisionNotifier emails the requesting account when a visit request
// is decided. Delivery is best-effort and never affects the decision.
type SMTPDecisionNotifier struct {
	config *config.SMTPConfig
	dialer *gomail.Dialer
	users  user.Repository
	logger logger.Interface
}

// NewSMTPDecisionNotifier creates a notifier, or nil when no SMTP host is
// configured so callers can skip notification entirely.
func NewSMTPDecisionNotifier(cfg *config.SMTPConfig, users user.Repository, logger logger.Interface) *SMTPDecisionNotifier {
	if cfg.Host == "" {
		logger.Debugw("smtp host not configured, decision notifications disabled")
		return nil
	}
	return &SMTPDecisionNotifier{
		config: cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		users:  users,
		logger: logger,
	}
}

// NotifyDecision emails the account that filed the request.
func (n *SMTPDecisionNotifier) NotifyDecision(ctx context.Context, req *visitrequest.VisitRequest) error {
	creator, err := n.users.GetByID(ctx, req.CreatedByUserID())
	if err != nil {
		return fmt.Errorf("failed to resolve request creator: %w", err)
	}
	if creator == nil {
		return fmt.Errorf("request creator %d no longer exists", req.CreatedByUserID())
	}

	var subject, outcome string
	switch req.Status() {
	case visitrequest.StatusAccepted:
		subject = "Visit Request Approved"
		outcome = fmt.Sprintf("Your visit request for %s on %s has been approved. The entry QR code is now active between %s and %s.",
			req.VisitorName(), req.VisitDate(), req.VisitTimeFrom(), req.VisitTimeTo())
	case visitrequest.StatusRejected:
		subject = "Visit Request Rejected"
		outcome = fmt.Sprintf("Your visit request for %s on %s has been rejected.",
			req.VisitorName(), req.VisitDate())
	default:
		return fmt.Errorf("request %s is not decided", req.ExternalID())
	}

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>%s</h2>
			<p>Hello %s,</p>
			<p>%s</p>
			<p>Request reference: %s</p>
		</body>
		</html>
	`, subject, creator.Name(), outcome, req.ExternalID())

	plainBody := fmt.Sprintf(`Hello %s,

%s

Request reference: %s
`, creator.Name(), outcome, req.ExternalID())

	return n.sendEmail(creator.Email(), subject, htmlBody, plainBody)
}

func (n *SMTPDecisionNotifier) sendEmail(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.config.FromAddress, n.config.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
