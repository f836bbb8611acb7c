package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/belasaude/clinic-service/internal/config"
	"github.com/belasaude/clinic-service/internal/money"
	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendInstallmentReminder sends a payment reminder for one installment
func (s *Sender) SendInstallmentReminder(to, patientName, procedure string, number, total int, dueDate time.Time, amount decimal.Decimal, isOverdue bool) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	if isOverdue {
		e.Subject = "Parcela em atraso"
	} else {
		e.Subject = "Lembrete de vencimento de parcela"
	}

	body := fmt.Sprintf("Olá, %s!\n\n", patientName)
	if isOverdue {
		body += fmt.Sprintf(
			"A parcela %d/%d do procedimento %q, no valor de R$ %s, venceu em %s.\n"+
				"Por favor, entre em contato com a clínica para regularizar o pagamento.\n",
			number, total, procedure, money.Format(amount), dueDate.Format("02/01/2006"),
		)
	} else {
		body += fmt.Sprintf(
			"A parcela %d/%d do procedimento %q, no valor de R$ %s, vence em %s.\n",
			number, total, procedure, money.Format(amount), dueDate.Format("02/01/2006"),
		)
	}
	body += "\nAtenciosamente,\nClínica Bela Saúde"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
