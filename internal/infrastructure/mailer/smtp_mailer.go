// Package mailer notificaciones salientes por correo (colaborador
// fire-and-forget: los fallos se registran en el log, nunca se
// reintentan ni se propagan al flujo que los disparó).
package mailer

import (
	"fmt"

	"github.com/tu-usuario/decora-eventos/internal/application/quotes"
	"github.com/tu-usuario/decora-eventos/internal/domain/entity"
	"github.com/tu-usuario/decora-eventos/pkg/config"
	"github.com/tu-usuario/decora-eventos/pkg/logger"
	"github.com/tu-usuario/decora-eventos/pkg/money"
	gomail "gopkg.in/gomail.v2"
)

var _ quotes.Notifier = (*SMTPNotifier)(nil)

// SMTPNotifier envía los correos por SMTP. Con Host vacío queda en modo
// log-only (útil en desarrollo y tests de integración).
type SMTPNotifier struct {
	cfg config.SMTPConfig
	log *logger.Logger
}

// NewSMTPNotifier construye el notificador.
func NewSMTPNotifier(cfg config.SMTPConfig, log *logger.Logger) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, log: log}
}

// QuoteSent avisa al cliente que su cotización está disponible.
func (n *SMTPNotifier) QuoteSent(q *entity.Quote) {
	subject := fmt.Sprintf("Tu cotización %s", q.Number)
	body := fmt.Sprintf(
		"Hola %s,\n\nTu cotización %s por %s ya está disponible.\n",
		q.ClientName, q.Number, money.Format(q.Total),
	)
	n.send(q.ClientEmail, subject, body)
}

// PaymentRequested avisa al cliente que una cuota quedó lista para pagar.
func (n *SMTPNotifier) PaymentRequested(q *entity.Quote, p *entity.QuotePayment) {
	subject := fmt.Sprintf("Pago %d de tu cotización %s", p.PaymentNumber, q.Number)
	body := fmt.Sprintf(
		"Hola %s,\n\nLa cuota %q de tu cotización %s por %s está lista para pagar.\n",
		q.ClientName, p.Label, q.Number, money.Format(p.Amount),
	)
	n.send(q.ClientEmail, subject, body)
}

// PaymentReceived confirma la recepción de un pago. p es nil en el
// camino de anticipo único sobre la cotización.
func (n *SMTPNotifier) PaymentReceived(q *entity.Quote, p *entity.QuotePayment) {
	subject := fmt.Sprintf("Pago recibido — cotización %s", q.Number)
	amount := q.PaidAmount
	if p != nil {
		amount = p.Amount
	}
	body := fmt.Sprintf(
		"Hola %s,\n\nRecibimos tu pago de %s por la cotización %s. ¡Gracias!\n",
		q.ClientName, money.Format(amount), q.Number,
	)
	n.send(q.ClientEmail, subject, body)
}

func (n *SMTPNotifier) send(to, subject, body string) {
	if to == "" {
		return
	}
	if n.cfg.Host == "" {
		n.log.Info().Str("to", to).Str("subject", subject).Msg("correo omitido (SMTP sin configurar)")
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.User, n.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		n.log.Warn().Err(err).Str("to", to).Str("subject", subject).Msg("fallo al enviar correo")
	}
}
