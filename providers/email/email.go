package email

import (
	"fmt"

	"github.com/rabicho/rabicho-server/config"
	mail "github.com/xhit/go-simple-mail/v2"
)

// Mailer sends the purchase confirmation after a successful
// entitlement grant. A Mailer over a nil SMTP client is a no-op.
type Mailer struct {
	client *mail.SMTPClient
	from   string
}

func NewMailer(client *mail.SMTPClient, config *config.Config) *Mailer {
	from := config.EmailConfig.From
	if len(from) == 0 {
		from = config.EmailConfig.SmtpUser
	}

	return &Mailer{client: client, from: from}
}

func (m *Mailer) SendPaymentConfirmation(to, inviteId string, quota int) error {
	if m == nil || m.client == nil {
		return nil
	}

	msg := mail.NewMSG()
	msg.SetFrom(m.from).
		AddTo(to).
		SetSubject("Pagamento confirmado - Rabicho").
		SetBody(mail.TextHTML, fmt.Sprintf(
			"<p>Seu pagamento foi confirmado.</p><p>O convite <b>%s</b> agora aceita até <b>%d</b> respostas.</p>",
			inviteId, quota,
		))

	if msg.Error != nil {
		return msg.Error
	}

	return msg.Send(m.client)
}
