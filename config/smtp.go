package config

import (
	"crypto/tls"
	"time"

	"github.com/rs/zerolog/log"
	mail "github.com/xhit/go-simple-mail/v2"
)

// ProvideSmtp returns nil when no SMTP host is configured. Payment
// confirmation emails are skipped in that case.
func ProvideSmtp(config *Config) (*mail.SMTPClient, error) {
	if len(config.EmailConfig.SmtpHost) == 0 {
		log.Info().Msg("No smtp host configured, confirmation emails disabled")
		return nil, nil
	}

	server := mail.NewSMTPClient()
	server.Host = config.EmailConfig.SmtpHost
	server.Port = config.EmailConfig.SmtpPort
	server.Username = config.EmailConfig.SmtpUser
	server.Password = config.EmailConfig.SmtpPassword
	server.Encryption = mail.EncryptionSTARTTLS
	server.TLSConfig = &tls.Config{InsecureSkipVerify: config.EmailConfig.SmtpSkipInsecure}
	server.SendTimeout = 10 * time.Second
	server.ConnectTimeout = 10 * time.Second
	server.KeepAlive = true

	smtpClient, err := server.Connect()
	if err != nil {
		return nil, err
	}

	return smtpClient, nil
}
