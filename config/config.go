package config

import (
	"crypto/rsa"

	"github.com/caarlos0/env/v6"
	"github.com/rabicho/rabicho-server/utils"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port           string `env:"LISTEN_ADDR" envDefault:":3000"`
	Timeout        uint64 `env:"TIMEOUT" envDefault:"10"`
	ReadBufferSize int    `env:"READ_BUFFER_SIZE" envDefault:"4096"`
	BodyLimit      int    `env:"BODY_LIMIT" envDefault:"1048576"`
	AppName        string `env:"APP_NAME" envDefault:"Rabicho"`
	IsProduction   bool   `env:"PRODUCTION"`
	Dsn            string `env:"DSN"`
	RedisUrl       string `env:"REDIS_URL"`
	PublicUrl      string `env:"PUBLIC_URL" envDefault:"http://localhost:3000"`
	Currency       string `env:"CURRENCY" envDefault:"BRL"`
	JwtPublicKey   string `env:"JWT_PUBLIC_KEY"`

	JwtParsedPublicKey *rsa.PublicKey

	MercadoPago MercadoPagoConfig `envPrefix:"MP_"`
	EmailConfig EmailConfig       `envPrefix:"EMAIL_"`
}

type MercadoPagoConfig struct {
	BaseUrl       string `env:"BASE_URL" envDefault:"https://api.mercadopago.com"`
	AccessToken   string `env:"ACCESS_TOKEN"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	Timeout       uint64 `env:"TIMEOUT" envDefault:"10"`
}

type EmailConfig struct {
	From             string `env:"FROM"`
	SmtpHost         string `env:"SMTP_HOST"`
	SmtpPort         int    `env:"SMTP_PORT" envDefault:"587"`
	SmtpUser         string `env:"SMTP_USER"`
	SmtpPassword     string `env:"SMTP_PASSWORD"`
	SmtpSkipInsecure bool   `env:"SMTP_SKIP_INSECURE" envDefault:"false"`
}

func Parse() (*Config, error) {
	cfg := Config{
		IsProduction: utils.ParseFlags(),
	}

	if err := env.Parse(&cfg); err != nil {
		log.Panic().Err(err).Msg("Failed to parse env config")
	}

	if len(cfg.JwtPublicKey) > 0 {
		cfg.JwtParsedPublicKey = utils.ParsePublicKey(cfg.JwtPublicKey)
	}

	return &cfg, nil
}
