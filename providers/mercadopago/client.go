package mercadopago

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rabicho/rabicho-server/config"
)

// Api covers the two Mercado Pago calls this service makes: creating a
// checkout preference and the authoritative payment fetch the webhook
// handler relies on instead of the notification body.
type Api interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)
	GetPayment(ctx context.Context, id string) (*Payment, error)
}

type PreferenceRequest struct {
	ExternalReference string                 `json:"external_reference,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
	Payer             *Payer                 `json:"payer,omitempty"`
	Items             []Item                 `json:"items"`
	PaymentMethods    *PaymentMethods        `json:"payment_methods,omitempty"`
	AutoReturn        string                 `json:"auto_return,omitempty"`
	BackUrls          *BackUrls              `json:"back_urls,omitempty"`
}

type Payer struct {
	Email string `json:"email,omitempty"`
}

type Item struct {
	Id          string  `json:"id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	CurrencyId  string  `json:"currency_id"`
	CategoryId  string  `json:"category_id,omitempty"`
}

type PaymentMethods struct {
	Installments int `json:"installments,omitempty"`
}

type BackUrls struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
	Pending string `json:"pending,omitempty"`
}

type Preference struct {
	Id        string `json:"id"`
	InitPoint string `json:"init_point"`
}

type Payment struct {
	Id                int64                  `json:"id"`
	Status            string                 `json:"status"`
	DateApproved      *time.Time             `json:"date_approved"`
	ExternalReference string                 `json:"external_reference"`
	Metadata          map[string]interface{} `json:"metadata"`
}

type Client struct {
	baseUrl     string
	accessToken string
	timeout     time.Duration
}

func NewClient(config *config.Config) Api {
	return &Client{
		baseUrl:     config.MercadoPago.BaseUrl,
		accessToken: config.MercadoPago.AccessToken,
		timeout:     time.Second * time.Duration(config.MercadoPago.Timeout),
	}
}

func (p *Client) CreatePreference(ctx context.Context, request PreferenceRequest) (*Preference, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	resBody, err := p.call(fiber.MethodPost, "/checkout/preferences", body)
	if err != nil {
		return nil, err
	}

	preference := new(Preference)
	if err := json.Unmarshal(resBody, preference); err != nil {
		return nil, err
	}

	return preference, nil
}

func (p *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	resBody, err := p.call(fiber.MethodGet, "/v1/payments/"+id, nil)
	if err != nil {
		return nil, err
	}

	payment := new(Payment)
	if err := json.Unmarshal(resBody, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

func (p *Client) call(method, path string, body []byte) ([]byte, error) {
	a := fiber.AcquireAgent()
	defer fiber.ReleaseAgent(a)

	res := fiber.AcquireResponse()
	defer fiber.ReleaseResponse(res)

	a.Reuse()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(p.baseUrl + path)
	req.Header.Set("Authorization", "Bearer "+p.accessToken)
	req.Header.Set("Content-Type", "application/json")

	if body != nil {
		req.SetBody(body)
	}

	if err := a.Parse(); err != nil {
		return nil, err
	}

	code, resBody, errArr := a.SetResponse(res).Timeout(p.timeout).Bytes()
	if len(errArr) != 0 {
		return nil, errArr[0]
	}

	if code != fiber.StatusOK && code != fiber.StatusCreated {
		return nil, errors.New(string(resBody))
	}

	return resBody, nil
}
