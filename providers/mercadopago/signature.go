package mercadopago

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	ErrMissingSignature = errors.New("missing x-signature header")
	ErrInvalidSignature = errors.New("signature does not match")
)

// VerifySignature checks the x-signature header Mercado Pago sends with
// webhooks: "ts=<unix>,v1=<hex hmac>". The hmac is a SHA-256 over the
// manifest "id:<data.id>;request-id:<x-request-id>;ts:<ts>;" keyed by
// the webhook secret.
func VerifySignature(secret, signature, requestId, dataId string) error {
	if len(signature) == 0 {
		return ErrMissingSignature
	}

	var ts, v1 string
	for _, part := range strings.Split(signature, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}

		switch kv[0] {
		case "ts":
			ts = kv[1]
		case "v1":
			v1 = kv[1]
		}
	}

	if len(ts) == 0 || len(v1) == 0 {
		return ErrMissingSignature
	}

	manifest := "id:" + dataId + ";request-id:" + requestId + ";ts:" + ts + ";"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(v1)) {
		return ErrInvalidSignature
	}

	return nil
}
