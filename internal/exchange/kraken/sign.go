package kraken

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"net/url"

	"github.com/tradebotlab/krakenbot/pkg/errors"
)

// Sign computes the API-Sign header value for a private endpoint call:
// HMAC-SHA512 over path + SHA256(nonce + urlencoded params), keyed with the
// base64-decoded API secret, base64-encoded.
func Sign(apiSecret, path, nonce string, params url.Values) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(apiSecret)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeSignatureFailed, "api secret is not valid base64", err)
	}

	digest := sha256.Sum256([]byte(nonce + params.Encode()))

	mac := hmac.New(sha512.New, secret)
	mac.Write([]byte(path))
	mac.Write(digest[:])

	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
