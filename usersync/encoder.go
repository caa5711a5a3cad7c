package usersync

import (
	"encoding/base64"
	"encoding/json"
)

type Encoder interface {
	// Encode a cookie into a base 64 string
	Encode(c *Cookie) (string, error)
}

// Base64Encoder writes the cookie as URL safe base64 of its JSON form.
type Base64Encoder struct{}

func (e Base64Encoder) Encode(c *Cookie) (string, error) {
	j, err := json.Marshal(c)
	if err != nil {
		return "", err
	}

	return base64.URLEncoding.EncodeToString(j), nil
}
