package usersync

import (
	"errors"
	"net/http"
	"time"

	"github.com/prebid/prebid-cookiesync/config"
)

// PrepareCookieForWrite encodes the cookie, ejecting uids until the Set-Cookie header fits within
// host_cookie.max_cookie_size_bytes. A limit of 0 means unlimited.
func (cookie *Cookie) PrepareCookieForWrite(cfg *config.HostCookie, encoder Encoder, ejector Ejector) (string, error) {
	for {
		encoded, err := encoder.Encode(cookie)
		if err != nil {
			return "", err
		}
		if fitsHostLimit(newUIDsCookie(encoded, cfg, false), cfg) {
			return encoded, nil
		}
		if len(cookie.uids) <= 1 {
			return "", errors.New("uid that's trying to be synced is bigger than MaxCookieSize")
		}

		family, err := ejector.Choose(cookie.uids)
		if err != nil {
			return "", err
		}
		delete(cookie.uids, family)
	}
}

// WriteCookie sets the encoded uids cookie on the response. sameSiteNone marks it Secure and
// SameSite=None, which newer Chrome releases require of third party cookies.
func WriteCookie(w http.ResponseWriter, encodedCookie string, cfg *config.HostCookie, sameSiteNone bool) {
	w.Header().Add("Set-Cookie", newUIDsCookie(encodedCookie, cfg, sameSiteNone).String())
}

func newUIDsCookie(value string, cfg *config.HostCookie, sameSiteNone bool) *http.Cookie {
	c := &http.Cookie{
		Name:    uidCookieName,
		Value:   value,
		Domain:  cfg.Domain,
		Path:    "/",
		Expires: time.Now().Add(cfg.TTLDuration()),
	}
	if sameSiteNone {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

func fitsHostLimit(c *http.Cookie, cfg *config.HostCookie) bool {
	return cfg.MaxCookieSizeBytes <= 0 || len(c.String()) <= cfg.MaxCookieSizeBytes
}
