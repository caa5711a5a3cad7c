package usersync

import (
	"net/http"

	"github.com/prebid/prebid-cookiesync/config"
)

// CookieParser reads the uids cookie from a request.
type CookieParser interface {
	ParseCookie(r *http.Request) *Cookie
}

// HostCookieParser decodes the uids cookie and honors the host's opt-out cookie.
type HostCookieParser struct {
	decoder Decoder
	host    *config.HostCookie
}

func NewCookieParser(decoder Decoder, host *config.HostCookie) *HostCookieParser {
	return &HostCookieParser{
		decoder: decoder,
		host:    host,
	}
}

// ParseCookie never returns nil. A matching host opt-out cookie wins over whatever the uids cookie
// says, and a missing or corrupt uids cookie reads as empty.
func (p *HostCookieParser) ParseCookie(r *http.Request) *Cookie {
	if p.hostOptedOut(r) {
		cookie := NewCookie()
		cookie.SetOptOut(true)
		return cookie
	}

	raw, err := r.Cookie(uidCookieName)
	if err != nil {
		return NewCookie()
	}
	return p.decoder.Decode(raw.Value)
}

func (p *HostCookieParser) hostOptedOut(r *http.Request) bool {
	optOut := p.host.OptOutCookie
	if optOut.Name == "" {
		return false
	}
	c, err := r.Cookie(optOut.Name)
	return err == nil && c.Value == optOut.Value
}

// SyncHostCookie copies the host's own id cookie into host_cookie.family, unless the uids cookie
// already has a uid for it.
func SyncHostCookie(r *http.Request, cookie *Cookie, host *config.HostCookie) {
	if host.CookieName == "" {
		return
	}
	if uid, _ := cookie.UID(host.Family); uid != "" {
		return
	}
	if hostCookie, err := r.Cookie(host.CookieName); err == nil {
		cookie.Sync(host.Family, hostCookie.Value)
	}
}
