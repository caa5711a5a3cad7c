package usersync

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/prebid/prebid-cookiesync/openrtb_ext"
)

const uidCookieName = "uids"

// uidTTL is how long a uid set through /setuid stays live. It is unrelated to the cookie's own ttl.
const uidTTL = 14 * 24 * time.Hour

// Cookie holds the uids each bidder has assigned to this browser, keyed by the bidder's family
// name, and whether the user opted out of syncing. Parse one with a CookieParser and write it
// back with PrepareCookieForWrite and WriteCookie.
type Cookie struct {
	uids   map[string]UIDEntry
	optOut bool
}

// UIDEntry is one bidder's uid and the time it stops being live.
type UIDEntry struct {
	UID     string    `json:"uid"`
	Expires time.Time `json:"expires"`
}

// LiveAt reports whether the uid is still usable at the given time.
func (e UIDEntry) LiveAt(t time.Time) bool {
	return t.Before(e.Expires)
}

func NewCookie() *Cookie {
	return &Cookie{
		uids: make(map[string]UIDEntry),
	}
}

// NewCookieFromUIDs returns a cookie holding a copy of the given entries.
func NewCookieFromUIDs(uids map[string]UIDEntry) *Cookie {
	cookie := NewCookie()
	for family, entry := range uids {
		cookie.uids[family] = entry
	}
	return cookie
}

// AllowSyncs is false for opted out users and for a missing cookie.
func (cookie *Cookie) AllowSyncs() bool {
	return cookie != nil && !cookie.optOut
}

// SetOptOut changes the opt-out flag. Opting out forgets every uid.
func (cookie *Cookie) SetOptOut(optOut bool) {
	cookie.optOut = optOut
	if optOut {
		cookie.uids = make(map[string]UIDEntry)
	}
}

// Sync stores a fresh uid for the family. It fails for opted out users and for uids the bidder
// uses to mean "not recognized yet".
func (cookie *Cookie) Sync(family string, uid string) error {
	if !cookie.AllowSyncs() {
		return errors.New("the user has opted out of prebid server cookie syncs")
	}
	if isUnrecognizedUID(family, uid) {
		return errors.New("audienceNetwork uses a UID of 0 as \"not yet recognized\"")
	}

	cookie.uids[family] = UIDEntry{
		UID:     uid,
		Expires: time.Now().Add(uidTTL),
	}
	return nil
}

func (cookie *Cookie) Unsync(family string) {
	delete(cookie.uids, family)
}

// UID returns the family's uid whether or not it is still live.
func (cookie *Cookie) UID(family string) (string, bool) {
	if cookie == nil {
		return "", false
	}
	entry, ok := cookie.uids[family]
	return entry.UID, ok
}

// UIDs maps every family to its uid, expired ones included.
func (cookie *Cookie) UIDs() map[string]string {
	uids := make(map[string]string)
	if cookie != nil {
		for family, entry := range cookie.uids {
			uids[family] = entry.UID
		}
	}
	return uids
}

// StateAt freezes the cookie into a read-only view judged at the given time. A nil cookie reads as
// opted out.
func (cookie *Cookie) StateAt(now time.Time) SyncState {
	if cookie == nil {
		return SyncState{optOut: true, now: now}
	}
	return SyncState{uids: cookie.uids, optOut: cookie.optOut, now: now}
}

// SyncState answers liveness questions about a cookie against a single instant, so every bidder in
// one /cookie_sync request is judged by the same clock. It must not outlive the request.
type SyncState struct {
	uids   map[string]UIDEntry
	optOut bool
	now    time.Time
}

func (s SyncState) AllowSyncs() bool {
	return !s.optOut
}

// HasLiveSync reports whether the family has a uid which has not expired.
func (s SyncState) HasLiveSync(family string) bool {
	entry, ok := s.uids[family]
	return ok && entry.LiveAt(s.now)
}

// HasAnyLiveSyncs reports whether any family has a uid which has not expired.
func (s SyncState) HasAnyLiveSyncs() bool {
	for _, entry := range s.uids {
		if entry.LiveAt(s.now) {
			return true
		}
	}
	return false
}

func isUnrecognizedUID(family string, uid string) bool {
	return family == string(openrtb_ext.BidderAudienceNetwork) && uid == "0"
}

// storedCookie is the JSON layout inside the base64 cookie value.
type storedCookie struct {
	UIDs   map[string]UIDEntry `json:"tempUIDs,omitempty"`
	OptOut bool                `json:"optout,omitempty"`
}

func (cookie *Cookie) MarshalJSON() ([]byte, error) {
	return json.Marshal(storedCookie{
		UIDs:   cookie.uids,
		OptOut: cookie.optOut,
	})
}

// UnmarshalJSON drops the uids of opted out users and audienceNetwork's placeholder uid.
func (cookie *Cookie) UnmarshalJSON(b []byte) error {
	var stored storedCookie
	if err := json.Unmarshal(b, &stored); err != nil {
		return err
	}

	cookie.optOut = stored.OptOut
	cookie.uids = make(map[string]UIDEntry, len(stored.UIDs))
	if cookie.optOut {
		return nil
	}
	for family, entry := range stored.UIDs {
		if isUnrecognizedUID(family, entry.UID) {
			continue
		}
		cookie.uids[family] = entry
	}
	return nil
}
