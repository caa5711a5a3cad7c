package usersync

import (
	"errors"
	"time"
)

// Ejector chooses which uid to drop when the cookie grows beyond host_cookie.max_cookie_size_bytes.
type Ejector interface {
	Choose(uids map[string]UIDEntry) (string, error)
}

// OldestEjector drops the uid which expires first. The syncer key which is being written by the
// current request is protected so a /setuid call never ejects its own uid.
type OldestEjector struct {
	ProtectedKey string
}

func (o *OldestEjector) Choose(uids map[string]UIDEntry) (string, error) {
	var oldestKey string
	var oldestExpiry time.Time

	for key, entry := range uids {
		if key == o.ProtectedKey {
			continue
		}
		// ties are broken by key so the choice doesn't depend on map order
		if oldestKey == "" || entry.Expires.Before(oldestExpiry) || (entry.Expires.Equal(oldestExpiry) && key < oldestKey) {
			oldestKey = key
			oldestExpiry = entry.Expires
		}
	}

	if oldestKey == "" {
		return "", errors.New("no uid is eligible for ejection")
	}
	return oldestKey, nil
}
