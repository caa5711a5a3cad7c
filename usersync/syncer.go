package usersync

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"

	validator "github.com/asaskevich/govalidator"
	"github.com/prebid/prebid-cookiesync/config"
)

// Usersyncer describes how the browser syncs a uid for one bidder.
type Usersyncer interface {
	// FamilyName is the key under which the bidder's uid is stored in the cookie. This is not
	// necessarily the bidder name: appnexus stores its uid as "adnxs".
	FamilyName() string

	// GetUsersyncInfo returns the sync the user's browser should perform for this bidder.
	GetUsersyncInfo() *UsersyncInfo
}

// UsersyncInfo is the sync descriptor returned by the /cookie_sync endpoint.
type UsersyncInfo struct {
	URL         string   `json:"url"`
	Type        SyncType `json:"type"`
	SupportCORS bool     `json:"supportCORS"`
}

// CookieSyncBidders is the /cookie_sync status of a bidder with no live uid.
type CookieSyncBidders struct {
	BidderCode   string        `json:"bidder"`
	NoCookie     bool          `json:"no_cookie,omitempty"`
	UsersyncInfo *UsersyncInfo `json:"usersync,omitempty"`
}

type syncer struct {
	familyName string
	syncInfo   UsersyncInfo
}

func (s *syncer) FamilyName() string {
	return s.familyName
}

// GetUsersyncInfo returns a copy so callers can't change the descriptor shared by every request.
func (s *syncer) GetUsersyncInfo() *UsersyncInfo {
	info := s.syncInfo
	return &info
}

const (
	setuidSyncTypeIFrame   = "b"
	setuidSyncTypeRedirect = "i"
)

// NewSyncer creates a syncer from the bidder's sync configuration. The URL of its default sync type
// is composed once, with the /setuid callback resolved and escaped. An error is returned if the
// default endpoint is missing, a macro is not supported, or the composed URL is invalid.
func NewSyncer(hostConfig config.UserSync, externalURL string, syncerConfig config.Syncer) (Usersyncer, error) {
	if syncerConfig.Key == "" {
		return nil, errors.New("key is required")
	}
	if syncerConfig.IFrame == nil && syncerConfig.Redirect == nil {
		return nil, errors.New("at least one iframe or redirect is required")
	}

	syncType := parseSyncType(syncerConfig.DefaultSyncType())
	var endpoint *config.SyncerEndpoint
	var setuidSyncType string
	switch syncType {
	case SyncTypeIFrame:
		endpoint, setuidSyncType = syncerConfig.IFrame, setuidSyncTypeIFrame
	case SyncTypeRedirect:
		endpoint, setuidSyncType = syncerConfig.Redirect, setuidSyncTypeRedirect
	default:
		return nil, fmt.Errorf("invalid default sync type \"%s\"", syncerConfig.Default)
	}
	if endpoint == nil {
		return nil, fmt.Errorf("default sync type %s has no endpoint", syncType)
	}

	syncURL, err := composeURL(syncerConfig.Key, setuidSyncType, hostConfig, externalURL, *endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", syncType, err)
	}
	if err := validateURL(syncURL); err != nil {
		return nil, fmt.Errorf("%s: %v", syncType, err)
	}

	return &syncer{
		familyName: syncerConfig.Key,
		syncInfo: UsersyncInfo{
			URL:         syncURL,
			Type:        syncType,
			SupportCORS: syncerConfig.SupportCORS,
		},
	}, nil
}

var (
	externalHostRegex = regexp.MustCompile(`{{\s*\.ExternalURL\s*}}`)
	syncerKeyRegex    = regexp.MustCompile(`{{\s*\.SyncerKey\s*}}`)
	syncTypeRegex     = regexp.MustCompile(`{{\s*\.SyncType\s*}}`)
	userMacroRegex    = regexp.MustCompile(`{{\s*\.UserMacro\s*}}`)
	redirectRegex     = regexp.MustCompile(`{{\s*\.RedirectURL\s*}}`)
	macroRegex        = regexp.MustCompile(`{{.*?}}`)
)

func composeURL(key, syncTypeValue string, hostConfig config.UserSync, externalURL string, syncerEndpoint config.SyncerEndpoint) (string, error) {
	redirectTemplate := syncerEndpoint.RedirectURL
	if redirectTemplate == "" {
		redirectTemplate = hostConfig.RedirectURL
	}

	redirectURL := externalHostRegex.ReplaceAllLiteralString(redirectTemplate, externalURL)
	redirectURL = syncerKeyRegex.ReplaceAllLiteralString(redirectURL, key)
	redirectURL = syncTypeRegex.ReplaceAllLiteralString(redirectURL, syncTypeValue)
	redirectURL = userMacroRegex.ReplaceAllLiteralString(redirectURL, syncerEndpoint.UserMacro)
	if macro := macroRegex.FindString(redirectURL); macro != "" {
		return "", fmt.Errorf("redirect url contains unsupported macro %s", macro)
	}

	syncURL := redirectRegex.ReplaceAllLiteralString(syncerEndpoint.URL, url.QueryEscape(redirectURL))
	if macro := macroRegex.FindString(syncURL); macro != "" {
		return "", fmt.Errorf("url contains unsupported macro %s", macro)
	}
	return syncURL, nil
}

func validateURL(syncURL string) error {
	if !validator.IsURL(syncURL) || !validator.IsRequestURL(syncURL) {
		return fmt.Errorf("composed url \"%s\" is invalid", syncURL)
	}
	return nil
}
