package config

import (
	"fmt"
	"io/ioutil"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// BidderInfos contains a mapping of bidder name to bidder info.
type BidderInfos map[string]BidderInfo

// BidderInfo specifies the static configuration for a bidder.
type BidderInfo struct {
	Disabled   bool            // copied from adapter config for convenience.
	Maintainer *MaintainerInfo `yaml:"maintainer"`
	Syncer     *Syncer         `yaml:"userSync"`
}

// MaintainerInfo specifies the support email address for a bidder.
type MaintainerInfo struct {
	Email string `yaml:"email"`
}

// Syncer specifies the user sync settings for a bidder.
type Syncer struct {
	// Key is used as the record key for the user sync cookie. We recommend using the bidder name
	// as the key for consistency, but that is not enforced as a requirement.
	Key string `yaml:"key"`

	// Default identifies which endpoint is preferred if both are configured. Valid values are
	// `iframe` and `redirect`.
	Default string `yaml:"default"`

	// IFrame configures an iframe endpoint for user syncing.
	IFrame *SyncerEndpoint `yaml:"iframe"`

	// Redirect configures an redirect endpoint for user syncing. This is also known as an image
	// endpoint in the Prebid.js project.
	Redirect *SyncerEndpoint `yaml:"redirect"`

	// SupportCORS identifies if CORS is supported for the user syncing endpoints.
	SupportCORS bool `yaml:"supportCors"`
}

// SyncerEndpoint specifies the configuration of the URL returned by the /cookie_sync endpoint
// for a specific bidder.
type SyncerEndpoint struct {
	// URL is the endpoint on the bidder's server the user will be sent to. It may contain the
	// {{.RedirectURL}} macro, which is replaced with the escaped /setuid callback.
	URL string `yaml:"url"`

	// RedirectURL overrides the host's user_sync.redirect_url for this bidder.
	RedirectURL string `yaml:"redirectUrl"`

	// UserMacro is the bidder's macro for the user id, substituted into the redirect URL.
	UserMacro string `yaml:"userMacro"`
}

// LoadBidderInfoFromDisk parses all the bidder info files from the file system, one for every
// bidder name given, and applies the adapter config on top of them.
func LoadBidderInfoFromDisk(path string, adapterConfigs map[string]Adapter, bidders []string) (BidderInfos, error) {
	infos := make(BidderInfos, len(bidders))

	for _, bidder := range bidders {
		filename := filepath.Join(path, bidder+".yaml")
		data, err := ioutil.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("error loading bidder info from %s: %v", filename, err)
		}

		info := BidderInfo{}
		if err := yaml.Unmarshal(data, &info); err != nil {
			return nil, fmt.Errorf("error parsing yaml for bidder %s: %v", filepath.Base(filename), err)
		}

		infos[bidder] = applyAdapterConfig(info, adapterFor(adapterConfigs, bidder))
	}

	return infos, nil
}

func applyAdapterConfig(info BidderInfo, adapter Adapter) BidderInfo {
	info.Disabled = adapter.Disabled

	if adapter.UserSyncURL == "" || info.Syncer == nil {
		return info
	}

	syncer := *info.Syncer
	if endpoint := syncer.defaultEndpoint(); endpoint != nil {
		override := *endpoint
		override.URL = adapter.UserSyncURL
		if endpoint == syncer.IFrame {
			syncer.IFrame = &override
		} else {
			syncer.Redirect = &override
		}
	}
	info.Syncer = &syncer
	return info
}

// DefaultSyncType returns the sync type named by Default, or the only type configured.
// Redirect wins when both are configured without a default.
func (s *Syncer) DefaultSyncType() string {
	if s.Default != "" {
		return s.Default
	}
	if s.Redirect != nil {
		return "redirect"
	}
	if s.IFrame != nil {
		return "iframe"
	}
	return ""
}

func (s *Syncer) defaultEndpoint() *SyncerEndpoint {
	switch s.DefaultSyncType() {
	case "iframe":
		return s.IFrame
	case "redirect":
		return s.Redirect
	}
	return nil
}

// Validate checks that every enabled bidder has a usable sync configuration.
func (infos BidderInfos) Validate(errs []error) []error {
	for bidder, info := range infos {
		if info.Disabled {
			continue
		}
		if info.Syncer == nil {
			errs = append(errs, fmt.Errorf("bidder %s has no userSync section", bidder))
			continue
		}
		if info.Syncer.IFrame == nil && info.Syncer.Redirect == nil {
			errs = append(errs, fmt.Errorf("bidder %s requires at least one iframe or redirect endpoint", bidder))
		}
		if info.Syncer.Default != "" && info.Syncer.Default != "iframe" && info.Syncer.Default != "redirect" {
			errs = append(errs, fmt.Errorf("bidder %s has an invalid default sync type \"%s\"", bidder, info.Syncer.Default))
		}
	}
	return errs
}
