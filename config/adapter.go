package config

import (
	"fmt"
	"strings"

	validator "github.com/asaskevich/govalidator"
	"github.com/prebid/prebid-cookiesync/openrtb_ext"
)

var knownAdapters = openrtb_ext.BuildBidderStringSlice()

type Adapter struct {
	// UserSyncURL replaces the sync URL from the bidder's info file. It is _usually_ optional.
	//
	// This value will be interpreted as a Golang Template. At startup, {{.RedirectURL}} is replaced
	// with the escaped /setuid callback built from user_sync.redirect_url.
	UserSyncURL string `mapstructure:"usersync_url"`
	Disabled    bool   `mapstructure:"disabled"`
}

// AdapterFor returns the adapter config for a bidder. Viper lowercases map keys, so the
// lookup is case insensitive.
func (cfg *Configuration) AdapterFor(bidder string) Adapter {
	return adapterFor(cfg.Adapters, bidder)
}

func adapterFor(adapters map[string]Adapter, bidder string) Adapter {
	return adapters[strings.ToLower(bidder)]
}

// validateAdapters validates the user sync URL overrides of every enabled adapter.
func validateAdapters(cfg *Configuration, errs []error) []error {
	for adapterName, adapter := range cfg.Adapters {
		if !adapter.Disabled {
			errs = validateAdapterUserSyncURL(adapter.UserSyncURL, adapterName, errs)
		}
	}
	return errs
}

const dummyRedirectURL = "http%3A%2F%2Fdummyhost.com%2Fsetuid%3Fbidder%3Dbidder%26uid%3D%24UID"

// validateAdapterUserSyncURL makes sure that a configured user sync URL is a valid URL once its
// macros are resolved.
func validateAdapterUserSyncURL(userSyncURL string, adapterName string, errs []error) []error {
	if userSyncURL == "" {
		return errs
	}

	resolved := strings.Replace(userSyncURL, "{{.RedirectURL}}", dummyRedirectURL, -1)
	if strings.Contains(resolved, "{{") {
		return append(errs, fmt.Errorf("adapters.%s.usersync_url \"%s\" contains an unsupported macro", adapterName, userSyncURL))
	}

	if !validator.IsURL(resolved) {
		return append(errs, fmt.Errorf("The user_sync URL provided for %s was not formed correctly: %s", adapterName, userSyncURL))
	}

	return errs
}
