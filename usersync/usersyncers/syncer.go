package usersyncers

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/prebid/prebid-cookiesync/config"
	"github.com/prebid/prebid-cookiesync/errortypes"
	"github.com/prebid/prebid-cookiesync/openrtb_ext"
	"github.com/prebid/prebid-cookiesync/usersync"
)

// NewSyncerMap returns a map of all the usersyncer objects for the enabled bidders.
// The same keys should exist in this map as in the bidder infos.
func NewSyncerMap(cfg *config.Configuration, infos config.BidderInfos) (map[openrtb_ext.BidderName]usersync.Usersyncer, error) {
	syncers := make(map[openrtb_ext.BidderName]usersync.Usersyncer, len(infos))
	var errs []error

	for bidder, info := range infos {
		if info.Disabled {
			glog.Infof("Bidder %s is disabled and will not be synced", bidder)
			continue
		}

		bidderName, ok := openrtb_ext.GetBidderName(bidder)
		if !ok {
			errs = append(errs, fmt.Errorf("%s: unknown bidder", bidder))
			continue
		}
		if info.Syncer == nil {
			errs = append(errs, fmt.Errorf("%s: no userSync section", bidder))
			continue
		}

		syncerConfig := *info.Syncer
		if syncerConfig.Key == "" {
			syncerConfig.Key = bidder
		}

		syncer, err := usersync.NewSyncer(cfg.UserSync, cfg.ExternalURL, syncerConfig)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %v", bidder, err))
			continue
		}
		syncers[bidderName] = syncer
	}

	if len(errs) > 0 {
		return nil, errortypes.NewAggregateErrors("user sync", errs)
	}
	return syncers, nil
}
