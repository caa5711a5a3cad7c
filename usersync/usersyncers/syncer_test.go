package usersyncers

import (
	"testing"

	"github.com/prebid/prebid-cookiesync/config"
	"github.com/prebid/prebid-cookiesync/openrtb_ext"
	"github.com/prebid/prebid-cookiesync/usersync"
	"github.com/stretchr/testify/assert"
)

var testConfig = &config.Configuration{
	ExternalURL: "http://localhost:8000",
	UserSync: config.UserSync{
		RedirectURL: "{{.ExternalURL}}/setuid?bidder={{.SyncerKey}}&uid={{.UserMacro}}",
	},
}

func TestNewSyncerMapFromShippedInfo(t *testing.T) {
	infos, err := config.LoadBidderInfoFromDisk("../../static/bidder-info", nil, openrtb_ext.BuildBidderStringSlice())
	if !assert.NoError(t, err) {
		return
	}

	syncers, err := NewSyncerMap(testConfig, infos)
	if !assert.NoError(t, err) {
		return
	}

	for _, bidderName := range openrtb_ext.CoreBidderNames() {
		if _, ok := syncers[bidderName]; !ok {
			t.Errorf("No syncer exists for bidder: %s", bidderName)
		}
	}

	appnexus := syncers[openrtb_ext.BidderAppnexus]
	assert.Equal(t, "adnxs", appnexus.FamilyName())
	assert.Equal(t, &usersync.UsersyncInfo{
		URL:         "https://ib.adnxs.com/getuid?http%3A%2F%2Flocalhost%3A8000%2Fsetuid%3Fbidder%3Dadnxs%26uid%3D%24UID",
		Type:        usersync.SyncTypeRedirect,
		SupportCORS: false,
	}, appnexus.GetUsersyncInfo())

	rubicon := syncers[openrtb_ext.BidderRubicon]
	assert.True(t, rubicon.GetUsersyncInfo().SupportCORS)
}

func TestNewSyncerMapSkipsDisabled(t *testing.T) {
	infos := config.BidderInfos{
		"appnexus": {Disabled: true},
		"rubicon": {Syncer: &config.Syncer{
			Redirect: &config.SyncerEndpoint{URL: "https://rubicon.com/sync"},
		}},
	}

	syncers, err := NewSyncerMap(testConfig, infos)
	if !assert.NoError(t, err) {
		return
	}

	assert.Len(t, syncers, 1)
	assert.Equal(t, "rubicon", syncers[openrtb_ext.BidderRubicon].FamilyName(), "key defaults to the bidder name")
}

func TestNewSyncerMapErrors(t *testing.T) {
	infos := config.BidderInfos{
		"unknown":  {Syncer: &config.Syncer{Redirect: &config.SyncerEndpoint{URL: "https://unknown.com/sync"}}},
		"appnexus": {},
		"rubicon":  {Syncer: &config.Syncer{Redirect: &config.SyncerEndpoint{URL: "not a url"}}},
	}

	syncers, err := NewSyncerMap(testConfig, infos)

	assert.Nil(t, syncers)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "user sync (3 errors)")
		assert.Contains(t, err.Error(), "unknown: unknown bidder")
		assert.Contains(t, err.Error(), "appnexus: no userSync section")
		assert.Contains(t, err.Error(), "rubicon: redirect: composed url \"not a url\" is invalid")
	}
}
