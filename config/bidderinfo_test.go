package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testInfoFilesPath = "./test/bidder-info"
const testInvalidInfoFilesPath = "./test/bidder-info-invalid"

func TestLoadBidderInfoFromDisk(t *testing.T) {
	infos, err := LoadBidderInfoFromDisk(testInfoFilesPath, map[string]Adapter{}, []string{"someBidder"})
	if err != nil {
		t.Fatal(err)
	}

	expected := BidderInfos{
		"someBidder": {
			Disabled: false,
			Maintainer: &MaintainerInfo{
				Email: "some-email@domain.com",
			},
			Syncer: &Syncer{
				Key:     "foo",
				Default: "iframe",
				IFrame: &SyncerEndpoint{
					URL:         "https://foo.com/sync?mode=iframe&r={{.RedirectURL}}",
					RedirectURL: "{{.ExternalURL}}/setuid/iframe",
					UserMacro:   "%UID",
				},
				Redirect: &SyncerEndpoint{
					URL:       "https://foo.com/sync?mode=redirect&r={{.RedirectURL}}",
					UserMacro: "#UID",
				},
				SupportCORS: true,
			},
		},
	}
	assert.Equal(t, expected, infos)
}

func TestLoadBidderInfoMissingFile(t *testing.T) {
	_, err := LoadBidderInfoFromDisk(testInfoFilesPath, nil, []string{"unknownBidder"})
	assert.Error(t, err)
}

func TestLoadBidderInfoInvalid(t *testing.T) {
	_, err := LoadBidderInfoFromDisk(testInvalidInfoFilesPath, nil, []string{"someBidder"})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "error parsing yaml for bidder someBidder.yaml")
	}
}

func TestLoadBidderInfoAppliesAdapterConfig(t *testing.T) {
	adapters := map[string]Adapter{
		// viper lowercases keys
		"somebidder": {UserSyncURL: "https://override.com/sync?r={{.RedirectURL}}", Disabled: true},
	}

	infos, err := LoadBidderInfoFromDisk(testInfoFilesPath, adapters, []string{"someBidder"})
	if err != nil {
		t.Fatal(err)
	}

	info := infos["someBidder"]
	assert.True(t, info.Disabled)
	assert.Equal(t, "https://override.com/sync?r={{.RedirectURL}}", info.Syncer.IFrame.URL, "default endpoint is overridden")
	assert.Equal(t, "%UID", info.Syncer.IFrame.UserMacro, "other endpoint settings are kept")
	assert.Equal(t, "https://foo.com/sync?mode=redirect&r={{.RedirectURL}}", info.Syncer.Redirect.URL)
}

func TestDefaultEndpoint(t *testing.T) {
	iframe := &SyncerEndpoint{URL: "iframe"}
	redirect := &SyncerEndpoint{URL: "redirect"}

	testCases := []struct {
		description string
		syncer      Syncer
		expected    *SyncerEndpoint
	}{
		{description: "Default iframe", syncer: Syncer{Default: "iframe", IFrame: iframe, Redirect: redirect}, expected: iframe},
		{description: "Default redirect", syncer: Syncer{Default: "redirect", IFrame: iframe, Redirect: redirect}, expected: redirect},
		{description: "No default, both", syncer: Syncer{IFrame: iframe, Redirect: redirect}, expected: redirect},
		{description: "No default, iframe only", syncer: Syncer{IFrame: iframe}, expected: iframe},
		{description: "Nothing", syncer: Syncer{}, expected: nil},
	}

	for _, test := range testCases {
		assert.Equal(t, test.expected, test.syncer.defaultEndpoint(), test.description)
	}
}

func TestDefaultSyncType(t *testing.T) {
	endpoint := &SyncerEndpoint{URL: "https://sync.com"}

	assert.Equal(t, "iframe", (&Syncer{Default: "iframe", Redirect: endpoint}).DefaultSyncType())
	assert.Equal(t, "redirect", (&Syncer{IFrame: endpoint, Redirect: endpoint}).DefaultSyncType())
	assert.Equal(t, "iframe", (&Syncer{IFrame: endpoint}).DefaultSyncType())
	assert.Equal(t, "", (&Syncer{}).DefaultSyncType())
}

func TestBidderInfosValidate(t *testing.T) {
	endpoint := &SyncerEndpoint{URL: "https://sync.com"}

	testCases := []struct {
		description    string
		infos          BidderInfos
		expectedErrors []error
	}{
		{
			description: "Valid",
			infos:       BidderInfos{"a": {Syncer: &Syncer{Key: "a", Redirect: endpoint}}},
		},
		{
			description: "Disabled bidders are ignored",
			infos:       BidderInfos{"a": {Disabled: true}},
		},
		{
			description:    "Missing userSync",
			infos:          BidderInfos{"a": {}},
			expectedErrors: []error{errors.New("bidder a has no userSync section")},
		},
		{
			description:    "No endpoints",
			infos:          BidderInfos{"a": {Syncer: &Syncer{Key: "a"}}},
			expectedErrors: []error{errors.New("bidder a requires at least one iframe or redirect endpoint")},
		},
		{
			description:    "Bad default",
			infos:          BidderInfos{"a": {Syncer: &Syncer{Key: "a", Default: "image", Redirect: endpoint}}},
			expectedErrors: []error{errors.New("bidder a has an invalid default sync type \"image\"")},
		},
	}

	for _, test := range testCases {
		assert.Equal(t, test.expectedErrors, test.infos.Validate(nil), test.description)
	}
}

func TestShippedBidderInfoFiles(t *testing.T) {
	infos, err := LoadBidderInfoFromDisk("../static/bidder-info", nil, knownAdapters)
	if !assert.NoError(t, err) {
		return
	}
	assert.Empty(t, infos.Validate(nil))
	assert.Equal(t, "adnxs", infos["appnexus"].Syncer.Key)
}
