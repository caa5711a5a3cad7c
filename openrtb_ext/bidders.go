package openrtb_ext

import (
	"sort"
)

// BidderName is the name of a bidder as it appears in cookie_sync requests and the app config.
type BidderName string

const (
	BidderAdform          BidderName = "adform"
	BidderAppnexus        BidderName = "appnexus"
	BidderAudienceNetwork BidderName = "audienceNetwork"
	BidderIx              BidderName = "ix"
	BidderOpenx           BidderName = "openx"
	BidderPubmatic        BidderName = "pubmatic"
	BidderRubicon         BidderName = "rubicon"
	BidderSovrn           BidderName = "sovrn"
)

// coreBidderNames is the set of bidders which may be configured for user syncs.
var coreBidderNames = []BidderName{
	BidderAdform,
	BidderAppnexus,
	BidderAudienceNetwork,
	BidderIx,
	BidderOpenx,
	BidderPubmatic,
	BidderRubicon,
	BidderSovrn,
}

// CoreBidderNames returns a copy of all the known bidder names.
func CoreBidderNames() []BidderName {
	names := make([]BidderName, len(coreBidderNames))
	copy(names, coreBidderNames)
	return names
}

// BuildBidderMap builds a map of string to BidderName for quick name lookups.
func BuildBidderMap() map[string]BidderName {
	lookup := make(map[string]BidderName, len(coreBidderNames))
	for _, name := range coreBidderNames {
		lookup[string(name)] = name
	}
	return lookup
}

// BuildBidderStringSlice builds a sorted slice of the bidder names as strings.
func BuildBidderStringSlice() []string {
	slice := make([]string, len(coreBidderNames))
	for i, name := range coreBidderNames {
		slice[i] = string(name)
	}
	sort.Strings(slice)
	return slice
}

// GetBidderName returns the BidderName for the given string, if it exists.
// The second argument is true if the name was valid, and false otherwise.
func GetBidderName(name string) (BidderName, bool) {
	for _, bidder := range coreBidderNames {
		if string(bidder) == name {
			return bidder, true
		}
	}
	return "", false
}

func (name BidderName) String() string {
	return string(name)
}
