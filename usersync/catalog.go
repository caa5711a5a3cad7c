package usersync

import (
	"sort"

	"github.com/prebid/prebid-cookiesync/openrtb_ext"
)

// BidderCatalog is the registry of bidders which can be synced. It is built once at startup and is
// only read afterwards, so it is safe for concurrent use.
type BidderCatalog interface {
	// IsValidName reports whether the bidder is registered.
	IsValidName(bidder string) bool

	// Usersyncer returns the syncer of a registered bidder.
	Usersyncer(bidder string) (Usersyncer, bool)

	// Names lists every registered bidder, sorted by name.
	Names() []string
}

// SyncerCatalog is a BidderCatalog backed by the syncers built from the bidder info files.
type SyncerCatalog struct {
	syncers map[string]Usersyncer
	names   []string
}

// NewSyncerCatalog registers every bidder in the map. Nil syncers are skipped.
func NewSyncerCatalog(syncers map[openrtb_ext.BidderName]Usersyncer) *SyncerCatalog {
	catalog := &SyncerCatalog{
		syncers: make(map[string]Usersyncer, len(syncers)),
		names:   make([]string, 0, len(syncers)),
	}
	for bidder, syncer := range syncers {
		if syncer == nil {
			continue
		}
		catalog.syncers[string(bidder)] = syncer
		catalog.names = append(catalog.names, string(bidder))
	}
	sort.Strings(catalog.names)
	return catalog
}

func (c *SyncerCatalog) IsValidName(bidder string) bool {
	_, ok := c.syncers[bidder]
	return ok
}

func (c *SyncerCatalog) Usersyncer(bidder string) (Usersyncer, bool) {
	syncer, ok := c.syncers[bidder]
	return syncer, ok
}

// Names returns a copy, so callers may filter it in place.
func (c *SyncerCatalog) Names() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)
	return names
}
