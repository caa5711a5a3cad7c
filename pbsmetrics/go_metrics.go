package pbsmetrics

import (
	"fmt"

	"github.com/prebid/prebid-cookiesync/openrtb_ext"
	"github.com/rcrowley/go-metrics"
)

// Metrics is the go-metrics implementation of the MetricsEngine interface
type Metrics struct {
	MetricsRegistry            metrics.Registry
	ConnectionCounter          metrics.Counter
	ConnectionAcceptErrorMeter metrics.Meter
	ConnectionCloseErrorMeter  metrics.Meter
	CookieSyncMeter            metrics.Meter
	userSyncOptout             metrics.Meter
	userSyncBadRequest         metrics.Meter
	userSyncSet                map[openrtb_ext.BidderName]metrics.Meter
	userSyncUnset              map[openrtb_ext.BidderName]metrics.Meter
}

// Defining an "unknown" bidder
const unknownBidder openrtb_ext.BidderName = "unknown"

// NewBlankMetrics creates a new Metrics object with all blank metrics object. This may also be useful for
// testing routines to ensure that no metrics are written anywhere.
//
// The maps are fully populated, so recording never has to check for missing meters.
func NewBlankMetrics(registry metrics.Registry, bidders []openrtb_ext.BidderName) *Metrics {
	blankMeter := &metrics.NilMeter{}
	newMetrics := &Metrics{
		MetricsRegistry:            registry,
		ConnectionCounter:          metrics.NilCounter{},
		ConnectionAcceptErrorMeter: blankMeter,
		ConnectionCloseErrorMeter:  blankMeter,
		CookieSyncMeter:            blankMeter,
		userSyncOptout:             blankMeter,
		userSyncBadRequest:         blankMeter,
		userSyncSet:                make(map[openrtb_ext.BidderName]metrics.Meter, len(bidders)+1),
		userSyncUnset:              make(map[openrtb_ext.BidderName]metrics.Meter, len(bidders)+1),
	}
	for _, b := range withUnknownBidder(bidders) {
		newMetrics.userSyncSet[b] = blankMeter
		newMetrics.userSyncUnset[b] = blankMeter
	}
	return newMetrics
}

// NewMetrics creates a new Metrics object with needed metrics defined. In time we may develop to the point
// where Metrics contains all the metrics we might want to record, and then we build the actual
// metrics object to contain only the metrics we are interested in. This would allow for debug
// mode metrics. The code would allways try to record the metrics, but effectively noop if we are
// using a blank meter/timer.
func NewMetrics(registry metrics.Registry, bidders []openrtb_ext.BidderName) *Metrics {
	newMetrics := NewBlankMetrics(registry, bidders)
	newMetrics.ConnectionCounter = metrics.GetOrRegisterCounter("active_connections", registry)
	newMetrics.ConnectionAcceptErrorMeter = metrics.GetOrRegisterMeter("connection_accept_errors", registry)
	newMetrics.ConnectionCloseErrorMeter = metrics.GetOrRegisterMeter("connection_close_errors", registry)
	newMetrics.CookieSyncMeter = metrics.GetOrRegisterMeter("cookie_sync_requests", registry)
	newMetrics.userSyncBadRequest = metrics.GetOrRegisterMeter("usersync.bad_requests", registry)
	newMetrics.userSyncOptout = metrics.GetOrRegisterMeter("usersync.opt_outs", registry)
	for _, b := range withUnknownBidder(bidders) {
		newMetrics.userSyncSet[b] = metrics.GetOrRegisterMeter(fmt.Sprintf("usersync.%s.sets", string(b)), registry)
		newMetrics.userSyncUnset[b] = metrics.GetOrRegisterMeter(fmt.Sprintf("usersync.%s.unsets", string(b)), registry)
	}
	return newMetrics
}

func withUnknownBidder(bidders []openrtb_ext.BidderName) []openrtb_ext.BidderName {
	all := make([]openrtb_ext.BidderName, 0, len(bidders)+1)
	all = append(all, bidders...)
	return append(all, unknownBidder)
}

// Implement the MetricsEngine interface

func (me *Metrics) RecordConnectionAccept(success bool) {
	if success {
		me.ConnectionCounter.Inc(1)
	} else {
		me.ConnectionAcceptErrorMeter.Mark(1)
	}
}

func (me *Metrics) RecordConnectionClose(success bool) {
	if success {
		me.ConnectionCounter.Dec(1)
	} else {
		me.ConnectionCloseErrorMeter.Mark(1)
	}
}

// RecordCookieSync implements a part of the MetricsEngine interface. Records a cookie sync request
func (me *Metrics) RecordCookieSync() {
	me.CookieSyncMeter.Mark(1)
}

// RecordUserIDSet implements a part of the MetricsEngine interface. Records a cookie setuid request
func (me *Metrics) RecordUserIDSet(userLabels UserLabels) {
	switch userLabels.Action {
	case RequestActionOptOut:
		me.userSyncOptout.Mark(1)
	case RequestActionErr:
		me.userSyncBadRequest.Mark(1)
	case RequestActionSet:
		doMark(userLabels.Bidder, me.userSyncSet)
	case RequestActionUnset:
		doMark(userLabels.Bidder, me.userSyncUnset)
	}
}

// The maps are only written while the Metrics are built, so reads need no lock.
func doMark(bidder openrtb_ext.BidderName, meters map[openrtb_ext.BidderName]metrics.Meter) {
	met, ok := meters[bidder]
	if ok {
		met.Mark(1)
	} else {
		meters[unknownBidder].Mark(1)
	}
}
