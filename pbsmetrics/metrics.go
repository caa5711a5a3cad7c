package pbsmetrics

import (
	"github.com/prebid/prebid-cookiesync/openrtb_ext"
)

// UserLabels : Labels for /setuid endpoint
type UserLabels struct {
	Action RequestAction
	Bidder openrtb_ext.BidderName
}

// RequestAction : The setuid request result
type RequestAction string

// /setuid action labels
const (
	RequestActionSet    RequestAction = "set"
	RequestActionUnset  RequestAction = "unset"
	RequestActionOptOut RequestAction = "opt_out"
	RequestActionErr    RequestAction = "err"
)

func RequestActions() []RequestAction {
	return []RequestAction{
		RequestActionSet,
		RequestActionUnset,
		RequestActionOptOut,
		RequestActionErr,
	}
}

// MetricsEngine is a generic interface to record metrics into the desired backend.
// Implementations must be safe for concurrent use: every handler records into the same engine.
type MetricsEngine interface {
	RecordConnectionAccept(success bool)
	RecordConnectionClose(success bool)
	RecordCookieSync()
	RecordUserIDSet(userLabels UserLabels) // Function should verify bidder values
}
