package endpoints

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/buger/jsonparser"
	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
	"github.com/prebid/prebid-cookiesync/config"
	"github.com/prebid/prebid-cookiesync/errortypes"
	"github.com/prebid/prebid-cookiesync/pbsmetrics"
	"github.com/prebid/prebid-cookiesync/usersync"
)

const (
	cookieSyncStatusOK       = "ok"
	cookieSyncStatusNoCookie = "no_cookie"
)

// NewCookieSyncEndpoint implements /cookie_sync, which tells the browser which bidders still need
// a user sync. It panics if any collaborator is nil.
func NewCookieSyncEndpoint(parser usersync.CookieParser, catalog usersync.BidderCatalog, metrics pbsmetrics.MetricsEngine, cfg config.CookieSync) httprouter.Handle {
	if parser == nil {
		panic("NewCookieSyncEndpoint requires a cookie parser")
	}
	if catalog == nil {
		panic("NewCookieSyncEndpoint requires a bidder catalog")
	}
	if metrics == nil {
		panic("NewCookieSyncEndpoint requires a metrics engine")
	}

	deps := &cookieSyncDeps{
		parser:              parser,
		catalog:             catalog,
		metrics:             metrics,
		countFailedRequests: cfg.CountFailedRequests,
	}
	return deps.Endpoint
}

type cookieSyncDeps struct {
	parser              usersync.CookieParser
	catalog             usersync.BidderCatalog
	metrics             pbsmetrics.MetricsEngine
	countFailedRequests bool
}

func (deps *cookieSyncDeps) Endpoint(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	csResp, err := deps.handle(r)
	if err != nil {
		if deps.countFailedRequests {
			deps.metrics.RecordCookieSync()
		}
		glog.V(2).Infof("/cookie_sync rejected: %v", err)
		// net/http always sends the standard reason phrase, so failures are reported by status code alone.
		w.WriteHeader(errortypes.HTTPStatus(err))
		return
	}

	deps.writeResponse(w, csResp)
}

// handle runs the request through the opt-out gate, the decoder, the resolver and the evaluator.
// The returned error is one of the errortypes and decides the failure status.
func (deps *cookieSyncDeps) handle(r *http.Request) (*cookieSyncResponse, error) {
	cookie := deps.parser.ParseCookie(r).StateAt(time.Now())
	if !cookie.AllowSyncs() {
		return nil, &errortypes.OptedOut{Message: "User has opted out"}
	}

	bodyBytes, err := readBody(r)
	if err != nil {
		return nil, err
	}
	parsedReq, err := parseCookieSyncRequest(bodyBytes)
	if err != nil {
		return nil, err
	}

	bidders := parsedReq.resolveBidders(deps.catalog)
	bidderStatus := make([]*usersync.CookieSyncBidders, 0, len(bidders))
	for _, bidder := range bidders {
		if status := evaluateBidder(bidder, deps.catalog, cookie); status != nil {
			bidderStatus = append(bidderStatus, status)
		}
	}
	return newCookieSyncResponse(cookie, bidderStatus), nil
}

func (deps *cookieSyncDeps) writeResponse(w http.ResponseWriter, csResp *cookieSyncResponse) {
	deps.metrics.RecordCookieSync()
	writeJSON(w, "/cookie_sync", csResp)
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, &errortypes.MissingBody{}
	}
	defer r.Body.Close()
	bodyBytes, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return nil, &errortypes.BadInput{Message: "Failed to read request body"}
	}
	return bodyBytes, nil
}

type cookieSyncRequest struct {
	// Bidders is nil when every registered bidder should be considered.
	Bidders []string `json:"bidders"`
}

// parseCookieSyncRequest decodes the body. A body with no content, or holding only null, is missing.
// Anything else which is not an object with an optional "bidders" string array is malformed.
func parseCookieSyncRequest(bodyBytes []byte) (*cookieSyncRequest, error) {
	trimmed := bytes.TrimSpace(bodyBytes)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, &errortypes.MissingBody{}
	}

	parsedReq := &cookieSyncRequest{}
	if err := json.Unmarshal(trimmed, parsedReq); err != nil {
		glog.V(2).Infof("/cookie_sync body could not be parsed: %v", err)
		return nil, &errortypes.MalformedBody{Message: "JSON parse failed"}
	}

	biddersJSON, err := parseBidders(trimmed)
	if err != nil {
		return nil, &errortypes.MalformedBody{Message: "JSON parse failed"}
	}
	if biddersJSON == nil {
		parsedReq.Bidders = nil
	} else if parsedReq.Bidders == nil {
		parsedReq.Bidders = []string{}
	}
	return parsedReq, nil
}

// parseBidders returns the raw "bidders" value, or nil if it was omitted or null.
func parseBidders(request []byte) ([]byte, error) {
	value, valueType, _, err := jsonparser.Get(request, "bidders")
	if err == jsonparser.KeyPathNotFoundError || valueType == jsonparser.Null {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// resolveBidders lists the bidders to evaluate. An omitted list means every registered bidder in
// the catalog's order. Otherwise unregistered names are dropped in place. Duplicates are kept.
func (req *cookieSyncRequest) resolveBidders(catalog usersync.BidderCatalog) []string {
	if req.Bidders == nil {
		return catalog.Names()
	}

	for i := 0; i < len(req.Bidders); i++ {
		if !catalog.IsValidName(req.Bidders[i]) {
			req.Bidders = append(req.Bidders[:i], req.Bidders[i+1:]...)
			i--
		}
	}
	return req.Bidders
}

// evaluateBidder returns the bidder's sync status, or nil if the cookie already holds a live uid
// under the bidder's family name.
func evaluateBidder(bidder string, catalog usersync.BidderCatalog, cookie usersync.SyncState) *usersync.CookieSyncBidders {
	syncer, ok := catalog.Usersyncer(bidder)
	if !ok {
		return nil
	}
	if cookie.HasLiveSync(syncer.FamilyName()) {
		return nil
	}
	return &usersync.CookieSyncBidders{
		BidderCode:   bidder,
		NoCookie:     true,
		UsersyncInfo: syncer.GetUsersyncInfo(),
	}
}

type cookieSyncResponse struct {
	Status       string                        `json:"status"`
	BidderStatus []*usersync.CookieSyncBidders `json:"bidder_status"`
}

// newCookieSyncResponse reports "no_cookie" when the browser holds no live uid for any bidder,
// requested or not. A partially synced browser is "ok" even though some bidders still need a sync.
func newCookieSyncResponse(cookie usersync.SyncState, bidderStatus []*usersync.CookieSyncBidders) *cookieSyncResponse {
	if bidderStatus == nil {
		bidderStatus = make([]*usersync.CookieSyncBidders, 0)
	}
	status := cookieSyncStatusOK
	if !cookie.HasAnyLiveSyncs() {
		status = cookieSyncStatusNoCookie
	}
	return &cookieSyncResponse{
		Status:       status,
		BidderStatus: bidderStatus,
	}
}
