package endpoints

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
	"github.com/mssola/user_agent"
	"github.com/prebid/prebid-cookiesync/config"
	"github.com/prebid/prebid-cookiesync/openrtb_ext"
	"github.com/prebid/prebid-cookiesync/pbsmetrics"
	"github.com/prebid/prebid-cookiesync/usersync"
)

const (
	chromeBrowserName = "Chrome"
	chromeMinVer      = 67
)

// NewSetUIDEndpoint implements /setuid, the callback bidders redirect the browser to once they know
// the user's uid. The "bidder" query param holds the family name the uid is stored under.
func NewSetUIDEndpoint(cfg config.HostCookie, parser usersync.CookieParser, catalog usersync.BidderCatalog, metricsEngine pbsmetrics.MetricsEngine) httprouter.Handle {
	// Metrics are recorded by bidder, while the cookie is keyed by family name.
	familyToBidder := make(map[string]openrtb_ext.BidderName)
	for _, bidder := range catalog.Names() {
		if syncer, ok := catalog.Usersyncer(bidder); ok {
			familyToBidder[syncer.FamilyName()] = openrtb_ext.BidderName(bidder)
		}
	}

	return httprouter.Handle(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		pc := parser.ParseCookie(r)
		if !pc.AllowSyncs() {
			w.WriteHeader(http.StatusUnauthorized)
			metricsEngine.RecordUserIDSet(pbsmetrics.UserLabels{
				Action: pbsmetrics.RequestActionOptOut,
			})
			return
		}

		query := r.URL.Query()

		familyName, err := getFamilyName(query, familyToBidder)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(err.Error()))
			metricsEngine.RecordUserIDSet(pbsmetrics.UserLabels{
				Action: pbsmetrics.RequestActionErr,
			})
			return
		}
		labels := pbsmetrics.UserLabels{
			Action: pbsmetrics.RequestActionSet,
			Bidder: familyToBidder[familyName],
		}

		uid := query.Get("uid")
		if uid == "" {
			pc.Unsync(familyName)
			labels.Action = pbsmetrics.RequestActionUnset
		} else if err := pc.Sync(familyName, uid); err != nil {
			glog.V(2).Infof("/setuid did not sync %s: %v", familyName, err)
			labels.Action = pbsmetrics.RequestActionErr
		}

		encoded, err := pc.PrepareCookieForWrite(&cfg, usersync.Base64Encoder{}, &usersync.OldestEjector{ProtectedKey: familyName})
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(err.Error()))
			metricsEngine.RecordUserIDSet(pbsmetrics.UserLabels{
				Action: pbsmetrics.RequestActionErr,
				Bidder: labels.Bidder,
			})
			return
		}

		metricsEngine.RecordUserIDSet(labels)
		usersync.WriteCookie(w, encoded, &cfg, siteCookieCheck(r.UserAgent()))
	})
}

func getFamilyName(query url.Values, validFamilyNames map[string]openrtb_ext.BidderName) (string, error) {
	// The family name is bound to the 'bidder' query param. In most cases, these values are the same.
	familyName := query.Get("bidder")

	if familyName == "" {
		return "", errors.New(`"bidder" query param is required`)
	}

	if _, ok := validFamilyNames[familyName]; !ok {
		return "", errors.New("The bidder name provided is not supported by Prebid Server")
	}

	return familyName, nil
}

// siteCookieCheck reports whether the browser is a Chrome release which requires SameSite=None on
// third party cookies.
func siteCookieCheck(ua string) bool {
	name, version := user_agent.New(ua).Browser()
	if name != chromeBrowserName {
		return false
	}
	major, err := strconv.Atoi(strings.SplitN(version, ".", 2)[0])
	return err == nil && major >= chromeMinVer
}
