package router

import (
	"fmt"
	"net/http"

	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
	"github.com/prebid/prebid-cookiesync/config"
	"github.com/prebid/prebid-cookiesync/endpoints"
	"github.com/prebid/prebid-cookiesync/errortypes"
	"github.com/prebid/prebid-cookiesync/openrtb_ext"
	metricsConf "github.com/prebid/prebid-cookiesync/pbsmetrics/config"
	"github.com/prebid/prebid-cookiesync/usersync"
	"github.com/prebid/prebid-cookiesync/usersync/usersyncers"
	"github.com/rs/cors"
)

type NoCache struct {
	Handler http.Handler
}

func (m NoCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Add("Pragma", "no-cache")
	w.Header().Add("Expires", "0")
	m.Handler.ServeHTTP(w, r)
}

type Router struct {
	*httprouter.Router
	MetricsEngine *metricsConf.DetailedMetricsEngine
	Catalog       usersync.BidderCatalog
}

// New builds the bidder catalog and the metrics engines from the config, and routes the user sync
// endpoints to them.
func New(cfg *config.Configuration) (r *Router, err error) {
	r = &Router{
		Router: httprouter.New(),
	}

	bidderInfos, err := config.LoadBidderInfoFromDisk(cfg.BidderInfoDir, cfg.Adapters, openrtb_ext.BuildBidderStringSlice())
	if err != nil {
		return nil, err
	}
	if errs := bidderInfos.Validate(nil); len(errs) > 0 {
		return nil, errortypes.NewAggregateErrors("bidder info validation", errs)
	}

	syncers, err := usersyncers.NewSyncerMap(cfg, bidderInfos)
	if err != nil {
		return nil, fmt.Errorf("failed to build the user syncers: %v", err)
	}
	r.Catalog = usersync.NewSyncerCatalog(syncers)
	glog.Infof("Loaded user syncs for %d bidders", len(r.Catalog.Names()))

	r.MetricsEngine = metricsConf.NewMetricsEngine(cfg, openrtb_ext.CoreBidderNames())

	cookieParser := usersync.NewCookieParser(usersync.Base64Decoder{}, &cfg.HostCookie)

	r.POST("/cookie_sync", endpoints.NewCookieSyncEndpoint(cookieParser, r.Catalog, r.MetricsEngine, cfg.CookieSync))
	r.GET("/setuid", endpoints.NewSetUIDEndpoint(cfg.HostCookie, cookieParser, r.Catalog, r.MetricsEngine))
	r.GET("/getuids", endpoints.NewGetUIDsEndpoint(cfg.HostCookie, cookieParser))
	r.GET("/status", endpoints.NewStatusEndpoint(cfg.StatusResponse))

	return r, nil
}

// SupportCORS lets publisher pages call the endpoints with XMLHttpRequest.withCredentials, so the
// uids cookie is sent along. Every origin is allowed, which requires echoing it back.
//
// For more info, see:
//
// - https://github.com/rs/cors/issues/55
// - https://developer.mozilla.org/en-US/docs/Web/HTTP/CORS/Errors/CORSNotSupportingCredentials
func SupportCORS(handler http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowCredentials: true,
		AllowOriginFunc: func(string) bool {
			return true
		},
		AllowedHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept"}})
	return c.Handler(handler)
}
