package router

import (
	"net/http"
	"net/http/pprof"

	"github.com/prebid/prebid-cookiesync/endpoints"
)

// Admin returns the handler of the admin port: pprof and /version.
func Admin(version, revision string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/version", endpoints.NewVersionEndpoint(version, revision))
	return mux
}
