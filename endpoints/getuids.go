package endpoints

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prebid/prebid-cookiesync/config"
	"github.com/prebid/prebid-cookiesync/usersync"
)

type buyerUIDsResponse struct {
	BuyerUIDs map[string]string `json:"buyeruids,omitempty"`
}

// NewGetUIDsEndpoint implements /getuids, which echoes the uids in the browser's cookie keyed by
// family name. Expired uids are included. The host's own id cookie shows up under host_cookie.family.
func NewGetUIDsEndpoint(cfg config.HostCookie, parser usersync.CookieParser) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		cookie := parser.ParseCookie(r)
		usersync.SyncHostCookie(r, cookie, &cfg)
		writeJSON(w, "/getuids", buyerUIDsResponse{BuyerUIDs: cookie.UIDs()})
	}
}
