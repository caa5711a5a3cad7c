package endpoints

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/buger/jsonparser"
	"github.com/prebid/prebid-cookiesync/config"
	"github.com/prebid/prebid-cookiesync/usersync"
	"github.com/stretchr/testify/assert"
)

func TestGetUIDs(t *testing.T) {
	req := makeRequest("/getuids", map[string]string{"adnxs": "123", "rubicon": "456"})
	rr := doGetUIDs(req, config.HostCookie{TTL: 90})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assertBuyerUID(t, rr.Body.Bytes(), "adnxs", "123")
	assertBuyerUID(t, rr.Body.Bytes(), "rubicon", "456")
}

func TestGetUIDsNoCookie(t *testing.T) {
	rr := doGetUIDs(httptest.NewRequest("GET", "/getuids", nil), config.HostCookie{TTL: 90})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{}`, rr.Body.String())
}

func TestGetUIDsCopiesHostCookie(t *testing.T) {
	hostCookie := config.HostCookie{
		TTL:        90,
		Family:     "prebid",
		CookieName: "hostid",
	}
	req := makeRequest("/getuids", map[string]string{"adnxs": "123"})
	req.AddCookie(&http.Cookie{Name: "hostid", Value: "host-uid"})
	rr := doGetUIDs(req, hostCookie)

	assertBuyerUID(t, rr.Body.Bytes(), "adnxs", "123")
	assertBuyerUID(t, rr.Body.Bytes(), "prebid", "host-uid")
}

func doGetUIDs(req *http.Request, hostCookie config.HostCookie) *httptest.ResponseRecorder {
	endpoint := NewGetUIDsEndpoint(hostCookie, usersync.NewCookieParser(usersync.Base64Decoder{}, &hostCookie))
	rr := httptest.NewRecorder()
	endpoint(rr, req, nil)
	return rr
}

func assertBuyerUID(t *testing.T, response []byte, family string, expected string) {
	t.Helper()
	uid, err := jsonparser.GetString(response, "buyeruids", family)
	if assert.NoError(t, err, family) {
		assert.Equal(t, expected, uid, family)
	}
}
