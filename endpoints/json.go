package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/golang/glog"
)

// writeJSON writes a 200 with the JSON body. HTML escaping is off so sync URLs keep their '&'.
func writeJSON(w http.ResponseWriter, endpoint string, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		glog.Errorf("%s failed to write the response: %v", endpoint, err)
	}
}
