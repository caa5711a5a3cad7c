package endpoints

import (
	"net/http"
)

const versionNotSet = "not-set"

type versionResponse struct {
	Revision string `json:"revision"`
	Version  string `json:"version"`
}

// NewVersionEndpoint reports the git tag and commit the binary was built from.
func NewVersionEndpoint(version, revision string) http.HandlerFunc {
	resp := versionResponse{
		Revision: orNotSet(revision),
		Version:  orNotSet(version),
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, "/version", resp)
	}
}

func orNotSet(value string) string {
	if value == "" {
		return versionNotSet
	}
	return value
}
