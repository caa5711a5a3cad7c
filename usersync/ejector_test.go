package usersync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOldestEjectorChoose(t *testing.T) {
	now := time.Now()

	testCases := []struct {
		description   string
		givenUids     map[string]UIDEntry
		givenEjector  *OldestEjector
		expected      string
		expectedError string
	}{
		{
			description: "Oldest",
			givenUids: map[string]UIDEntry{
				"newestElement": {UID: "123", Expires: now.Add(90 * 24 * time.Hour)},
				"oldestElement": {UID: "456", Expires: now},
			},
			givenEjector: &OldestEjector{},
			expected:     "oldestElement",
		},
		{
			description: "Protected Key Skipped",
			givenUids: map[string]UIDEntry{
				"newestElement": {UID: "123", Expires: now.Add(90 * 24 * time.Hour)},
				"oldestElement": {UID: "456", Expires: now},
			},
			givenEjector: &OldestEjector{ProtectedKey: "oldestElement"},
			expected:     "newestElement",
		},
		{
			description: "Tie Broken By Key",
			givenUids: map[string]UIDEntry{
				"b": {UID: "123", Expires: now},
				"a": {UID: "456", Expires: now},
				"c": {UID: "789", Expires: now},
			},
			givenEjector: &OldestEjector{},
			expected:     "a",
		},
		{
			description:   "Empty",
			givenUids:     map[string]UIDEntry{},
			givenEjector:  &OldestEjector{},
			expectedError: "no uid is eligible for ejection",
		},
		{
			description: "Only Protected",
			givenUids: map[string]UIDEntry{
				"adnxs": {UID: "123", Expires: now},
			},
			givenEjector:  &OldestEjector{ProtectedKey: "adnxs"},
			expectedError: "no uid is eligible for ejection",
		},
	}

	for _, test := range testCases {
		result, err := test.givenEjector.Choose(test.givenUids)

		if test.expectedError == "" {
			assert.NoError(t, err, test.description)
			assert.Equal(t, test.expected, result, test.description)
		} else {
			assert.EqualError(t, err, test.expectedError, test.description)
		}
	}
}
