package pbsmetrics

import (
	"github.com/stretchr/testify/mock"
)

// MetricsEngineMock is mock for the MetricsEngine interface
type MetricsEngineMock struct {
	mock.Mock
}

// RecordConnectionAccept mock
func (me *MetricsEngineMock) RecordConnectionAccept(success bool) {
	me.Called(success)
}

// RecordConnectionClose mock
func (me *MetricsEngineMock) RecordConnectionClose(success bool) {
	me.Called(success)
}

// RecordCookieSync mock
func (me *MetricsEngineMock) RecordCookieSync() {
	me.Called()
}

// RecordUserIDSet mock
func (me *MetricsEngineMock) RecordUserIDSet(userLabels UserLabels) {
	me.Called(userLabels)
}
