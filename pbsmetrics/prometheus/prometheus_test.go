package prometheusmetrics

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/prebid/prebid-cookiesync/config"
	"github.com/prebid/prebid-cookiesync/openrtb_ext"
	"github.com/prebid/prebid-cookiesync/pbsmetrics"
	dto "github.com/prometheus/client_model/go"
)

var gaugeValueRegexp = regexp.MustCompile("gauge:<value:([0-9]+) >")
var counterValueRegexp = regexp.MustCompile("counter:<value:([0-9]+) >")

func TestConnectionMetrics(t *testing.T) {
	proMetrics := newTestMetricsEngine()

	metricConn := dto.Metric{}
	metricConnErrA := dto.Metric{}
	metricConnErrC := dto.Metric{}
	proMetrics.RecordConnectionAccept(true)
	proMetrics.RecordConnectionAccept(true)
	proMetrics.RecordConnectionClose(true)
	proMetrics.RecordConnectionAccept(true)
	proMetrics.RecordConnectionAccept(false)
	proMetrics.RecordConnectionClose(false)

	proMetrics.connCounter.Write(&metricConn)
	proMetrics.connError.WithLabelValues("accept_error").Write(&metricConnErrA)
	proMetrics.connError.WithLabelValues("close_error").Write(&metricConnErrC)

	assertGaugeValue(t, "connCounter", &metricConn, 2)
	assertCounterValue(t, "connError[accept_error]", &metricConnErrA, 1)
	assertCounterValue(t, "connError[close_error]", &metricConnErrC, 1)
}

func TestCookieMetrics(t *testing.T) {
	proMetrics := newTestMetricsEngine()

	metrics0 := dto.Metric{}
	proMetrics.RecordCookieSync()
	proMetrics.RecordCookieSync()
	proMetrics.RecordCookieSync()

	proMetrics.cookieSync.Write(&metrics0)

	assertCounterValue(t, "cookieSync", &metrics0, 3)
}

func TestUserMetrics(t *testing.T) {
	proMetrics := newTestMetricsEngine()

	metrics0 := dto.Metric{}
	metrics1 := dto.Metric{}
	metrics2 := dto.Metric{}
	metrics3 := dto.Metric{}

	proMetrics.RecordUserIDSet(userLabels[0])
	proMetrics.RecordUserIDSet(userLabels[1])
	proMetrics.RecordUserIDSet(userLabels[0])
	proMetrics.RecordUserIDSet(userLabels[2])
	proMetrics.RecordUserIDSet(userLabels[0])

	proMetrics.userID.With(resolveUserSyncLabels(userLabels[0])).Write(&metrics0)
	proMetrics.userID.With(resolveUserSyncLabels(userLabels[1])).Write(&metrics1)
	proMetrics.userID.With(resolveUserSyncLabels(userLabels[2])).Write(&metrics2)
	proMetrics.userID.With(resolveUserSyncLabels(userLabels[3])).Write(&metrics3)

	assertCounterValue(t, "userID[0]", &metrics0, 3)
	assertCounterValue(t, "userID[1]", &metrics1, 1)
	assertCounterValue(t, "userID[2]", &metrics2, 1)
	assertCounterValue(t, "userID[3]", &metrics3, 0)
}

func TestEnginesHaveSeparateRegistries(t *testing.T) {
	first := newTestMetricsEngine()
	second := newTestMetricsEngine()

	first.RecordCookieSync()

	families, err := second.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, family := range families {
		if family.GetName() == "prebid_cookie_sync_requests_total" {
			if v := family.GetMetric()[0].GetCounter().GetValue(); v != 0 {
				t.Errorf("Second engine should not see the first engine's cookie syncs. Got %f", v)
			}
		}
	}
}

func newTestMetricsEngine() *Metrics {
	return NewMetrics(config.PrometheusMetrics{
		Port:      8080,
		Namespace: "prebid",
		Subsystem: "",
	})
}

var userLabels = []pbsmetrics.UserLabels{
	{
		Action: pbsmetrics.RequestActionSet,
		Bidder: openrtb_ext.BidderAppnexus,
	},
	{
		Action: pbsmetrics.RequestActionUnset,
		Bidder: openrtb_ext.BidderAppnexus,
	},
	{
		Action: pbsmetrics.RequestActionSet,
		Bidder: openrtb_ext.BidderRubicon,
	},
	{
		Action: pbsmetrics.RequestActionOptOut,
		Bidder: openrtb_ext.BidderOpenx,
	},
}

func assertGaugeValue(t *testing.T, name string, m *dto.Metric, expected int) {
	v, err := strconv.Atoi(gaugeValueRegexp.FindStringSubmatch(m.String())[1])
	if err != nil {
		t.Errorf("Could not extract the value for metric %s. (output was %s, error was %v)", name, m.String(), err)
	}
	if v != expected {
		t.Errorf("Bad value for metric %s: expected=\"%d\", found=\"%d\"", name, expected, v)
	}
}

func assertCounterValue(t *testing.T, name string, m *dto.Metric, expected int) {
	v, err := strconv.Atoi(counterValueRegexp.FindStringSubmatch(m.String())[1])
	if err != nil {
		t.Errorf("Could not extract the value for metric %s. (output was %s, error was %v)", name, m.String(), err)
	}
	if v != expected {
		t.Errorf("Bad value for metric %s: expected=\"%d\", found=\"%d\"", name, expected, v)
	}
}
