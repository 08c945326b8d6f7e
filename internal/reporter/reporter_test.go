package reporter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsidianstack/haproxy-statsd/internal/haproxy"
	"github.com/obsidianstack/haproxy-statsd/internal/statsd"
)

type gauge struct {
	name  string
	value string
}

// recordingSink keeps every gauge it receives and optionally fails some.
type recordingSink struct {
	gauges []gauge
	failOn map[string]bool
}

func (s *recordingSink) Gauge(name string, value statsd.Value) error {
	s.gauges = append(s.gauges, gauge{name, value.String()})
	if s.failOn[name] {
		return fmt.Errorf("send %s: connection refused", name)
	}
	return nil
}

func (s *recordingSink) byName() map[string]string {
	m := make(map[string]string, len(s.gauges))
	for _, g := range s.gauges {
		m[g.name] = g.value
	}
	return m
}

func TestTrackedFields(t *testing.T) {
	require.Len(t, TrackedFields, 16)
	assert.Equal(t, "scur", TrackedFields[0])
	assert.Equal(t, "ttime", TrackedFields[15])
}

func TestReport_DefaultsMissingFieldsToZero(t *testing.T) {
	sink := &recordingSink{}
	recs := []haproxy.Record{{"pxname": "web", "svname": "BACKEND", "scur": "5"}}

	n, err := Report(recs, sink, "haproxy.web01", false)
	require.NoError(t, err)
	require.Equal(t, 16, n)
	require.Len(t, sink.gauges, 16)

	zeros := 0
	for _, g := range sink.gauges {
		if g.value == "0" {
			zeros++
		}
	}
	assert.Equal(t, 15, zeros)
	assert.Equal(t, gauge{"haproxy.web01.web.BACKEND.scur", "5"}, sink.gauges[0])
}

func TestReport_FieldOrder(t *testing.T) {
	sink := &recordingSink{}
	recs := []haproxy.Record{{"pxname": "web", "svname": "FRONTEND"}}

	_, err := Report(recs, sink, "ns", false)
	require.NoError(t, err)

	for i, field := range TrackedFields {
		assert.Equal(t, "ns.web.FRONTEND."+field, sink.gauges[i].name)
	}
}

func TestReport_ExcludeProxies(t *testing.T) {
	recs := []haproxy.Record{
		{"pxname": "web", "svname": "FRONTEND", "scur": "3"},
		{"pxname": "web", "svname": "server1", "scur": "1"},
		{"pxname": "web", "svname": "BACKEND", "scur": "7"},
	}

	cases := []struct {
		exclude bool
		want    int
	}{
		{false, 48},
		{true, 32},
	}
	for i := range cases {
		tt := cases[i]
		t.Run(fmt.Sprintf("exclude=%v", tt.exclude), func(t *testing.T) {
			sink := &recordingSink{}
			n, err := Report(recs, sink, "haproxy", tt.exclude)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
			assert.Len(t, sink.gauges, tt.want)

			_, hasServer := sink.byName()["haproxy.web.server1.scur"]
			assert.Equal(t, !tt.exclude, hasServer)
		})
	}
}

func TestReport_ExcludeOnlyServerRow(t *testing.T) {
	sink := &recordingSink{}
	n, err := Report([]haproxy.Record{{"pxname": "web", "svname": "server1"}}, sink, "haproxy", true)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, sink.gauges)
}

func TestReport_Values(t *testing.T) {
	sink := &recordingSink{}
	recs := []haproxy.Record{{
		"pxname": "app", "svname": "web1",
		"bin": "1830421", "econ": "", "rtime": "n/a", "qtime": "12",
	}}

	_, err := Report(recs, sink, "haproxy", false)
	require.NoError(t, err)

	got := sink.byName()
	assert.Equal(t, "1830421", got["haproxy.app.web1.bin"])
	assert.Equal(t, "0", got["haproxy.app.web1.econ"])
	assert.Equal(t, "0", got["haproxy.app.web1.rtime"])
	assert.Equal(t, "12", got["haproxy.app.web1.qtime"])
}

func TestReport_LargeCountersStayExact(t *testing.T) {
	sink := &recordingSink{}
	recs := []haproxy.Record{{
		"pxname": "web", "svname": "BACKEND",
		"bin":  "9007199254740993",
		"bout": "18446744073709551615",
		"scur": "9223372036854775807",
	}}

	_, err := Report(recs, sink, "ns", false)
	require.NoError(t, err)

	got := sink.byName()
	assert.Equal(t, "9007199254740993", got["ns.web.BACKEND.bin"])
	assert.Equal(t, "18446744073709551615", got["ns.web.BACKEND.bout"])
	assert.Equal(t, "9223372036854775807", got["ns.web.BACKEND.scur"])
}

func TestReport_NoRecords(t *testing.T) {
	n, err := Report(nil, &recordingSink{}, "haproxy", false)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReport_SendErrorsContinue(t *testing.T) {
	sink := &recordingSink{failOn: map[string]bool{
		"haproxy.web.FRONTEND.scur": true,
		"haproxy.web.BACKEND.ttime": true,
	}}
	recs := []haproxy.Record{
		{"pxname": "web", "svname": "FRONTEND"},
		{"pxname": "web", "svname": "BACKEND"},
	}

	n, err := Report(recs, sink, "haproxy", false)
	require.Error(t, err)
	assert.Equal(t, 32, n)
	assert.Len(t, sink.gauges, 32)
	assert.Contains(t, err.Error(), "haproxy.web.FRONTEND.scur")
	assert.Contains(t, err.Error(), "haproxy.web.BACKEND.ttime")

	var joined interface{ Unwrap() []error }
	require.True(t, errors.As(err, &joined))
	assert.Len(t, joined.Unwrap(), 2)
}
