package reporter

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/obsidianstack/haproxy-statsd/internal/haproxy"
	"github.com/obsidianstack/haproxy-statsd/internal/statsd"
)

// TrackedFields are the stats columns sent for every reported row, in send
// order. The list is fixed so the metric set stays the same across HAProxy
// versions that export different columns.
var TrackedFields = [...]string{
	"scur", "smax", "ereq", "econ", "rate", "bin", "bout",
	"hrsp_1xx", "hrsp_2xx", "hrsp_3xx", "hrsp_4xx", "hrsp_5xx",
	"qtime", "ctime", "rtime", "ttime",
}

// Report sends one gauge per (record, tracked field) to sink, under the path
// "<namespace>.<pxname>.<svname>.<field>", and returns how many gauges it sent.
//
// With excludeProxies set, only FRONTEND and BACKEND rows are reported.
// Absent, empty or non-numeric values are sent as 0.
//
// A failed send does not stop the report: every gauge is attempted and
// counted, and the send errors are returned joined.
func Report(records []haproxy.Record, sink statsd.Sink, namespace string, excludeProxies bool) (int, error) {
	var (
		count int
		errs  []error
	)
	for _, rec := range records {
		if excludeProxies && !rec.IsAggregate() {
			continue
		}
		prefix := strings.Join([]string{namespace, rec.Proxy(), rec.Service()}, ".")

		for _, field := range TrackedFields {
			if err := sink.Gauge(prefix+"."+field, value(rec, field)); err != nil {
				errs = append(errs, err)
			}
			count++
		}
	}
	return count, errors.Join(errs...)
}

// value returns rec[field] as a statsd.Value, 0 when absent, empty or
// unparseable. Integer counters are kept exact.
func value(rec haproxy.Record, field string) statsd.Value {
	raw := rec[field]
	if raw == "" {
		return statsd.Int(0)
	}
	v, err := statsd.ParseValue(raw)
	if err != nil {
		slog.Debug("reporter: non-numeric stat, sending 0",
			"proxy", rec.Proxy(), "service", rec.Service(), "field", field, "value", raw)
		return statsd.Int(0)
	}
	return v
}
