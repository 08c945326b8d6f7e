// Package statsd provides the gauge sinks the reporter writes to.
//
// Client is the production sink: an unbuffered cactus go-statsd-client, one
// datagram per gauge, payload "<path>:<value>|g". UDP gives no delivery
// signal, so an error from Gauge only means the local send failed; callers
// log it and move on.
//
// Value keeps integer readings exact (int64, or uint64 past MaxInt64) and
// falls back to float64 only for fractional input.
//
// TextSink renders the same gauges in Prometheus text format for dry runs.
package statsd
