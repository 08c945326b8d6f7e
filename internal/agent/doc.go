// Package agent owns the polling loop of the reporter.
//
// Runner.RunOnce is one cycle: haproxy.Fetcher.Fetch over every configured
// URL, then reporter.Report into the statsd sink, then an info log line with
// the number of gauges sent. Runner.Run repeats it on a ticker until the
// context is cancelled.
//
// Nothing is carried from one cycle to the next. A failed fetch reports
// nothing for that cycle; the next tick simply tries again.
package agent
