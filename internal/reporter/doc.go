// Package reporter maps merged HAProxy stats records onto statsd gauges.
//
// Report walks the records in order and, for each row that passes the
// optional FRONTEND/BACKEND filter, sends the 16 TrackedFields as gauges named
// "<namespace>.<pxname>.<svname>.<field>". It returns the number of gauges
// sent, always 16 times the number of reported rows.
package reporter
