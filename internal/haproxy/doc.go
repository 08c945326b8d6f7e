// Package haproxy retrieves HAProxy statistics from the CSV export of the
// stats page (the ";csv" URL suffix).
//
// Fetcher.Fetch polls each configured URL in turn, strips the "# " comment
// marker from the first header line, and merges the data rows of every URL
// under that single header into an ordered []Record. Values stay strings;
// numeric coercion is left to whoever emits them.
//
// Basic authentication is added by a round tripper in New() when a username
// is configured, so it applies identically to every URL.
package haproxy
