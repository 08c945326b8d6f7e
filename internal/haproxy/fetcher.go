package haproxy

import (
	"context"
	"crypto/tls"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Record is one row of the stats CSV, keyed by header column name.
// Values are kept as the raw strings HAProxy exported.
type Record map[string]string

// Proxy returns the pxname column.
func (r Record) Proxy() string { return r["pxname"] }

// Service returns the svname column: FRONTEND, BACKEND or a server name.
func (r Record) Service() string { return r["svname"] }

// IsAggregate reports whether the row is a FRONTEND or BACKEND total rather
// than an individual server or listener.
func (r Record) IsAggregate() bool {
	switch r.Service() {
	case "FRONTEND", "BACKEND":
		return true
	}
	return false
}

// Options configures the HTTP client used by a Fetcher.
type Options struct {
	// Username and Password are sent as basic auth when Username is non-empty.
	Username string
	Password string

	// Timeout bounds a single request. Zero means no client timeout.
	Timeout time.Duration

	// InsecureSkipVerify disables certificate checks for https stats pages.
	InsecureSkipVerify bool
}

// Fetcher retrieves and merges HAProxy CSV stats from one or more stats pages.
type Fetcher struct {
	client *http.Client
}

// New returns a Fetcher whose HTTP client is built once from opts and reused
// for every Fetch.
func New(opts Options) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // user-configured
		}
	}

	var rt http.RoundTripper = transport
	if opts.Username != "" {
		rt = &basicAuthRoundTripper{
			base:     transport,
			username: opts.Username,
			password: opts.Password,
		}
	}
	return &Fetcher{
		client: &http.Client{Transport: rt, Timeout: opts.Timeout},
	}
}

// basicAuthRoundTripper adds the configured credentials to every request.
type basicAuthRoundTripper struct {
	base     http.RoundTripper
	username string
	password string
}

func (t *basicAuthRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(req)
}

// Fetch polls every url in order and returns their rows merged into one
// sequence: all rows of urls[0], then all rows of urls[1], and so on.
//
// The header line of the first url ("# pxname,svname,...") names the columns
// for every row. Header lines of later urls are discarded, so stats pages with
// different column sets are misread rather than rejected.
//
// Any request error or non-2xx status fails the whole call; no partial
// result is returned.
func (f *Fetcher) Fetch(ctx context.Context, urls ...string) ([]Record, error) {
	if len(urls) == 0 {
		return nil, errors.New("haproxy: no stats urls")
	}

	var header string
	var rows []string
	for i, u := range urls {
		body, err := f.get(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("haproxy: fetch %q: %w", u, err)
		}
		lines := splitLines(body)
		if len(lines) == 0 {
			return nil, fmt.Errorf("haproxy: fetch %q: empty response", u)
		}
		if i == 0 {
			header = strings.TrimLeft(lines[0], "# ")
			if header == "" {
				return nil, fmt.Errorf("haproxy: fetch %q: missing csv header", u)
			}
		}
		rows = append(rows, lines[1:]...)
		slog.Debug("haproxy: fetched stats", "url", u, "rows", len(lines)-1)
	}

	return parse(header, rows)
}

// get performs a GET on url and returns the full response body.
func (f *Fetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}

// splitLines splits body on line endings. A trailing newline does not
// produce an extra empty line.
func splitLines(body string) []string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.TrimSuffix(body, "\n")
	if body == "" {
		return nil
	}
	return strings.Split(body, "\n")
}

// parse reads header and rows as one CSV document. Short rows leave the
// missing columns absent from their Record; extra fields are dropped.
func parse(header string, rows []string) ([]Record, error) {
	doc := header + "\n" + strings.Join(rows, "\n")

	r := csv.NewReader(strings.NewReader(doc))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	columns, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("haproxy: parse csv header: %w", err)
	}

	records := make([]Record, 0, len(rows))
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("haproxy: parse csv: %w", err)
		}
		rec := make(Record, len(columns))
		for j, name := range columns {
			// HAProxy ends every line with a comma, leaving an unnamed last column.
			if name == "" || j >= len(fields) {
				continue
			}
			rec[name] = fields[j]
		}
		records = append(records, rec)
	}
	return records, nil
}
