package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	fqdn "github.com/Showmax/go-fqdn"
	"gopkg.in/yaml.v3"
)

// Default values applied when keys are absent from the config file.
const (
	DefaultPath      = "./haproxy-statsd.yaml"
	DefaultURL       = "http://127.0.0.1:1936/;csv"
	DefaultHost      = "127.0.0.1"
	DefaultPort      = 8125
	DefaultNamespace = "haproxy.(HOSTNAME)"
	DefaultInterval  = 5
)

// HostnamePlaceholder is replaced with the local hostname in statsd_namespace.
const HostnamePlaceholder = "(HOSTNAME)"

// Config is the reporter configuration. Keys map 1:1 to haproxy-statsd.yaml.
type Config struct {
	// HAProxyURLs lists the CSV stats pages to poll. A single string is
	// accepted as a one-element list.
	HAProxyURLs URLList `yaml:"haproxy_url"`

	// HAProxyUser and HAProxyPassword are sent as basic auth to every URL
	// when HAProxyUser is non-empty.
	HAProxyUser     string `yaml:"haproxy_user"`
	HAProxyPassword string `yaml:"haproxy_password"`

	// HAProxyTimeout bounds each stats request. Zero leaves the HTTP client
	// without a timeout, so a hung stats page stalls the polling loop.
	HAProxyTimeout time.Duration `yaml:"haproxy_timeout"`

	// HAProxyInsecureSkipVerify disables certificate checks for https stats pages.
	HAProxyInsecureSkipVerify bool `yaml:"haproxy_insecure_skip_verify"`

	StatsdHost string `yaml:"statsd_host"`
	StatsdPort Int    `yaml:"statsd_port"`

	// StatsdNamespace prefixes every metric path. May contain (HOSTNAME).
	StatsdNamespace string `yaml:"statsd_namespace"`

	// UseFQDN resolves (HOSTNAME) to the fully-qualified host name.
	UseFQDN bool `yaml:"use_fqdn"`

	// Interval is the number of seconds between polling cycles.
	Interval Int `yaml:"interval"`
}

// URLList is a list of URLs that also decodes from a single YAML string.
type URLList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (u *URLList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*u = URLList{value.Value}
		return nil
	case yaml.SequenceNode:
		var urls []string
		if err := value.Decode(&urls); err != nil {
			return err
		}
		*u = urls
		return nil
	default:
		return fmt.Errorf("line %d: expected a url or a list of urls", value.Line)
	}
}

// Int is an integer that also decodes from a quoted YAML string ("8125").
type Int int

// UnmarshalYAML implements yaml.Unmarshaler.
func (i *Int) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected an integer", value.Line)
	}
	n, err := strconv.Atoi(strings.TrimSpace(value.Value))
	if err != nil {
		return fmt.Errorf("line %d: %q is not an integer", value.Line, value.Value)
	}
	*i = Int(n)
	return nil
}

// IntervalDuration returns Interval as a time.Duration.
func (c *Config) IntervalDuration() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// StatsdAddr returns the host:port the gauges are sent to.
func (c *Config) StatsdAddr() string {
	return fmt.Sprintf("%s:%d", c.StatsdHost, c.StatsdPort)
}

// Namespace returns StatsdNamespace with the hostname placeholder resolved.
// The hostname is only looked up when the placeholder is present.
func (c *Config) Namespace() (string, error) {
	if !strings.Contains(c.StatsdNamespace, HostnamePlaceholder) {
		return c.StatsdNamespace, nil
	}
	host, err := Hostname(c.UseFQDN)
	if err != nil {
		return "", fmt.Errorf("config: resolve hostname: %w", err)
	}
	return ResolveNamespace(c.StatsdNamespace, host), nil
}

// ResolveNamespace replaces every (HOSTNAME) in ns with host.
func ResolveNamespace(ns, host string) string {
	return strings.ReplaceAll(ns, HostnamePlaceholder, host)
}

// Hostname returns the local host name. With useFQDN it tries the
// fully-qualified name first and falls back to the plain one.
func Hostname(useFQDN bool) (string, error) {
	if useFQDN {
		host, err := fqdn.FqdnHostname()
		if err == nil && host != "" && host != "localhost" && host != "unknown" {
			return host, nil
		}
		slog.Warn("config: fully qualified hostname unavailable, using plain hostname", "err", err)
	}
	return os.Hostname()
}

// Load reads and parses the YAML config file at path.
// Missing keys are filled with the defaults above.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		HAProxyURLs:     URLList{DefaultURL},
		StatsdHost:      DefaultHost,
		StatsdPort:      DefaultPort,
		StatsdNamespace: DefaultNamespace,
		Interval:        DefaultInterval,
	}
}

// validate checks required fields and ranges.
func validate(cfg *Config) error {
	if len(cfg.HAProxyURLs) == 0 {
		return fmt.Errorf("haproxy_url is required")
	}
	for i, u := range cfg.HAProxyURLs {
		if strings.TrimSpace(u) == "" {
			return fmt.Errorf("haproxy_url[%d] is empty", i)
		}
	}
	if cfg.StatsdHost == "" {
		return fmt.Errorf("statsd_host is required")
	}
	if cfg.StatsdPort < 1 || cfg.StatsdPort > 65535 {
		return fmt.Errorf("statsd_port %d out of range", cfg.StatsdPort)
	}
	if cfg.StatsdNamespace == "" {
		return fmt.Errorf("statsd_namespace is required")
	}
	if cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if cfg.HAProxyTimeout < 0 {
		return fmt.Errorf("haproxy_timeout must not be negative")
	}
	return nil
}
