// Package config loads the reporter configuration file (haproxy-statsd.yaml).
//
// Keys:
//   - haproxy_url — one stats URL or a list of them; all are polled every cycle
//   - haproxy_user, haproxy_password — basic auth applied to every URL when
//     haproxy_user is set
//   - haproxy_timeout, haproxy_insecure_skip_verify — HTTP client options
//   - statsd_host, statsd_port — destination of the gauge datagrams
//   - statsd_namespace — metric path prefix; (HOSTNAME) is replaced with the
//     local host name (fully qualified when use_fqdn is set)
//   - interval — seconds between polling cycles
//
// statsd_port and interval accept both integers and quoted integers, so
// existing haproxy-statsd.yaml files with quoted numbers load unchanged.
//
// Load(path) applies the defaults (127.0.0.1:1936 stats page, 127.0.0.1:8125
// statsd, "haproxy.(HOSTNAME)" namespace, 5s interval) and then validates.
//
// Watch(ctx, path, current, onChange) uses fsnotify to notice edits to the
// file and passes onChange the keys that changed (see Diff). The configuration
// is fixed for the life of the process, so callers only log that a restart is
// required.
package config
