package statsd

import (
	"fmt"
	"io"
	"regexp"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

var invalidChars = regexp.MustCompile(`[^a-zA-Z0-9_:]`)

// TextSink writes every gauge to w in the Prometheus text exposition format
// instead of sending it. It backs the --dry-run mode.
//
// The metric name is the dotted path with invalid characters replaced by
// underscores; the untouched path is kept in the "path" label.
type TextSink struct {
	w io.Writer
}

// NewTextSink returns a TextSink writing to w.
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

// Gauge writes one single-sample gauge family. The exposition format is
// float64 only, so integers beyond 2^53 print rounded.
func (s *TextSink) Gauge(name string, value Value) error {
	mf := &dto.MetricFamily{
		Name: proto.String(metricName(name)),
		Type: dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{
			Label: []*dto.LabelPair{{
				Name:  proto.String("path"),
				Value: proto.String(name),
			}},
			Gauge: &dto.Gauge{Value: proto.Float64(value.Float64())},
		}},
	}
	if _, err := expfmt.MetricFamilyToText(s.w, mf); err != nil {
		return fmt.Errorf("statsd: write %s: %w", name, err)
	}
	return nil
}

// metricName turns a dotted statsd path into a valid exposition metric name.
func metricName(path string) string {
	name := invalidChars.ReplaceAllString(path, "_")
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "_" + name
	}
	return name
}
