package pretty

import (
	"regexp"

	"github.com/prometheus/client_golang/prometheus"
)

// BuildInfoMetric is the name of the gauge NewCollector exposes.
const BuildInfoMetric = "vergen_build_info"

var invalidLabelChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// NewCollector returns a gauge, always 1, labelled with every captured value.
// Label names are the serialized field names.
func NewCollector(env Env) prometheus.Collector {
	labels := prometheus.Labels{}
	for name, value := range New(env).Fields() {
		labels[invalidLabelChars.ReplaceAllString(name, "_")] = value
	}
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        BuildInfoMetric,
		Help:        "Build metadata captured by vergen. The value is always 1.",
		ConstLabels: labels,
	})
	g.Set(1)
	return g
}
