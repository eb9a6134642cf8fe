package stats

import (
	"github.com/prometheus/client_golang/prometheus"

	"tinydns-logstat/errors"
)

// Registry builds a private Prometheus registry holding the snapshot as
// gauges, suitable for the node_exporter textfile collector.
func Registry(s Snapshot) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()

	records := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tinydns",
		Subsystem: "log",
		Name:      "records",
		Help:      "Number of decoded query log records.",
	})
	queries := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tinydns",
		Subsystem: "log",
		Name:      "queries",
		Help:      "Decoded query log records per table and label.",
	}, []string{"table", "label"})

	for _, c := range []prometheus.Collector{records, queries} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, errors.KindInternal, "register collector")
		}
	}

	records.Set(float64(s.Records))
	for _, name := range Tables {
		for label, count := range s.Table(name) {
			g, err := queries.GetMetricWithLabelValues(name, label)
			if err != nil {
				return nil, errors.Attr(errors.Wrapf(err, errors.KindInternal, "label %q in %s", label, name), "label", label)
			}
			g.Set(float64(count))
		}
	}
	return reg, nil
}

// WriteTextfile writes the snapshot to path in the Prometheus text format.
func WriteTextfile(path string, s Snapshot) error {
	reg, err := Registry(s)
	if err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return errors.Attr(errors.Wrapf(err, errors.KindIO, "write textfile %s", path), "path", path)
	}
	return nil
}
