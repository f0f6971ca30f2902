// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xmetrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	CounterType   = "counter"
	GaugeType     = "gauge"
	HistogramType = "histogram"
)

// Module is a function type that returns prebuilt metrics.
type Module func() []Metric

// Metric describes a single metric that will be preregistered.  This type
// loosely corresponds with Prometheus' Opts struct.
type Metric struct {
	// Name is the required name of this metric.
	Name string

	// Type is the required type of metric.  This value must be one of the
	// constants defined in this package.
	Type string

	// Namespace is the namespace of this metric.  This value is optional.
	// The enclosing Options' Namespace field is used if this is not supplied.
	Namespace string

	// Subsystem is the subsystem of this metric.  This value is optional.
	// The enclosing Options' Subsystem field is used if this is not supplied.
	Subsystem string

	// Help is the help string for this metric.  If not supplied, the
	// metric's name is used.
	Help string

	// ConstLabels are the Prometheus ConstLabels for this metric.  This
	// field is optional.
	ConstLabels map[string]string

	// LabelNames are the Prometheus label names for this metric.  This
	// field is optional.
	LabelNames []string

	// Buckets describes the observation buckets for a histogram.  This
	// field is only valid for histogram metrics and is ignored for other
	// metric types.
	Buckets []float64
}

// NewCollector creates a Prometheus metric from a Metric descriptor.  The
// name must not be empty.  If not supplied in the metric, the help string
// defaults to the name.
func NewCollector(m Metric) (prometheus.Collector, error) {
	if len(m.Name) == 0 {
		return nil, errors.New("a name is required for a metric")
	}

	help := m.Help
	if len(help) == 0 {
		help = m.Name
	}

	switch m.Type {
	case CounterType:
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   m.Namespace,
			Subsystem:   m.Subsystem,
			Name:        m.Name,
			Help:        help,
			ConstLabels: prometheus.Labels(m.ConstLabels),
		}, m.LabelNames), nil

	case GaugeType:
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   m.Namespace,
			Subsystem:   m.Subsystem,
			Name:        m.Name,
			Help:        help,
			ConstLabels: prometheus.Labels(m.ConstLabels),
		}, m.LabelNames), nil

	case HistogramType:
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   m.Namespace,
			Subsystem:   m.Subsystem,
			Name:        m.Name,
			Help:        help,
			Buckets:     m.Buckets,
			ConstLabels: prometheus.Labels(m.ConstLabels),
		}, m.LabelNames), nil

	default:
		return nil, fmt.Errorf("unsupported metric type: %s", m.Type)
	}
}
