// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xmetrics

import (
	"fmt"

	"github.com/go-kit/kit/metrics"
	gokitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/go-kit/kit/metrics/provider"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// PrometheusProvider is a Prometheus-specific version of go-kit's
// metrics.Provider.  Use this interface when interacting directly with
// Prometheus.
type PrometheusProvider interface {
	NewCounterVec(string) *prometheus.CounterVec
	NewGaugeVec(string) *prometheus.GaugeVec
	NewHistogramVec(string) *prometheus.HistogramVec
}

// Registry is the core abstraction for this package.  It is a Prometheus
// registry and a go-kit metrics.Provider all in one.
//
// The Provider implementation works slightly differently than the go-kit
// implementation.  For any metric that is already defined the provider
// returns a new go-kit wrapper for that metric.  Additionally, new metrics
// (including ad hoc metrics) are cached and returned by subsequent calls to
// the Provider methods.
type Registry interface {
	PrometheusProvider
	provider.Provider
	prometheus.Gatherer
	prometheus.Registerer
}

// registry is the internal Registry implementation
type registry struct {
	*prometheus.Registry

	logger    *zap.Logger
	namespace string
	subsystem string
	cache     map[string]prometheus.Collector
}

func (r *registry) NewCounterVec(name string) *prometheus.CounterVec {
	var counterVec *prometheus.CounterVec

	if existing, ok := r.cache[name]; ok {
		if counterVec, ok = existing.(*prometheus.CounterVec); !ok {
			panic(fmt.Errorf("the metric %s is not a counter", name))
		}
	} else {
		counterVec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: r.namespace,
			Subsystem: r.subsystem,
			Name:      name,
			Help:      name,
		}, []string{})

		if err := r.Registry.Register(counterVec); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				counterVec = already.ExistingCollector.(*prometheus.CounterVec)
			} else {
				panic(err)
			}
		}

		r.cache[name] = counterVec
	}

	return counterVec
}

func (r *registry) NewCounter(name string) metrics.Counter {
	return gokitprometheus.NewCounter(r.NewCounterVec(name))
}

func (r *registry) NewGaugeVec(name string) *prometheus.GaugeVec {
	var gaugeVec *prometheus.GaugeVec

	if existing, ok := r.cache[name]; ok {
		if gaugeVec, ok = existing.(*prometheus.GaugeVec); !ok {
			panic(fmt.Errorf("the metric %s is not a gauge", name))
		}
	} else {
		gaugeVec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: r.namespace,
			Subsystem: r.subsystem,
			Name:      name,
			Help:      name,
		}, []string{})

		if err := r.Registry.Register(gaugeVec); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				gaugeVec = already.ExistingCollector.(*prometheus.GaugeVec)
			} else {
				panic(err)
			}
		}

		r.cache[name] = gaugeVec
	}

	return gaugeVec
}

func (r *registry) NewGauge(name string) metrics.Gauge {
	return gokitprometheus.NewGauge(r.NewGaugeVec(name))
}

func (r *registry) NewHistogramVec(name string) *prometheus.HistogramVec {
	var histogramVec *prometheus.HistogramVec

	if existing, ok := r.cache[name]; ok {
		if histogramVec, ok = existing.(*prometheus.HistogramVec); !ok {
			panic(fmt.Errorf("the metric %s is not a histogram", name))
		}
	} else {
		histogramVec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: r.namespace,
			Subsystem: r.subsystem,
			Name:      name,
			Help:      name,
		}, []string{})

		if err := r.Registry.Register(histogramVec); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				histogramVec = already.ExistingCollector.(*prometheus.HistogramVec)
			} else {
				panic(err)
			}
		}

		r.cache[name] = histogramVec
	}

	return histogramVec
}

func (r *registry) NewHistogram(name string, _ int) metrics.Histogram {
	return gokitprometheus.NewHistogram(r.NewHistogramVec(name))
}

func (r *registry) Stop() {
}

// NewRegistry creates an xmetrics.Registry from configuration.  Metrics
// listed in the options are preregistered, and duplicate names are
// rejected.
func NewRegistry(o *Options) (Registry, error) {
	r := &registry{
		Registry:  o.registry(),
		logger:    o.logger(),
		namespace: o.namespace(),
		subsystem: o.subsystem(),
		cache:     make(map[string]prometheus.Collector),
	}

	for _, m := range o.Module() {
		if _, ok := r.cache[m.Name]; ok {
			return nil, fmt.Errorf("duplicate metric with name: %s", m.Name)
		}

		if len(m.Namespace) == 0 {
			m.Namespace = r.namespace
		}

		if len(m.Subsystem) == 0 {
			m.Subsystem = r.subsystem
		}

		c, err := NewCollector(m)
		if err != nil {
			return nil, err
		}

		if err := r.Registry.Register(c); err != nil {
			return nil, fmt.Errorf("error while preregistering metric %s: %s", m.Name, err)
		}

		r.cache[m.Name] = c
		r.logger.Debug("preregistered metric", zap.String("name", m.Name), zap.String("type", m.Type))
	}

	return r, nil
}
