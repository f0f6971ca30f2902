// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package synch

import (
	"github.com/go-kit/kit/metrics/provider"
	"github.com/xmidt-org/hypnos/clock"
	"github.com/xmidt-org/hypnos/kthread"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// RegistryIn enumerates the components a Registry draws from the enclosing
// uber/fx application.  Every component is optional, and anything missing
// falls back to the same default NewRegistry would apply.
type RegistryIn struct {
	fx.In

	Config   *Config           `optional:"true"`
	Logger   *zap.Logger       `optional:"true"`
	Threads  *kthread.System   `optional:"true"`
	Clock    clock.Interface   `optional:"true"`
	Provider provider.Provider `optional:"true"`
}

// Provide emits a *Registry into an uber/fx application, honoring any
// Config, logger, thread system, clock, or metrics provider found in the
// enclosing app.  Use ProvideMetrics alongside this to register the
// counters and gauges primitives record to.
func Provide() fx.Option {
	return fx.Provide(
		func(in RegistryIn) *Registry {
			options := in.Config.Options()
			if in.Logger != nil {
				options = append(options, WithLogger(in.Logger))
			}

			if in.Threads != nil {
				options = append(options, WithThreads(in.Threads))
			}

			if in.Clock != nil {
				options = append(options, WithClock(in.Clock))
			}

			if in.Provider != nil {
				options = append(options, WithProvider(in.Provider))
			}

			return NewRegistry(options...)
		},
	)
}
