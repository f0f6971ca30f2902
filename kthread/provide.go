// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package kthread

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// SystemIn enumerates the components a System draws from the enclosing
// uber/fx application.
type SystemIn struct {
	fx.In

	Logger *zap.Logger `optional:"true"`
}

// Provide assembles kthread for an uber/fx application: an un-bootstrapped
// System whose Bootstrap runs when the application starts.
func Provide() fx.Option {
	return fx.Options(
		fx.Provide(
			func(in SystemIn) *System {
				var opts []SystemOption
				if in.Logger != nil {
					opts = append(opts, WithLogger(in.Logger))
				}

				return NewSystem(opts...)
			},
		),
		fx.Invoke(
			func(lc fx.Lifecycle, s *System) {
				lc.Append(fx.Hook{
					OnStart: func(context.Context) error {
						s.Bootstrap()
						return nil
					},
				})
			},
		),
	)
}
