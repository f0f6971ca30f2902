// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package synch

import (
	"github.com/spf13/viper"
)

const (
	// SynchKey is the Viper subkey under which synch configuration should
	// be stored.  NewRegistry *does not* assume this key.
	SynchKey = "synch"
)

// Config holds the externally configurable registry behavior.
type Config struct {
	// Limit caps the number of live primitives a Registry will track.  A
	// nonpositive limit means unlimited.
	Limit int `json:"limit"`
}

// Options converts this configuration into registry options.
func (c *Config) Options() []RegistryOption {
	if c == nil {
		return nil
	}

	return []RegistryOption{
		WithLimit(c.Limit),
	}
}

// Sub returns the standard child Viper, using SynchKey, for this package.
// If passed nil, this function returns nil.
func Sub(v *viper.Viper) *viper.Viper {
	if v != nil {
		return v.Sub(SynchKey)
	}

	return nil
}

// FromViper produces a Config from a (possibly nil) Viper instance.
// Callers should use FromViper(Sub(v)) if the standard subkey is desired.
func FromViper(v *viper.Viper) (*Config, error) {
	c := new(Config)
	if v != nil {
		if err := v.Unmarshal(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}
