// Package config fills env-tagged structs from the process environment or
// from an explicit variable set.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from the process environment. Fields are mapped with `env`
// tags; unset variables take their `envDefault`.
func Load(cfg any) error {
	return parse(cfg, env.Options{})
}

// LoadFrom fills cfg from vars only, ignoring the process environment. A nil
// map behaves like an empty one, so every field takes its default.
func LoadFrom(cfg any, vars map[string]string) error {
	if vars == nil {
		vars = map[string]string{}
	}
	return parse(cfg, env.Options{Environment: vars})
}

func parse(cfg any, opts env.Options) error {
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse config %T: %w", cfg, err)
	}
	return nil
}
