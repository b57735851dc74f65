// Package config provides type-safe environment variable loading with
// caching using Go generics, the way the teacher's core/config package
// describes it: each configuration type is parsed once per process and the
// result cached, with .env files loaded automatically on first use.
package config

import (
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once

	cacheMu sync.Mutex
	cache   = map[reflect.Type]any{}
)

func loadDotenv() {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// Load parses environment variables into dst using struct `env` tags, the
// way pg.Config and redis.Config are annotated in this codebase.
// The first successful Load for a given type T is cached; subsequent calls
// for the same T copy the cached value into dst without re-reading the
// environment.
func Load[T any](dst *T) error {
	loadDotenv()

	t := reflect.TypeOf(*dst)

	cacheMu.Lock()
	if cached, ok := cache[t]; ok {
		cacheMu.Unlock()
		*dst = cached.(T)
		return nil
	}
	cacheMu.Unlock()

	if err := env.Parse(dst); err != nil {
		return err
	}

	cacheMu.Lock()
	cache[t] = *dst
	cacheMu.Unlock()
	return nil
}

// MustLoad is Load, panicking on failure. Intended for use during process
// startup, where a missing required environment variable should abort
// immediately rather than propagate as an error return.
func MustLoad[T any](dst *T) {
	if err := Load(dst); err != nil {
		panic(err)
	}
}

// Reset clears the cache. Exposed for tests that need to reload
// configuration with a different environment within the same process.
func Reset() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cache = map[reflect.Type]any{}
}
