// Package prefs handles quotebox user preferences persistence.
// Preferences are a small TOML document stored under a single key of the
// local store.
package prefs

import (
	"context"
	"fmt"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/quotebox/internal/quote"
)

// Key is the store key holding the preferences document.
const Key = "prefs"

// KV is the subset of the local store preferences need.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Prefs holds user preferences for quotebox.
type Prefs struct {
	Theme    string `toml:"theme"`
	Category string `toml:"category"`
}

const defaultTheme = "Nightfox"

// Defaults returns the preferences used when nothing is stored.
func Defaults() Prefs {
	return Prefs{Theme: defaultTheme, Category: quote.FilterAll}
}

// Load reads preferences from kv, falling back to defaults on any problem.
func Load(ctx context.Context, kv KV) Prefs {
	p := Defaults()
	if kv == nil {
		return p
	}

	raw, err := kv.Get(ctx, Key)
	if err != nil || len(raw) == 0 {
		return p // Graceful degradation
	}

	if err := toml.Unmarshal(raw, &p); err != nil {
		return Defaults() // Graceful degradation
	}

	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	p.Category = strings.TrimSpace(p.Category)
	if p.Category == "" {
		p.Category = quote.FilterAll
	}
	return p
}

// Save writes preferences to kv.
func Save(ctx context.Context, kv KV, p Prefs) error {
	if kv == nil {
		return fmt.Errorf("prefs store is nil")
	}
	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := kv.Set(ctx, Key, bytes); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}
