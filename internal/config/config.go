// Package config holds the compiler's resolved command-line configuration
// and its validation rules (spec.md §6's CLI surface).
package config

import "fmt"

// Config is the fully-resolved set of compiler options, one per CLI flag
// named in spec.md §6.
type Config struct {
	InputFile    string // -f, required
	MaterialFile string // -t
	TextOutput   bool   // -s (default false: binary)
	OpenGL       bool   // -g
	CacheSize    int    // -c, default 32, >= 3
	ElideInitial bool   // -i
	ModelName    string // -n, default "MyModel"
	OutputName   string // -o, default "outdlist"
	NoTwoTri     bool   // -2
	Quiet        bool   // -q
	FixRoot      bool   // -r, default on
}

// Default returns a Config with spec.md §6's documented defaults.
func Default() Config {
	return Config{
		CacheSize:  32,
		ModelName:  "MyModel",
		OutputName: "outdlist",
		FixRoot:    true,
	}
}

// Validate enforces the invariants the CLI must reject before compilation
// starts (spec.md §6, §7): a missing input file or an undersized vertex
// cache are both fatal.
func (c Config) Validate() error {
	if c.InputFile == "" {
		return fmt.Errorf("an input scene file is required (-f)")
	}
	if c.CacheSize < 3 {
		return fmt.Errorf("vertex cache size must be at least 3, got %d", c.CacheSize)
	}
	return nil
}
