package async

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration is a time.Duration that unmarshals from a TOML string such as
// "5s" or "250ms".
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config tunes a scheduler Context. LoadConfig layers the file over
// DefaultConfig, so fields absent from the file keep their defaults while
// explicit zeros stick.
type Config struct {
	// MaxDetached bounds the fire-and-forget registry. Tasks spawned past
	// the bound are dropped with ResourceExhausted.
	MaxDetached int `toml:"max_detached"`
	// ShutdownGrace bounds how long Shutdown waits for detached tasks
	// after cancelling them. Zero means cancel and do not wait; the 5s
	// default applies only through DefaultConfig and LoadConfig.
	ShutdownGrace Duration `toml:"shutdown_grace"`
	// DefaultMaxConcurrent bounds Spawn batches that do not carry their
	// own limit. Zero means unbounded.
	DefaultMaxConcurrent int `toml:"default_max_concurrent"`
	// VerifySendable enables the reflect-based sendable check on declared
	// captured values. Leave off when the front end's type checker has
	// already proven the crossing.
	VerifySendable bool `toml:"verify_sendable"`
}

func DefaultConfig() Config {
	return Config{
		MaxDetached:   4096,
		ShutdownGrace: Duration(5 * time.Second),
	}
}

// LoadConfig reads a TOML file over the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MaxDetached < 0 {
		return fmt.Errorf("max_detached must be >= 0, got %d", c.MaxDetached)
	}
	if c.ShutdownGrace < 0 {
		return fmt.Errorf("shutdown_grace must be >= 0, got %s", time.Duration(c.ShutdownGrace))
	}
	if c.DefaultMaxConcurrent < 0 {
		return fmt.Errorf("default_max_concurrent must be >= 0, got %d", c.DefaultMaxConcurrent)
	}
	return nil
}

func (c Config) shutdownGrace() time.Duration {
	if c.ShutdownGrace < 0 {
		return 0
	}
	return time.Duration(c.ShutdownGrace)
}
