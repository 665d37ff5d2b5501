package manager

import (
	"time"

	"github.com/rs/zerolog"

	"memoryd/internal/runtime"
)

// Defaults applied when corresponding Config fields are unset.
const (
	DefaultContextTokens = 2048
	DefaultSettleDelay   = 800 * time.Millisecond
	defaultLockWait      = 2 * time.Minute
	// gpuLayersAll asks the runtime to offload every layer it can.
	gpuLayersAll = 99
)

// Config encapsulates all tunables for Manager construction.
type Config struct {
	Backend runtime.Backend
	// SettleDelay is observed after an unload before the next load starts so
	// the device can reclaim memory. Negative disables it.
	SettleDelay time.Duration
	// LockWait bounds how long Load/Unload wait for the exclusive section
	// before failing with LockContention.
	LockWait  time.Duration
	Threads   int
	Publisher EventPublisher
	Logger    *zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.SettleDelay == 0 {
		c.SettleDelay = DefaultSettleDelay
	}
	if c.SettleDelay < 0 {
		c.SettleDelay = 0
	}
	if c.LockWait <= 0 {
		c.LockWait = defaultLockWait
	}
	if c.Publisher == nil {
		c.Publisher = noopPublisher{}
	}
	if c.Logger == nil {
		l := zerolog.Nop()
		c.Logger = &l
	}
	return c
}
