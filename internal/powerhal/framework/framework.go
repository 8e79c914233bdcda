package framework

import (
	"github.com/NexusGPU/powerhal/internal/powerhal/api"
)

//go:generate mockgen -destination=mocks/mock_framework.go -package=mocks . PerfDaemon,GovernorSource,PlatformCapabilities

// Handle is a request handle returned by the perf daemon. Valid handles are positive.
type Handle int32

// Valid reports whether the daemon accepted the request.
func (h Handle) Valid() bool {
	return h > 0
}

// PerfDaemon is the opaque resource request API of the vendor performance daemon
type PerfDaemon interface {
	// AcquireTunables enables a daemon side hint and returns the handle holding it.
	AcquireTunables(hintID int32, duration int32) (Handle, error)

	ReleaseTunables(handle Handle) error

	// ApplyTuningRequest acquires the tunables of table on behalf of hintID.
	ApplyTuningRequest(hintID int32, table api.TuningTable) error

	// WithdrawTuningRequest releases whatever was applied for hintID.
	WithdrawTuningRequest(hintID int32) error
}

// GovernorSource returns the name of the active CPU scaling governor.
// Implementations must read fresh on every call.
type GovernorSource interface {
	CurrentGovernor() (string, error)
}

// PlatformCapabilities answers device identification questions used to pick tuning tables
type PlatformCapabilities interface {
	IsLowEndVariant() bool
}
