package constants

import "time"

const (
	// PerfdLibraryEnv overrides the path of the vendor perf daemon client library
	PerfdLibraryEnv = "POWERHAL_PERFD_LIB"
	// PortEnv overrides the HTTP listen port
	PortEnv = "POWERHAL_PORT"
	// SysfsRootEnv overrides the sysfs mount point, used for tests and containers
	SysfsRootEnv = "POWERHAL_SYSFS_ROOT"
	// NodeNameEnv is added as the node tag of recorded metrics lines
	NodeNameEnv = "POWERHAL_NODE_NAME"
)

const (
	DefaultPort      = 8010
	DefaultSysfsRoot = "/sys"

	DefaultMetricsPath     = "/logs/powerhal-metrics.log"
	DefaultMetricsInterval = 10 * time.Second
)

// ShortUUIDAlphabet keeps hint event ids lower case
const ShortUUIDAlphabet = "123456789abcdefghijkmnopqrstuvwxy"
