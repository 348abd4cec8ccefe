package odbc

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"

	"github.com/arloliu/odbc/api"
	"github.com/arloliu/odbc/internal/logging"
	"github.com/arloliu/odbc/internal/metrics"
	"github.com/arloliu/odbc/types"
)

// ODBCVersion is the behavior version an environment declares to the
// driver manager.
type ODBCVersion uintptr

const (
	// ODBCVersion3 declares ODBC 3.x behavior.
	ODBCVersion3 ODBCVersion = ODBCVersion(api.SQL_OV_ODBC3)
	// ODBCVersion380 declares ODBC 3.80 behavior.
	ODBCVersion380 ODBCVersion = ODBCVersion(api.SQL_OV_ODBC3_80)
)

// Pooling is the process-wide connection pooling preference.
type Pooling uintptr

const (
	PoolingOff          Pooling = Pooling(api.SQL_CP_OFF)
	PoolingOnePerDriver Pooling = Pooling(api.SQL_CP_ONE_PER_DRIVER)
	PoolingOnePerEnv    Pooling = Pooling(api.SQL_CP_ONE_PER_HENV)
)

const (
	// DefaultProbeSize is the starting capacity, in payload bytes, of the
	// buffer used for the first retrieval of a variable-length cell.
	DefaultProbeSize = 256

	// DefaultPutDataChunkSize is the largest slice handed to a single
	// SQLPutData call while streaming a deferred parameter.
	DefaultPutDataChunkSize = 8192
)

// Config holds configuration for environments and the connections and
// statements they own.
type Config struct {
	Logger           types.Logger
	Metrics          types.MetricsCollector
	ODBCVersion      ODBCVersion
	Pooling          Pooling
	ProbeSize        int
	PutDataChunkSize int
	TextEncoding     encoding.Encoding
	AutoCommit       bool
}

// DefaultConfig returns a Config with sensible defaults.
//
// Defaults:
//   - ODBCVersion: ODBCVersion3
//   - Pooling: PoolingOnePerDriver
//   - ProbeSize: DefaultProbeSize
//   - PutDataChunkSize: DefaultPutDataChunkSize
//   - TextEncoding: UTF-8 (bytes pass through unchanged)
//   - AutoCommit: true
//
// Returns:
//   - *Config: Configuration with default settings
func DefaultConfig() *Config {
	return &Config{
		Logger:           logging.NewNopLogger(),
		Metrics:          metrics.NewNopMetrics(),
		ODBCVersion:      ODBCVersion3,
		Pooling:          PoolingOnePerDriver,
		ProbeSize:        DefaultProbeSize,
		PutDataChunkSize: DefaultPutDataChunkSize,
		TextEncoding:     unicode.UTF8,
		AutoCommit:       true,
	}
}

// Option configures a Config.
type Option func(*Config)

func newConfig(opts []Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNopMetrics()
	}
	if cfg.ProbeSize <= 0 {
		cfg.ProbeSize = DefaultProbeSize
	}
	if cfg.PutDataChunkSize <= 0 {
		cfg.PutDataChunkSize = DefaultPutDataChunkSize
	}
	if cfg.TextEncoding == nil {
		cfg.TextEncoding = unicode.UTF8
	}

	return cfg
}

// WithLogger sets the structured logger.
//
// If not set, a no-op logger is used that discards all messages.
// Use contrib/logging/zap for a zap-backed logger.
//
// Parameters:
//   - logger: The logger implementation
//
// Returns:
//   - Option: Configuration option
func WithLogger(logger types.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics sets the metrics collector.
//
// If not set, a no-op collector is used that discards all metrics.
// Use contrib/metrics/vm.New() for VictoriaMetrics integration or
// contrib/metrics/prom.New() for the Prometheus client.
//
// Parameters:
//   - collector: The metrics collector implementation
//
// Returns:
//   - Option: Configuration option
//
// Example:
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("myapp"))
//	env, _ := odbc.NewEnvironment(unixodbc.New(),
//	    odbc.WithMetrics(collector),
//	)
func WithMetrics(collector types.MetricsCollector) Option {
	return func(c *Config) {
		c.Metrics = collector
	}
}

// WithODBCVersion sets the behavior version declared on new environments.
//
// Parameters:
//   - version: ODBCVersion3 or ODBCVersion380
//
// Returns:
//   - Option: Configuration option
func WithODBCVersion(version ODBCVersion) Option {
	return func(c *Config) {
		c.ODBCVersion = version
	}
}

// WithConnectionPooling sets the process-wide pooling preference.
//
// The preference is applied once per process, before the first environment
// is allocated. Environments created later, over any call-level API, keep
// whatever was applied first.
//
// Parameters:
//   - pooling: The pooling mode
//
// Returns:
//   - Option: Configuration option
func WithConnectionPooling(pooling Pooling) Option {
	return func(c *Config) {
		c.Pooling = pooling
	}
}

// WithProbeSize sets the starting capacity of the buffer used to retrieve
// variable-length cells. Values that fit are read with a single driver
// call; larger values cost exactly one more.
//
// Parameters:
//   - n: Capacity in payload bytes (non-positive restores the default)
//
// Returns:
//   - Option: Configuration option
func WithProbeSize(n int) Option {
	return func(c *Config) {
		c.ProbeSize = n
	}
}

// WithPutDataChunkSize sets the largest chunk streamed per SQLPutData call.
//
// Parameters:
//   - n: Chunk size in bytes (non-positive restores the default)
//
// Returns:
//   - Option: Configuration option
func WithPutDataChunkSize(n int) Option {
	return func(c *Config) {
		c.PutDataChunkSize = n
	}
}

// WithTextEncoding sets the encoding used by Statement.GetText to decode
// character data returned by the driver.
//
// Parameters:
//   - enc: The encoding, e.g. charmap.Windows1252
//
// Returns:
//   - Option: Configuration option
func WithTextEncoding(enc encoding.Encoding) Option {
	return func(c *Config) {
		c.TextEncoding = enc
	}
}

// WithAutoCommit sets the autocommit mode applied to new connections.
//
// Parameters:
//   - enabled: false to make Commit and Rollback delimit transactions
//
// Returns:
//   - Option: Configuration option
func WithAutoCommit(enabled bool) Option {
	return func(c *Config) {
		c.AutoCommit = enabled
	}
}
