package odbc

import (
	"bytes"
	"sync"

	"github.com/arloliu/odbc/api"
	"github.com/arloliu/odbc/types"
)

const (
	// diagStateLen is the SQLSTATE buffer: five characters and a terminator.
	diagStateLen = 6

	// diagMessageLen bounds the diagnostic text copied out of the driver.
	diagMessageLen = 256
)

// handle is one node of the environment -> connection -> statement tree.
//
// It owns exactly one native handle and refers to (but does not own) the
// handle above it, which is consulted for diagnostics when the node itself
// has none.
type handle struct {
	api      api.API
	cfg      *Config
	kind     types.HandleKind
	raw      api.Handle
	parent   *handle
	released bool
}

// openHandle allocates a native handle of the given kind under parent.
//
// Parameters:
//   - a: The call-level API
//   - cfg: Configuration supplying logger and metrics
//   - kind: The level to allocate
//   - parent: The owning handle, or nil for an environment
//
// Returns:
//   - *handle: The allocated handle
//   - error: *types.AllocationError if the allocator rejected the request
func openHandle(a api.API, cfg *Config, kind types.HandleKind, parent *handle) (*handle, error) {
	parentRaw := api.SQL_NULL_HANDLE
	if parent != nil {
		if parent.released {
			return nil, types.ErrClosed
		}
		parentRaw = parent.raw
	}

	raw, rc := a.AllocHandle(api.HandleType(kind), parentRaw)
	if !api.Succeeded(rc) {
		allocErr := &types.AllocationError{Kind: kind, Code: int16(rc)}
		if parent != nil {
			if derr := parent.diagnose("SQLAllocHandle"); derr != nil {
				allocErr.Cause = derr
			}
		}
		cfg.Logger.Warn("handle allocation failed", "kind", kind.String(), "code", int16(rc))

		return nil, allocErr
	}

	cfg.Metrics.IncHandleOpened(kind)

	return &handle{api: a, cfg: cfg, kind: kind, raw: raw, parent: parent}, nil
}

// release frees the native handle. Calling release more than once is a no-op.
func (h *handle) release() error {
	if h == nil || h.released {
		return nil
	}
	h.released = true
	h.cfg.Metrics.IncHandleReleased(h.kind)

	rc := h.api.FreeHandle(api.HandleType(h.kind), h.raw)
	if !api.Succeeded(rc) {
		// The handle is gone from our side either way; diagnostics may
		// still be attached to the parent.
		if h.parent != nil {
			if derr := h.parent.diagnose("SQLFreeHandle"); derr != nil {
				return derr
			}
		}

		return &types.DriverError{Op: "SQLFreeHandle", Message: "native free failed"}
	}

	return nil
}

// check converts a native return code into an error.
//
// SQL_SUCCESS and SQL_SUCCESS_WITH_INFO are successes. Any other code is
// reported as a *types.DriverError built from the first diagnostic record
// on this handle, falling back to its ancestors.
//
// Parameters:
//   - op: Name of the native entry point that produced rc
//   - rc: The return code
//
// Returns:
//   - error: nil on success, *types.DriverError otherwise
func (h *handle) check(op string, rc api.Return) error {
	if api.Succeeded(rc) {
		return nil
	}

	for cur := h; cur != nil; cur = cur.parent {
		if derr := cur.diagnose(op); derr != nil {
			h.report(derr)
			return derr
		}
	}

	derr := &types.DriverError{Op: op, Message: returnName(rc)}
	h.report(derr)

	return derr
}

func (h *handle) report(derr *types.DriverError) {
	h.cfg.Metrics.IncDriverError(derr.State)
	h.cfg.Logger.Warn("driver call failed",
		"op", derr.Op,
		"state", derr.State,
		"native", derr.NativeCode,
		"message", derr.Message,
	)
}

// diagnose reads the first diagnostic record attached to the handle.
// It returns nil if the driver has none.
func (h *handle) diagnose(op string) *types.DriverError {
	if h.released {
		return nil
	}

	var state [diagStateLen]byte
	var msg [diagMessageLen]byte

	native, msgLen, rc := h.api.GetDiagRec(api.HandleType(h.kind), h.raw, 1, state[:], msg[:])
	if !api.Succeeded(rc) {
		return nil
	}

	n := int(msgLen)
	if n < 0 {
		n = 0
	}
	if n > len(msg)-1 {
		n = len(msg) - 1
	}

	return &types.DriverError{
		Op:         op,
		State:      cString(state[:]),
		NativeCode: native,
		Message:    cString(msg[:n]),
	}
}

// cString trims a byte buffer at its first NUL.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}

	return string(b)
}

func returnName(rc api.Return) string {
	switch rc {
	case api.SQL_ERROR:
		return "SQL_ERROR"
	case api.SQL_INVALID_HANDLE:
		return "SQL_INVALID_HANDLE"
	case api.SQL_STILL_EXECUTING:
		return "SQL_STILL_EXECUTING"
	case api.SQL_NEED_DATA:
		return "SQL_NEED_DATA"
	case api.SQL_NO_DATA:
		return "SQL_NO_DATA"
	default:
		return "unexpected return code"
	}
}

// ----------------------
// Process-wide initialization
// ----------------------

// poolingOnce guards the process-wide pooling attribute. It is set through
// whichever call-level API creates the first environment.
var poolingOnce sync.Once

// applyPooling sets the connection pooling preference the first time any
// environment is created in the process. Later calls are no-ops regardless
// of the API or preference they carry.
func applyPooling(a api.API, cfg *Config) {
	poolingOnce.Do(func() {
		rc := a.SetEnvAttr(api.SQL_NULL_HANDLE, api.SQL_ATTR_CONNECTION_POOLING, uintptr(cfg.Pooling))
		if !api.Succeeded(rc) {
			// Pooling is advisory; drivers without a manager reject it.
			cfg.Logger.Warn("connection pooling preference rejected", "code", int16(rc))
			return
		}
		cfg.Logger.Debug("connection pooling configured", "mode", uintptr(cfg.Pooling))
	})
}
