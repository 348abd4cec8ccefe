package testutil

import (
	"sync"
	"unsafe"

	"github.com/arloliu/odbc/api"
)

// HookedAPI is an api.API that forwards to another implementation and lets
// tests replace selected entry points.
type HookedAPI struct {
	api.API

	mu    sync.Mutex
	calls map[string]int

	OnAllocHandle func(kind api.HandleType, parent api.Handle) (api.Handle, api.Return)
	OnSetEnvAttr  func(env api.Handle, attr int32, value uintptr) api.Return
	OnNumParams   func(stmt api.Handle) (int16, api.Return)
	OnExecute     func(stmt api.Handle) api.Return
	OnParamData   func(stmt api.Handle) (unsafe.Pointer, api.Return)
	OnPutData     func(stmt api.Handle, data []byte) api.Return
	OnFetch       func(stmt api.Handle) api.Return
	OnGetData     func(stmt api.Handle, col uint16, cType api.CType, buf unsafe.Pointer, bufLen int64, ind *int64) api.Return
}

// Compile-time assertion that HookedAPI implements api.API.
var _ api.API = (*HookedAPI)(nil)

// NewHookedAPI wraps next.
func NewHookedAPI(next api.API) *HookedAPI {
	return &HookedAPI{API: next, calls: make(map[string]int)}
}

// Calls returns how many times the named entry point (e.g. "GetData") was
// invoked through the wrapper.
func (h *HookedAPI) Calls(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.calls[name]
}

// ResetCalls zeroes every call counter.
func (h *HookedAPI) ResetCalls() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clear(h.calls)
}

func (h *HookedAPI) count(name string) {
	h.mu.Lock()
	h.calls[name]++
	h.mu.Unlock()
}

// AllocHandle implements api.API.
func (h *HookedAPI) AllocHandle(kind api.HandleType, parent api.Handle) (api.Handle, api.Return) {
	h.count("AllocHandle")
	if h.OnAllocHandle != nil {
		return h.OnAllocHandle(kind, parent)
	}

	return h.API.AllocHandle(kind, parent)
}

// SetEnvAttr implements api.API.
func (h *HookedAPI) SetEnvAttr(env api.Handle, attr int32, value uintptr) api.Return {
	h.count("SetEnvAttr")
	if h.OnSetEnvAttr != nil {
		return h.OnSetEnvAttr(env, attr, value)
	}

	return h.API.SetEnvAttr(env, attr, value)
}

// NumParams implements api.API.
func (h *HookedAPI) NumParams(stmt api.Handle) (int16, api.Return) {
	h.count("NumParams")
	if h.OnNumParams != nil {
		return h.OnNumParams(stmt)
	}

	return h.API.NumParams(stmt)
}

// Execute implements api.API.
func (h *HookedAPI) Execute(stmt api.Handle) api.Return {
	h.count("Execute")
	if h.OnExecute != nil {
		return h.OnExecute(stmt)
	}

	return h.API.Execute(stmt)
}

// ParamData implements api.API.
func (h *HookedAPI) ParamData(stmt api.Handle) (unsafe.Pointer, api.Return) {
	h.count("ParamData")
	if h.OnParamData != nil {
		return h.OnParamData(stmt)
	}

	return h.API.ParamData(stmt)
}

// PutData implements api.API.
func (h *HookedAPI) PutData(stmt api.Handle, data []byte) api.Return {
	h.count("PutData")
	if h.OnPutData != nil {
		return h.OnPutData(stmt, data)
	}

	return h.API.PutData(stmt, data)
}

// Fetch implements api.API.
func (h *HookedAPI) Fetch(stmt api.Handle) api.Return {
	h.count("Fetch")
	if h.OnFetch != nil {
		return h.OnFetch(stmt)
	}

	return h.API.Fetch(stmt)
}

// GetData implements api.API.
func (h *HookedAPI) GetData(stmt api.Handle, col uint16, cType api.CType, buf unsafe.Pointer, bufLen int64, ind *int64) api.Return {
	h.count("GetData")
	if h.OnGetData != nil {
		return h.OnGetData(stmt, col, cType, buf, bufLen, ind)
	}

	return h.API.GetData(stmt, col, cType, buf, bufLen, ind)
}
