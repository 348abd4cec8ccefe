package odbc

import (
	"time"
	"unsafe"

	"github.com/arloliu/odbc/api"
	"github.com/arloliu/odbc/types"
)

// Execute runs the prepared statement with the current parameter bindings.
//
// If the driver asks for deferred parameters, Execute streams each one from
// the deferred-parameter table in chunks of Config.PutDataChunkSize. On
// success the deferred table is emptied, so text, bytes and UUID parameters
// must be bound again before the next Execute; fixed-width bindings persist.
//
// A statement with an open cursor, or one whose last execution failed,
// must be reset with CloseCursor first.
//
// Returns:
//   - error: types.ErrCursorOpen, *types.DriverError or *types.ProtocolError
func (s *Statement) Execute() error {
	if err := s.usable(); err != nil {
		return err
	}
	if !s.state.executable() {
		return types.ErrCursorOpen
	}

	return s.run("SQLExecute", func() api.Return {
		return s.api.Execute(s.raw)
	})
}

// run issues one native execute call and drives it to completion.
func (s *Statement) run(op string, call func() api.Return) error {
	metrics := s.cfg.Metrics
	metrics.IncExecuteTotal()
	start := time.Now()

	s.state = StateExecuting
	err := s.complete(op, call())

	metrics.ObserveExecuteDuration(time.Since(start).Seconds())
	if err != nil {
		metrics.IncExecuteError()
		s.state = StateError
	}

	return err
}

// complete satisfies any data-at-execution requests and settles the state
// from the final return code.
func (s *Statement) complete(op string, rc api.Return) error {
	if rc == api.SQL_NEED_DATA {
		s.state = StateNeedData
		for {
			token, prc := s.api.ParamData(s.raw)
			if prc != api.SQL_NEED_DATA {
				op, rc = "SQLParamData", prc
				break
			}
			if err := s.supply(token); err != nil {
				return err
			}
		}
	}

	// A searched UPDATE or DELETE that touched no rows reports SQL_NO_DATA.
	if rc != api.SQL_NO_DATA {
		if err := s.check(op, rc); err != nil {
			return err
		}
	}

	clear(s.deferred)

	return s.settleResults()
}

// supply streams the deferred parameter addressed by token.
func (s *Statement) supply(token unsafe.Pointer) error {
	slot, ok := s.slotForToken(token)
	if !ok {
		return &types.ProtocolError{Cause: types.ErrNoDeferredEntry}
	}

	entry, ok := s.deferred[slot.token]
	if !ok {
		return &types.ProtocolError{Ordinal: int(slot.token), Cause: types.ErrNoDeferredEntry}
	}

	data := entry.data
	chunk := s.cfg.PutDataChunkSize
	rounds := 0

	for {
		n := min(chunk, len(data))
		rc := s.api.PutData(s.raw, data[:n])
		if err := s.check("SQLPutData", rc); err != nil {
			return err
		}
		rounds++
		data = data[n:]
		if len(data) == 0 {
			break
		}
	}

	s.cfg.Metrics.AddDeferredBytes(len(entry.data))
	s.cfg.Logger.Debug("deferred parameter sent",
		"ordinal", slot.token,
		"bytes", len(entry.data),
		"chunks", rounds,
	)

	return nil
}

// settleResults moves the statement to StateHasResults or StateNoResults.
func (s *Statement) settleResults() error {
	cols, rc := s.api.NumResultCols(s.raw)
	if err := s.check("SQLNumResultCols", rc); err != nil {
		return err
	}

	if cols > 0 {
		s.state = StateHasResults
	} else {
		s.state = StateNoResults
	}

	return nil
}
