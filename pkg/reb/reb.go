// Package reb is the embedding surface for Go hosts: variadic
// constructors that splice Go values and source fragments into one
// evaluation, plus a handle registry so hosts hold opaque ids rather than
// interpreter internals.
package reb

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/renlang/ren/internal/runtime"
	"github.com/renlang/ren/internal/scan"
)

// Session owns one isolated interpreter and the live handles a host has
// not yet released.
type Session struct {
	mu      sync.Mutex
	rt      *runtime.Runtime
	handles map[uuid.UUID]runtime.Cell
}

func NewSession() *Session {
	return &Session{
		rt:      runtime.New(),
		handles: make(map[uuid.UUID]runtime.Cell),
	}
}

// Handle is an opaque reference to a value kept alive on the session's
// behalf until Release.
type Handle struct {
	ID uuid.UUID
	s  *Session
}

// Value evaluates the spliced parts and returns a handle on the result.
// Parts may be source strings, Go integers/floats/bools/strings (see
// splice), or prior handles.
func (s *Session) Value(parts ...interface{}) (*Handle, error) {
	out, err := s.run(parts)
	if err != nil {
		return nil, err
	}
	id := uuid.New()
	s.mu.Lock()
	s.handles[id] = out
	s.mu.Unlock()
	return &Handle{ID: id, s: s}, nil
}

// Did evaluates and reports the truthiness of the result.
func (s *Session) Did(parts ...interface{}) (bool, error) {
	out, err := s.run(parts)
	if err != nil {
		return false, err
	}
	t, errStub := s.rt.Truthy(&out)
	if errStub != nil {
		return false, errStub
	}
	return t, nil
}

// UnboxInt64 evaluates and requires an integer result.
func (s *Session) UnboxInt64(parts ...interface{}) (int64, error) {
	out, err := s.run(parts)
	if err != nil {
		return 0, err
	}
	if !runtime.IsInteger(&out) {
		return 0, fmt.Errorf("result is %s, not integer!", runtime.TypeOf(&out))
	}
	return out.AsInt(), nil
}

// UnboxText evaluates and returns the molded text of the result, or the
// string itself for text results.
func (s *Session) UnboxText(parts ...interface{}) (string, error) {
	out, err := s.run(parts)
	if err != nil {
		return "", err
	}
	if runtime.IsText(&out) {
		return out.Strand().String(), nil
	}
	return runtime.Mold(&out), nil
}

// Release frees a handle. Releasing twice is a no-op. A generator held by
// the handle is closed so its plugged levels do not linger; this happens
// whether or not other references to the generator remain.
func (s *Session) Release(h *Handle) {
	if h == nil || h.s != s {
		return
	}
	s.mu.Lock()
	if c, ok := s.handles[h.ID]; ok {
		if runtime.IsAction(&c) {
			if d := c.DetailsNode(); d != nil {
				d.Close()
			}
		}
		delete(s.handles, h.ID)
	}
	s.mu.Unlock()
}

// Collect runs a GC pass over the session's managed stubs.
func (s *Session) Collect() int { return s.rt.Collect() }

// RequestHalt interrupts the session's evaluation at the next safe point.
// Safe to call from other goroutines.
func (s *Session) RequestHalt() { s.rt.RequestHalt() }

// run splices the parts into one variadic feed and trampolines it.
func (s *Session) run(parts []interface{}) (runtime.Cell, error) {
	var cells []runtime.Cell
	for _, p := range parts {
		spliced, err := s.splice(p)
		if err != nil {
			return runtime.Cell{}, err
		}
		cells = append(cells, spliced...)
	}
	out, errStub := s.rt.RunCells(cells)
	if errStub != nil {
		return runtime.Cell{}, errStub
	}
	return out, nil
}

func (s *Session) splice(p interface{}) ([]runtime.Cell, error) {
	switch v := p.(type) {
	case string:
		a, err := scan.Transcode(s.rt, "host", v)
		if err != nil {
			return nil, err
		}
		return append([]runtime.Cell(nil), a.Cells...), nil
	case int:
		return []runtime.Cell{runtime.IntCell(int64(v))}, nil
	case int64:
		return []runtime.Cell{runtime.IntCell(v)}, nil
	case float64:
		return []runtime.Cell{runtime.DecimalCell(v)}, nil
	case bool:
		c := s.rt.LogicCell(v)
		lifted := runtime.LiftCell(&c)
		return []runtime.Cell{lifted}, nil // quasiform re-evaluates to the keyword
	case *Handle:
		if v.s != s {
			return nil, fmt.Errorf("handle belongs to another session")
		}
		s.mu.Lock()
		c, ok := s.handles[v.ID]
		s.mu.Unlock()
		if !ok {
			return nil, fmt.Errorf("handle already released")
		}
		if runtime.IsAntiform(&c) {
			lifted := runtime.LiftCell(&c)
			return []runtime.Cell{lifted}, nil
		}
		quoted := c
		quoted.Quotes++ // splice as data, not as code to re-dispatch
		return []runtime.Cell{quoted}, nil
	}
	return nil, fmt.Errorf("cannot splice %T into the feed", p)
}
