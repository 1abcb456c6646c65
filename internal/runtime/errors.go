package runtime

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Errors are values. An ErrorStub carries the symbolic id, the rendered
// message, and where it happened; cells with HeartError point at one. The
// antiform is the in-band recoverable form; escalation to a panic rides
// the throw machinery (throw.go).
//
// Message templates live in errors.yaml, keyed by id. Templates use {1},
// {2}, ... as argument placeholders.

//go:embed errors.yaml
var errorCatalogSource []byte

var errorCatalog map[string]string

func init() {
	if err := yaml.Unmarshal(errorCatalogSource, &errorCatalog); err != nil {
		panic(fmt.Sprintf("error catalog failed to load: %v", err))
	}
}

type ErrorStub struct {
	Stub
	ID      string
	Message string
	File    string
	Line    int
}

func (e *ErrorStub) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("** error [%s] %s (%s:%d)", e.ID, e.Message, e.File, e.Line)
	}
	return fmt.Sprintf("** error [%s] %s", e.ID, e.Message)
}

func (c *Cell) ErrorNode() *ErrorStub {
	e, _ := c.Node.(*ErrorStub)
	return e
}

// ErrorAntiCell is the in-band ERROR! antiform for a stub.
func ErrorAntiCell(e *ErrorStub) Cell {
	return Cell{Heart: HeartError, Lift: LiftAntiform, Node: e}
}

// NewError builds an error from a catalog id. Arguments fill the {N}
// placeholders of the template; with no template registered, the first
// argument (or the id) is the message.
func (rt *Runtime) NewError(id string, args ...interface{}) *ErrorStub {
	tmpl, ok := errorCatalog[id]
	var msg string
	if ok {
		msg = tmpl
		for i, a := range args {
			msg = strings.ReplaceAll(msg, fmt.Sprintf("{%d}", i+1), fmt.Sprint(a))
		}
	} else if len(args) > 0 {
		msg = fmt.Sprint(args[0])
	} else {
		msg = id
	}
	e := &ErrorStub{ID: id, Message: msg}
	e.stampFlavor(FlavorError)
	if rt != nil && rt.top != nil && rt.top.Feed != nil {
		if a := rt.top.Feed.array; a != nil {
			e.File = a.File
			e.Line = a.Line
		}
	}
	return e
}

// DoneError is the idiomatic completion signal for generators; it is not
// an anomaly and callers match it by id.
func (rt *Runtime) DoneError() *ErrorStub {
	return rt.NewError("done")
}

func IsDone(e *ErrorStub) bool { return e != nil && e.ID == "done" }
