package evaluator

import (
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/lumen-lang/lumen/internal/config"
)

// Context carries the state threaded through a single evaluator run:
// the uuid used to correlate Dev errors, the recursion guard, and the
// six type-namespace objects built-ins are looked up from.
type Context struct {
	ExecutionID uuid.UUID

	MaxCallDepth int
	callDepth    int

	Stdout io.Writer

	builtins *builtinTables
}

// NewContext creates a fresh evaluation context. maxCallDepth <= 0 uses
// config.DefaultMaxCallDepth.
func NewContext(maxCallDepth int) *Context {
	if maxCallDepth <= 0 {
		maxCallDepth = config.DefaultMaxCallDepth
	}
	ctx := &Context{
		ExecutionID:  uuid.New(),
		MaxCallDepth: maxCallDepth,
		Stdout:       os.Stdout,
	}
	ctx.builtins = newBuiltinTables()
	return ctx
}

// enterCall increments the recursion guard; the returned function must be
// deferred to decrement it again. Exceeding MaxCallDepth is a Dev error: a
// well-formed script can recurse arbitrarily deep as far as its own
// semantics are concerned, so hitting the guard is an implementation limit,
// not a user-facing language error.
func (c *Context) enterCall() (func(), error) {
	c.callDepth++
	if c.callDepth > c.MaxCallDepth {
		c.callDepth--
		return func() {}, errDev(c.ExecutionID, "call stack exhausted")
	}
	return func() { c.callDepth-- }, nil
}
