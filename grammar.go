package jsonwire

import "fmt"

// contextKind identifies the container a nesting context belongs to.
type contextKind uint8

const (
	contextArray contextKind = iota
	contextObject
)

// nestingContext is one element of the grammar stack. count tracks how many
// members the container holds so far (the text encoder derives comma
// placement from it), start is the buffer offset of the binary encoder's
// length placeholder, and awaitingValue marks an object whose field name has
// been written but whose value has not.
type nestingContext struct {
	kind          contextKind
	count         int
	start         int
	awaitingValue bool
}

// grammar is the encoding-independent JSON well-formedness state machine.
// Both encoders consult it before emitting any bytes and advance it after.
//
// The machine latches the first error: once any transition fails, every later
// operation is a no-op returning that error, so a writer that tripped a
// grammar violation cannot keep mutating the buffer with partially-applied
// state.
type grammar struct {
	stack    []nestingContext
	rootDone bool
	maxDepth int
	err      error
}

// fail records the first error and returns the latched one.
func (g *grammar) fail(err error) error {
	if g.err == nil {
		g.err = err
	}
	return g.err
}

// top returns the innermost open container, or nil at root.
func (g *grammar) top() *nestingContext {
	if len(g.stack) == 0 {
		return nil
	}
	return &g.stack[len(g.stack)-1]
}

// valueExpected reports whether a value may be written at the current
// position: the empty root, inside an array, or after a field name.
func (g *grammar) valueExpected() bool {
	top := g.top()
	if top == nil {
		return !g.rootDone
	}
	return top.kind == contextArray || top.awaitingValue
}

// checkValue validates a value write without mutating state.
func (g *grammar) checkValue() error {
	if g.err != nil {
		return g.err
	}
	if !g.valueExpected() {
		return g.fail(fmt.Errorf("%w: value not expected here", ErrInvalidTransition))
	}
	return nil
}

// commitValue advances the machine after a value was emitted. Objects swing
// back to awaiting a name, arrays stay put, the root is done.
func (g *grammar) commitValue() {
	top := g.top()
	if top == nil {
		g.rootDone = true
		return
	}
	top.count++
	if top.kind == contextObject {
		top.awaitingValue = false
	}
}

// checkFieldName validates a field name write without mutating state.
func (g *grammar) checkFieldName() error {
	if g.err != nil {
		return g.err
	}
	top := g.top()
	if top == nil || top.kind != contextObject || top.awaitingValue {
		return g.fail(fmt.Errorf("%w: field name not expected here", ErrInvalidTransition))
	}
	return nil
}

// commitFieldName advances the object to awaiting its value.
func (g *grammar) commitFieldName() {
	g.top().awaitingValue = true
}

// pushContainer validates a *Start call: any container may open wherever a
// value is expected, so the check is kind-independent. The depth bound is
// checked here, before the caller emits anything.
func (g *grammar) pushContainer() error {
	if err := g.checkValue(); err != nil {
		return err
	}
	if len(g.stack)+1 > g.maxDepth {
		return g.fail(fmt.Errorf("%w: depth %d", ErrNestingTooDeep, len(g.stack)+1))
	}
	return nil
}

// openContainer records the new context, consuming the parent's value slot
// so the container counts as one member of its parent regardless of what it
// ends up holding. Callers emit prefix punctuation between pushContainer and
// openContainer so that a failed check emits nothing at all.
func (g *grammar) openContainer(kind contextKind, start int) {
	g.commitValue()
	g.stack = append(g.stack, nestingContext{kind: kind, start: start})
}

// popContainer validates a *End call and closes the innermost context,
// returning it so the binary encoder can patch its length prefix. Ending an
// object with a dangling field name is a grammar violation.
func (g *grammar) popContainer(kind contextKind) (nestingContext, error) {
	if g.err != nil {
		return nestingContext{}, g.err
	}
	top := g.top()
	if top == nil || top.kind != kind {
		return nestingContext{}, g.fail(fmt.Errorf("%w: no matching open container", ErrInvalidTransition))
	}
	if top.awaitingValue {
		return nestingContext{}, g.fail(fmt.Errorf("%w: field name has no value", ErrInvalidTransition))
	}
	popped := *top
	g.stack = g.stack[:len(g.stack)-1]
	return popped, nil
}

// complete reports whether exactly one top-level value has been written and
// every container closed.
func (g *grammar) complete() bool {
	return g.rootDone && len(g.stack) == 0
}
