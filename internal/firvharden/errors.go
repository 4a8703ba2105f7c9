package firvharden

import "fmt"

// InternalError marks the "internal inconsistency" outcome of §7.3 of
// spec.md: a missing block-mapping entry during terminator rewrite, or an
// unsupported leaf type reached during comparator synthesis after the
// top-level gate already accepted the function. These are bugs in the pass,
// not a declined-function outcome, so callers can tell the two apart with
// errors.As.
type InternalError struct {
	Func string
	Msg  string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("firvharden: internal inconsistency in %s: %s", e.Func, e.Msg)
}

func internalf(funcName, format string, args ...any) *InternalError {
	return &InternalError{Func: funcName, Msg: fmt.Sprintf(format, args...)}
}
