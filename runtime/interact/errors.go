package interact

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opal-lang/interact/runtime/deser"
)

// CallErrorKind classifies a failed method call.
type CallErrorKind int

const (
	CallDeser CallErrorKind = iota + 1
	NeedMutable
	NoSuchFunction
)

func (k CallErrorKind) String() string {
	switch k {
	case CallDeser:
		return "Deser"
	case NeedMutable:
		return "NeedMutable"
	case NoSuchFunction:
		return "NoSuchFunction"
	default:
		return fmt.Sprintf("CallErrorKind(%d)", int(k))
	}
}

// CallError is returned by Caller implementations.
type CallError struct {
	Kind  CallErrorKind
	Deser deser.Error // set when Kind is CallDeser
}

func (e *CallError) Error() string {
	if e.Kind == CallDeser {
		return "call: bad arguments: " + e.Deser.Error()
	}
	return "call: " + e.Kind.String()
}

func (e *CallError) Unwrap() error {
	if e.Kind == CallDeser {
		return e.Deser
	}
	return nil
}

// AssignErrorKind classifies a failed assignment.
type AssignErrorKind int

const (
	AssignDeser AssignErrorKind = iota + 1
	Unbuildable
	Immutable
)

func (k AssignErrorKind) String() string {
	switch k {
	case AssignDeser:
		return "Deser"
	case Unbuildable:
		return "Unbuildable"
	case Immutable:
		return "Immutable"
	default:
		return fmt.Sprintf("AssignErrorKind(%d)", int(k))
	}
}

// AssignError is returned by Assigner implementations.
type AssignError struct {
	Kind  AssignErrorKind
	Deser deser.Error // set when Kind is AssignDeser
}

func (e *AssignError) Error() string {
	if e.Kind == AssignDeser {
		return "assign: " + e.Deser.Error()
	}
	return "assign: " + e.Kind.String()
}

func (e *AssignError) Unwrap() error {
	if e.Kind == AssignDeser {
		return e.Deser
	}
	return nil
}

// ErrorKind classifies a failed climb.
type ErrorKind int

const (
	AssignFailed ErrorKind = iota + 1
	Borrowed
	BorrowedMut
	CallFailed
	DeserFailed
	IndirectPending
	Locked
	MissingStartComponent
	NeedMutPath
	NotFound
	NullPath
	UnattainedMutability
	UnexpectedExpressionEnd
	UnexpectedToken
)

func (k ErrorKind) String() string {
	switch k {
	case AssignFailed:
		return "AssignError"
	case Borrowed:
		return "Borrowed"
	case BorrowedMut:
		return "BorrowedMut"
	case CallFailed:
		return "CallError"
	case DeserFailed:
		return "DeserError"
	case IndirectPending:
		return "Indirect"
	case Locked:
		return "Locked"
	case MissingStartComponent:
		return "MissingStartComponent"
	case NeedMutPath:
		return "NeedMutPath"
	case NotFound:
		return "NotFound"
	case NullPath:
		return "NullPath"
	case UnattainedMutability:
		return "UnattainedMutability"
	case UnexpectedExpressionEnd:
		return "UnexpectedExpressionEnd"
	case UnexpectedToken:
		return "UnexpectedToken"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ClimbError is the error returned by a climb.
//
// errors.Is matches on Kind alone, so `errors.Is(err, &ClimbError{Kind:
// NeedMutPath})` works regardless of the cause.
type ClimbError struct {
	Kind        ErrorKind
	Cause       error    // *CallError, *AssignError, deser.Error or *lexer.LexError
	Suggestions []string // did-you-mean candidates for MissingStartComponent
}

// NewClimbError returns a ClimbError of the given kind.
func NewClimbError(kind ErrorKind, cause error) *ClimbError {
	return &ClimbError{Kind: kind, Cause: cause}
}

func (e *ClimbError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&b, " (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return b.String()
}

func (e *ClimbError) Unwrap() error {
	return e.Cause
}

func (e *ClimbError) Is(target error) bool {
	t, ok := target.(*ClimbError)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first ClimbError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var ce *ClimbError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is a ClimbError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
