package domain

// ErrorKind classifies a business failure for the transport layer.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindInvariant
)

// Error is a business-rule failure with a caller-facing message.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// holds for every not-found error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

var (
	ErrValidation         = &Error{Kind: KindValidation, Message: "invalid request"}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Message: "unauthorized"}
	ErrInvalidCredentials = &Error{Kind: KindUnauthenticated, Message: "invalid username or password"}
	ErrForbidden          = &Error{Kind: KindForbidden, Message: "admin access required"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict           = &Error{Kind: KindConflict, Message: "conflict"}
	ErrInvariant          = &Error{Kind: KindInvariant, Message: "operation not allowed"}
)

func Validation(msg string) error { return &Error{Kind: KindValidation, Message: msg} }
func NotFound(msg string) error   { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) error   { return &Error{Kind: KindConflict, Message: msg} }
func Invariant(msg string) error  { return &Error{Kind: KindInvariant, Message: msg} }
