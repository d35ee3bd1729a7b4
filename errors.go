package sockutil

import (
	"errors"
	"strings"
	"syscall"

	"github.com/netkitio/sockutil/internal/sockapi"
)

// Kind categorizes a socket operation failure.
type Kind string

const (
	// KindResolve: a hostname or address literal could not be resolved to an
	// IPv4 address.
	KindResolve Kind = "resolve"
	// KindSystem: the OS refused or failed the socket call; Errno carries the
	// platform code when the kernel reported one.
	KindSystem Kind = "system"
	// KindNotFound: an interface lookup matched nothing.
	KindNotFound Kind = "not_found"
	// KindUnsupported: the capability does not exist on this platform.
	KindUnsupported Kind = "unsupported"
)

// Error is the structured failure type returned by every operation in this
// package. The OS error code travels in Errno instead of a thread-local side
// channel, so callers can branch on it without racing other calls.
type Error struct {
	Op     string        // operation that failed, e.g. "connect socket"
	Detail string        // subject of the failure, e.g. "203.0.113.9:80"
	Kind   Kind          // failure category
	Errno  syscall.Errno // platform error code, 0 when the OS was not involved
	Err    error         // underlying cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Detail != "" {
		b.WriteByte(' ')
		b.WriteString(e.Detail)
	}
	b.WriteString(": ")
	b.WriteString(string(e.Kind))
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	} else if e.Errno != 0 {
		b.WriteString(": ")
		b.WriteString(e.Errno.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches two Errors by Kind, so callers can compare against
// &Error{Kind: KindUnsupported} without caring about Op or Errno.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// KindOf extracts the failure category from any error returned by this
// package. Errors from elsewhere report KindSystem as the conservative
// default; a nil error reports the empty Kind.
func KindOf(err error) Kind {
	if err == nil {
		return Kind("")
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindSystem
}

// sysError wraps an OS failure, lifting the platform code into Errno and
// classifying unsupported-capability reports from the platform layer.
func sysError(op, detail string, err error) *Error {
	kind := KindSystem
	if errors.Is(err, sockapi.ErrUnsupported) {
		kind = KindUnsupported
	}
	var errno syscall.Errno
	errors.As(err, &errno)
	return &Error{Op: op, Detail: detail, Kind: kind, Errno: errno, Err: err}
}
