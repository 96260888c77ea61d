// Package fitsync holds the vendor-neutral core of the synchronization
// engine: the error taxonomy, the TTL result cache, and the per-user
// session manager with its single-reconnect retry policy. Vendor packages
// (garmin, intervals) build their sync services on top of it.
package fitsync

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error. Every error leaving the engine carries
// exactly one Kind; raw vendor errors never cross the boundary.
type Kind int

const (
	// KindNotConnected: no session and no usable cached credentials.
	KindNotConnected Kind = iota + 1
	// KindAuthExpired: session died and the silent reconnect failed.
	KindAuthExpired
	// KindAuthInvalid: an explicit connect was rejected by the vendor.
	KindAuthInvalid
	// KindVendorUnavailable: network/HTTP failure after the single retry.
	KindVendorUnavailable
	// KindUnsupported: the vendor cannot represent the requested operation.
	KindUnsupported
	// KindNotFound: the reschedule/delete target is absent at the vendor.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindNotConnected:
		return "not_connected"
	case KindAuthExpired:
		return "auth_expired"
	case KindAuthInvalid:
		return "auth_invalid"
	case KindVendorUnavailable:
		return "vendor_unavailable"
	case KindUnsupported:
		return "unsupported"
	case KindNotFound:
		return "not_found"
	}
	return "unknown"
}

// Error is a typed engine error. Vendor names the platform so callers can
// render an actionable message without inspecting the wrapped cause.
type Error struct {
	Kind   Kind
	Vendor string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Vendor, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Vendor, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the Kind from an error chain, or 0 for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// NotConnected reports that the user has never connected (or has
// disconnected) and must reconnect explicitly.
func NotConnected(vendor string) *Error {
	return &Error{Kind: KindNotConnected, Vendor: vendor,
		Msg: "not connected; connect your " + vendor + " account in settings"}
}

// AuthExpired reports a dead session whose silent reconnect failed.
func AuthExpired(vendor string, err error) *Error {
	return &Error{Kind: KindAuthExpired, Vendor: vendor,
		Msg: "session expired; reconnect your " + vendor + " account in settings", Err: err}
}

// AuthInvalid reports rejected credentials on an explicit connect.
func AuthInvalid(vendor string, err error) *Error {
	return &Error{Kind: KindAuthInvalid, Vendor: vendor,
		Msg: "login rejected; check your " + vendor + " credentials", Err: err}
}

// Unavailable reports a vendor call that still failed after the retry.
func Unavailable(vendor, op string, err error) *Error {
	return &Error{Kind: KindVendorUnavailable, Vendor: vendor,
		Msg: op + " failed; " + vendor + " may be unavailable, try again later", Err: err}
}

// Unsupported reports an operation the vendor cannot represent.
func Unsupported(vendor, what string) *Error {
	return &Error{Kind: KindUnsupported, Vendor: vendor,
		Msg: vendor + " cannot represent " + what}
}

// NotFound reports a missing mutation target on the vendor calendar.
func NotFound(vendor, what string) *Error {
	return &Error{Kind: KindNotFound, Vendor: vendor, Msg: what + " not found on " + vendor}
}

// Sentinels vendor clients wrap so the session manager can distinguish an
// expired session (reconnect and retry) and a missing target (no retry)
// from plain transport failures.
var (
	ErrUnauthorized     = errors.New("vendor rejected credentials or session")
	ErrNotFoundAtVendor = errors.New("resource not found at vendor")
)
