// Package steamerrors collects the sentinel error values and carrier types
// shared across steamclient, steamsession, steamtrade, and steamcommunity, so
// callers can distinguish failure kinds with errors.Is/errors.As instead of
// string matching.
package steamerrors

import "fmt"

// Transport-kind failures: socket closed, TLS handshake failed, frame magic
// mismatch, decrypt failed. Recoverable by reconnect.
var (
	ErrTransportClosed      = fmt.Errorf("steamerrors: transport closed")
	ErrHandshakeFailed      = fmt.Errorf("steamerrors: handshake failed")
	ErrFrameMagicMismatch   = fmt.Errorf("steamerrors: frame magic mismatch")
	ErrDecryptFailed        = fmt.Errorf("steamerrors: decrypt failed")
	ErrNoEndpointsAvailable = fmt.Errorf("steamerrors: no CM endpoints available")
)

// Protocol-kind failures: malformed header, job-ID overflow. Fatal to the
// session; a new one must be established.
var (
	ErrMalformedHeader = fmt.Errorf("steamerrors: malformed header")
	ErrJobIDOverflow   = fmt.Errorf("steamerrors: source-job-id sequence overflowed")
)

// Auth-kind failures. InvalidPassword and Banned are fatal; the others
// surface to the caller for retry.
var (
	ErrInvalidPassword    = fmt.Errorf("steamerrors: invalid password")
	ErrBanned             = fmt.Errorf("steamerrors: account banned")
	ErrGuardCodeRequired  = fmt.Errorf("steamerrors: steam guard code required")
	ErrRateLimitExceeded  = fmt.Errorf("steamerrors: rate limit exceeded")
	ErrLoggedInElsewhere  = fmt.Errorf("steamerrors: logged in elsewhere")
	ErrTryAnotherCM       = fmt.Errorf("steamerrors: try another CM")
)

// Timeout and disconnection, shared by the unified RPC client and the
// dispatcher's pending-slot machinery.
var (
	ErrTimeout      = fmt.Errorf("steamerrors: timed out")
	ErrDisconnected = fmt.Errorf("steamerrors: disconnected")
)

// Trade/confirmation-kind failures.
var (
	ErrAlreadyClosed       = fmt.Errorf("steamerrors: trade offer already in a terminal state")
	ErrConfirmationReplayed = fmt.Errorf("steamerrors: confirmation action was replayed by Steam, retry once")
	ErrConfirmationNotFound = fmt.Errorf("steamerrors: no matching confirmation found")
)

// EResult mirrors the handful of Steam EResult values this module needs to
// name explicitly. The full enum lives in Steam's protobufs; unrecognized
// values are still carried verbatim by ResultError.
type EResult int32

const (
	EResultOK                EResult = 1
	EResultInvalidPassword   EResult = 5
	EResultLoggedInElsewhere EResult = 34
	EResultTryAnotherCM      EResult = 85
	EResultAccountLoginDeniedNeedTwoFactor EResult = 63
	EResultRateLimitExceeded EResult = 25
	EResultBanned            EResult = 93
)

func (r EResult) String() string {
	switch r {
	case EResultOK:
		return "OK"
	case EResultInvalidPassword:
		return "InvalidPassword"
	case EResultLoggedInElsewhere:
		return "LoggedInElsewhere"
	case EResultTryAnotherCM:
		return "TryAnotherCM"
	case EResultAccountLoginDeniedNeedTwoFactor:
		return "AccountLoginDeniedNeedTwoFactor"
	case EResultRateLimitExceeded:
		return "RateLimitExceeded"
	case EResultBanned:
		return "Banned"
	default:
		return fmt.Sprintf("EResult(%d)", int32(r))
	}
}

// ResultError wraps a non-OK eresult returned by an RPC call, carrying the
// enum value so callers can branch on it with errors.As.
type ResultError struct {
	Result EResult
	Method string
}

func (e *ResultError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("steamerrors: eresult=%s", e.Result)
	}
	return fmt.Sprintf("steamerrors: %s: eresult=%s", e.Method, e.Result)
}

// Fatal reports whether the underlying eresult should tear down the session
// rather than be retried in place.
func (e *ResultError) Fatal() bool {
	switch e.Result {
	case EResultInvalidPassword, EResultBanned:
		return true
	default:
		return false
	}
}

// Unwrap maps the carried EResult onto the matching sentinel so callers can
// test a ResultError with errors.Is(err, steamerrors.ErrInvalidPassword)
// instead of unpacking Result themselves. Unrecognized results unwrap to nil.
func (e *ResultError) Unwrap() error {
	switch e.Result {
	case EResultInvalidPassword:
		return ErrInvalidPassword
	case EResultBanned:
		return ErrBanned
	case EResultLoggedInElsewhere:
		return ErrLoggedInElsewhere
	case EResultTryAnotherCM:
		return ErrTryAnotherCM
	case EResultRateLimitExceeded:
		return ErrRateLimitExceeded
	case EResultAccountLoginDeniedNeedTwoFactor:
		return ErrGuardCodeRequired
	default:
		return nil
	}
}
