package common

import "errors"

// Error kinds shared by every engine. Engines wrap these with context using
// fmt.Errorf("%w: ...") so callers can classify failures with errors.Is.
var (
	ErrInvalidAddress          = errors.New("invalid address")
	ErrDuplicateIdentifier     = errors.New("duplicate identifier")
	ErrInvalidLimit            = errors.New("invalid mint limit")
	ErrLimitReached            = errors.New("mint limit reached")
	ErrInvalidSignature        = errors.New("invalid signature")
	ErrSignatureReused         = errors.New("signature has been used")
	ErrUnsupportedFormula      = errors.New("unsupported formula type")
	ErrUnknownAsset            = errors.New("unknown asset")
	ErrInvalidPayment          = errors.New("invalid payment")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrNativePaymentNotAllowed = errors.New("native payment not allowed")
	ErrPaymentForwardFailed    = errors.New("payment forward failed")
	ErrInvalidRate             = errors.New("invalid rate")
	ErrLengthMismatch          = errors.New("mismatch arguments length")
	ErrMismatchedLength        = errors.New("mismatch length of token uri")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrAlreadyInitialized      = errors.New("already initialized")
	ErrNotFound                = errors.New("not found")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidAddress, "invalid_address"},
	{ErrDuplicateIdentifier, "duplicate_identifier"},
	{ErrInvalidLimit, "invalid_limit"},
	{ErrLimitReached, "limit_reached"},
	{ErrInvalidSignature, "invalid_signature"},
	{ErrSignatureReused, "signature_reused"},
	{ErrUnsupportedFormula, "unsupported_formula"},
	{ErrUnknownAsset, "unknown_asset"},
	{ErrInvalidPayment, "invalid_payment"},
	{ErrInsufficientFunds, "insufficient_funds"},
	{ErrNativePaymentNotAllowed, "native_payment_not_allowed"},
	{ErrPaymentForwardFailed, "payment_forward_failed"},
	{ErrInvalidRate, "invalid_rate"},
	{ErrLengthMismatch, "length_mismatch"},
	{ErrMismatchedLength, "mismatched_length"},
	{ErrUnauthorized, "unauthorized"},
	{ErrAlreadyInitialized, "already_initialized"},
	{ErrNotFound, "not_found"},
	{ErrModulePaused, "module_paused"},
}

// Kind returns a stable label for the error kind wrapped by err, "ok" for a
// nil error and "internal" for anything outside the taxonomy.
func Kind(err error) string {
	if err == nil {
		return "ok"
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "internal"
}
