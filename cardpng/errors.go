package cardpng

import cerrors "github.com/flaneur2020/card-png/cardpng/errors"

// Re-exported so callers of this package can match with errors.Is without
// importing the errors package.
var (
	ErrInvalidSignature  = cerrors.ErrInvalidSignature
	ErrTruncatedStream   = cerrors.ErrTruncatedStream
	ErrMissingTerminator = cerrors.ErrMissingTerminator
	ErrDecode            = cerrors.ErrDecode
	ErrInvalidKeyword    = cerrors.ErrInvalidKeyword
	ErrCardNotFound      = cerrors.ErrCardNotFound
	ErrCardParse         = cerrors.ErrCardParse
)

// CardError is the structured error returned by this package.
type CardError = cerrors.CardError
