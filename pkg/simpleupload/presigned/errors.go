package presigned

import "errors"

// ErrNoSecretKey means the signer was constructed without a secret key and
// cannot sign or validate anything. This is a configuration error, not a
// request error.
var ErrNoSecretKey = errors.New("presigned: no secret key configured")

// Request validation failures, in the order ValidateRequest checks them. The
// first three describe a request that is not a well-formed presigned URL at
// all; the last two describe a well-formed URL the signer does not honor.
var (
	ErrMissingSignature  = errors.New("presigned: missing signature parameter")
	ErrMissingExpiration = errors.New("presigned: missing expires parameter")
	ErrInvalidExpiration = errors.New("presigned: malformed expires parameter")
	ErrExpired           = errors.New("presigned: signature window has closed")
	ErrInvalidSignature  = errors.New("presigned: signature mismatch")
)

// IsAuthError reports whether err is a request validation failure, as opposed
// to a signer misconfiguration. Handlers map these to 4xx responses.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrMissingSignature) ||
		errors.Is(err, ErrMissingExpiration) ||
		errors.Is(err, ErrInvalidExpiration) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrInvalidSignature)
}
