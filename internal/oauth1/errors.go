package oauth1

import "errors"

var (
	// ErrMalformedHeader is returned when the Authorization header uses the
	// OAuth scheme but cannot be parsed.
	ErrMalformedHeader = errors.New("oauth1: malformed authorization header")

	// ErrMissingParameter is returned when a required protocol parameter is absent.
	ErrMissingParameter = errors.New("oauth1: missing protocol parameter")

	// ErrUnsupportedSignatureMethod is returned for methods other than
	// HMAC-SHA1, RSA-SHA1 and PLAINTEXT.
	ErrUnsupportedSignatureMethod = errors.New("oauth1: unsupported signature method")

	// ErrInvalidSignature is returned when the recomputed signature does not match.
	ErrInvalidSignature = errors.New("oauth1: invalid signature")

	// ErrInvalidTimestamp is returned when oauth_timestamp is not a decimal number.
	ErrInvalidTimestamp = errors.New("oauth1: invalid timestamp")

	// ErrInsecurePlaintext is returned for a PLAINTEXT signature on a request
	// that did not arrive over https.
	ErrInsecurePlaintext = errors.New("oauth1: PLAINTEXT signatures require https")

	// ErrInvalidPublicKey is returned when a consumer public key cannot be parsed.
	ErrInvalidPublicKey = errors.New("oauth1: invalid public key")
)
