package oauth1

import (
	"net/http"
	"strings"
)

// Kind is the outcome of classifying a request.
type Kind int

const (
	// KindNone is a request that is not an OAuth access attempt.
	KindNone Kind = iota
	// KindTokenEndpoint is a request-token or access-token exchange.
	KindTokenEndpoint
	// KindThreeLegged carries a non-empty oauth_token.
	KindThreeLegged
	// KindTwoLegged carries oauth_token with an empty value.
	KindTwoLegged
)

func (k Kind) String() string {
	switch k {
	case KindTokenEndpoint:
		return "token_endpoint"
	case KindThreeLegged:
		return "3lo"
	case KindTwoLegged:
		return "2lo"
	default:
		return "none"
	}
}

// IsAccessAttempt reports whether the request tries to reach a protected
// resource with OAuth credentials.
func (k Kind) IsAccessAttempt() bool {
	return k == KindThreeLegged || k == KindTwoLegged
}

var accessParams = []string{
	ParamConsumerKey,
	ParamToken,
	ParamSignatureMethod,
	ParamSignature,
	ParamTimestamp,
	ParamNonce,
}

// Classifier decides what kind of OAuth traffic a request is.
type Classifier struct {
	requestTokenPath string
	accessTokenPath  string
}

// NewClassifier creates a classifier for the given token endpoint paths.
func NewClassifier(requestTokenPath, accessTokenPath string) *Classifier {
	return &Classifier{
		requestTokenPath: requestTokenPath,
		accessTokenPath:  accessTokenPath,
	}
}

// IsTokenEndpoint reports whether path addresses a token exchange endpoint.
func (c *Classifier) IsTokenEndpoint(path string) bool {
	return c.isRequestTokenPath(path) || c.isAccessTokenPath(path)
}

func (c *Classifier) isRequestTokenPath(path string) bool {
	return c.requestTokenPath != "" && strings.HasSuffix(path, c.requestTokenPath)
}

func (c *Classifier) isAccessTokenPath(path string) bool {
	return c.accessTokenPath != "" && strings.HasSuffix(path, c.accessTokenPath)
}

// Classify inspects the path of r and the parameters in req. req may be nil
// when parameter extraction failed, in which case only a token endpoint can
// be recognised. Classify never fails.
func (c *Classifier) Classify(r *http.Request, req *Request) Kind {
	path := r.URL.Path
	if c.IsTokenEndpoint(path) {
		return KindTokenEndpoint
	}
	if req == nil || !req.HasAll(accessParams...) {
		return KindNone
	}

	// Token endpoints were handled above, so neither kind below can be an exchange.
	if req.Params.Get(ParamToken) != "" {
		return KindThreeLegged
	}
	return KindTwoLegged
}
