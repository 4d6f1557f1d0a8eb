package oauth1

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Protocol parameter names (RFC 5849).
const (
	ParamConsumerKey     = "oauth_consumer_key"
	ParamToken           = "oauth_token"
	ParamSignatureMethod = "oauth_signature_method"
	ParamSignature       = "oauth_signature"
	ParamTimestamp       = "oauth_timestamp"
	ParamNonce           = "oauth_nonce"
	ParamVersion         = "oauth_version"
	ParamVerifier        = "oauth_verifier"
	ParamCallback        = "oauth_callback"
	ParamSessionHandle   = "oauth_session_handle"
)

// Param is a single name/value pair as transmitted.
type Param struct {
	Name  string
	Value string
}

// Params holds the first occurrence of each parameter name.
type Params map[string]string

// Lookup returns the value and whether the parameter was present at all.
// A parameter sent with an empty value is present.
func (p Params) Lookup(name string) (string, bool) {
	v, ok := p[name]
	return v, ok
}

// Get returns the value of name or "" when absent.
func (p Params) Get(name string) string {
	return p[name]
}

// Request is an incoming request with its OAuth parameters collected from
// the Authorization header, the query string and a form-encoded body.
type Request struct {
	Method string
	URI    string // base string URI
	Params Params

	all []Param
}

// ParseRequest collects parameters from r. The Authorization header wins over
// the query string, which wins over the body; within one source the first
// occurrence of a name wins. publicURL, when non-nil, replaces the scheme and
// host used in the signature base string, for servers behind a proxy.
func ParseRequest(r *http.Request, publicURL *url.URL) (*Request, error) {
	req := &Request{
		Method: strings.ToUpper(r.Method),
		URI:    BaseStringURI(r, publicURL),
		Params: Params{},
	}

	if header := r.Header.Get("Authorization"); hasOAuthScheme(header) {
		params, err := parseAuthorizationHeader(header)
		if err != nil {
			return nil, err
		}
		req.add(params)
	}

	req.add(valuesToParams(r.URL.Query()))

	if r.Body != nil && isFormEncoded(r) {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		req.add(valuesToParams(r.PostForm))
	}

	return req, nil
}

func (r *Request) add(params []Param) {
	for _, p := range params {
		if _, seen := r.Params[p.Name]; !seen {
			r.Params[p.Name] = p.Value
		}
	}
	r.all = append(r.all, params...)
}

// HasAll reports whether every name in names is present, empty or not.
func (r *Request) HasAll(names ...string) bool {
	for _, name := range names {
		if _, ok := r.Params[name]; !ok {
			return false
		}
	}
	return true
}

// valuesToParams flattens url.Values in key order so the output is
// deterministic. Repeated values keep their transmitted order.
func valuesToParams(values url.Values) []Param {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var params []Param
	for _, k := range keys {
		for _, v := range values[k] {
			params = append(params, Param{Name: k, Value: v})
		}
	}
	return params
}

func isFormEncoded(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.EqualFold(strings.TrimSpace(ct), "application/x-www-form-urlencoded")
}

func hasOAuthScheme(header string) bool {
	return len(header) >= 6 && strings.EqualFold(header[:6], "OAuth ") ||
		strings.EqualFold(header, "OAuth")
}

// parseAuthorizationHeader parses `OAuth k="v", k2="v2"`. The realm
// parameter is dropped as it never takes part in signing.
func parseAuthorizationHeader(header string) ([]Param, error) {
	rest := strings.TrimSpace(header[min(len(header), 6):])
	var params []Param

	for rest != "" {
		var pair string
		pair, rest, _ = strings.Cut(rest, ",")
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, ErrMalformedHeader
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if len(value) < 2 || value[0] != '"' || value[len(value)-1] != '"' {
			return nil, ErrMalformedHeader
		}
		value = value[1 : len(value)-1]

		if strings.EqualFold(name, "realm") {
			continue
		}

		dn, err := decode(name)
		if err != nil {
			return nil, ErrMalformedHeader
		}
		dv, err := decode(value)
		if err != nil {
			return nil, ErrMalformedHeader
		}
		params = append(params, Param{Name: dn, Value: dv})
	}

	return params, nil
}

// BaseStringURI builds the scheme://host[:port]/path part of the signature
// base string. Default ports are omitted and scheme and host are lower-cased.
func BaseStringURI(r *http.Request, publicURL *url.URL) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host
	if host == "" {
		host = r.URL.Host
	}
	path := r.URL.EscapedPath()

	if publicURL != nil && publicURL.Host != "" {
		scheme = publicURL.Scheme
		host = publicURL.Host
		path = strings.TrimSuffix(publicURL.EscapedPath(), "/") + path
	}

	scheme = strings.ToLower(scheme)
	host = strings.ToLower(host)
	switch {
	case scheme == "http" && strings.HasSuffix(host, ":80"):
		host = strings.TrimSuffix(host, ":80")
	case scheme == "https" && strings.HasSuffix(host, ":443"):
		host = strings.TrimSuffix(host, ":443")
	}
	if path == "" {
		path = "/"
	}

	return scheme + "://" + host + path
}
