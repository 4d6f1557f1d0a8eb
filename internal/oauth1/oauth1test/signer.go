// Package oauth1test signs requests the way an OAuth 1.0a consumer does,
// for exercising the provider in tests.
package oauth1test

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec
	"encoding/base64"
	"encoding/hex"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-authgate/applink/internal/oauth1"
)

// Signer adds an OAuth Authorization header to requests.
type Signer struct {
	ConsumerKey    string
	ConsumerSecret string
	Token          string
	TokenSecret    string
	// TwoLegged sends an empty oauth_token.
	TwoLegged bool
	// OmitToken leaves oauth_token out entirely.
	OmitToken  bool
	Method     string // defaults to HMAC-SHA1
	PrivateKey *rsa.PrivateKey
	Timestamp  time.Time // defaults to time.Now
	Nonce      string    // random when empty
	// Extra protocol parameters such as oauth_verifier or oauth_callback.
	Extra map[string]string
}

// Sign computes the signature and sets the Authorization header.
func (s *Signer) Sign(r *http.Request) {
	method := s.Method
	if method == "" {
		method = oauth1.MethodHMACSHA1
	}
	ts := s.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	nonce := s.Nonce
	if nonce == "" {
		buf := make([]byte, 16)
		_, _ = rand.Read(buf)
		nonce = hex.EncodeToString(buf)
	}

	protocol := map[string]string{
		oauth1.ParamConsumerKey:     s.ConsumerKey,
		oauth1.ParamSignatureMethod: method,
		oauth1.ParamTimestamp:       strconv.FormatInt(ts.Unix(), 10),
		oauth1.ParamNonce:           nonce,
		oauth1.ParamVersion:         "1.0",
	}
	if !s.OmitToken && (s.Token != "" || s.TwoLegged) {
		protocol[oauth1.ParamToken] = s.Token
	}
	for k, v := range s.Extra {
		protocol[k] = v
	}

	var params []oauth1.Param
	for k, v := range protocol {
		params = append(params, oauth1.Param{Name: k, Value: v})
	}
	params = append(params, flatten(r.URL.Query())...)
	params = append(params, formParams(r)...)

	base := oauth1.BaseString(r.Method, oauth1.BaseStringURI(r, nil), params)

	var signature string
	switch method {
	case oauth1.MethodPlaintext:
		signature = oauth1.SigningKey(s.ConsumerSecret, s.TokenSecret)
	case oauth1.MethodRSASHA1:
		digest := sha1.Sum([]byte(base)) //nolint:gosec
		raw, _ := rsa.SignPKCS1v15(rand.Reader, s.PrivateKey, crypto.SHA1, digest[:])
		signature = base64.StdEncoding.EncodeToString(raw)
	default:
		signature = oauth1.HMACSHA1(base, s.ConsumerSecret, s.TokenSecret)
	}
	protocol[oauth1.ParamSignature] = signature

	r.Header.Set("Authorization", Header(protocol))
}

// Header renders protocol parameters as an OAuth Authorization header.
func Header(protocol map[string]string) string {
	keys := make([]string, 0, len(protocol))
	for k := range protocol {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, oauth1.Encode(k)+`="`+oauth1.Encode(protocol[k])+`"`)
	}
	return `OAuth realm="", ` + strings.Join(parts, ", ")
}

func flatten(values url.Values) []oauth1.Param {
	var params []oauth1.Param
	for k, vs := range values {
		for _, v := range vs {
			params = append(params, oauth1.Param{Name: k, Value: v})
		}
	}
	return params
}

// formParams reads a form-encoded body and restores it for the server.
func formParams(r *http.Request) []oauth1.Param {
	if r.Body == nil || !strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		return nil
	}
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil
	}
	return flatten(values)
}
