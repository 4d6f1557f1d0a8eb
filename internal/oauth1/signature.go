package oauth1

import (
	"crypto"
	"crypto/hmac"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // HMAC-SHA1 and RSA-SHA1 are mandated by RFC 5849
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Signature methods.
const (
	MethodHMACSHA1  = "HMAC-SHA1"
	MethodRSASHA1   = "RSA-SHA1"
	MethodPlaintext = "PLAINTEXT"
)

// Credentials are the secrets a signature is checked against.
type Credentials struct {
	ConsumerSecret string
	TokenSecret    string
	PublicKey      *rsa.PublicKey // RSA-SHA1 only
}

// BaseString returns the signature base string of the request
// (RFC 5849 section 3.4.1). oauth_signature is excluded.
func (r *Request) BaseString() string {
	return BaseString(r.Method, r.URI, r.all)
}

// BaseString builds METHOD&uri&params with each part percent-encoded.
func BaseString(method, uri string, params []Param) string {
	encoded := make([]Param, 0, len(params))
	for _, p := range params {
		if p.Name == ParamSignature {
			continue
		}
		encoded = append(encoded, Param{Name: Encode(p.Name), Value: Encode(p.Value)})
	}
	sort.Slice(encoded, func(i, j int) bool {
		if encoded[i].Name != encoded[j].Name {
			return encoded[i].Name < encoded[j].Name
		}
		return encoded[i].Value < encoded[j].Value
	})

	var b strings.Builder
	for i, p := range encoded {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Name)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}

	return strings.ToUpper(method) + "&" + Encode(uri) + "&" + Encode(b.String())
}

// SigningKey returns encode(consumerSecret)&encode(tokenSecret), the HMAC-SHA1
// key and the PLAINTEXT signature.
func SigningKey(consumerSecret, tokenSecret string) string {
	return Encode(consumerSecret) + "&" + Encode(tokenSecret)
}

// HMACSHA1 computes the base64 HMAC-SHA1 signature of baseString.
func HMACSHA1(baseString, consumerSecret, tokenSecret string) string {
	mac := hmac.New(sha1.New, []byte(SigningKey(consumerSecret, tokenSecret)))
	mac.Write([]byte(baseString))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature with creds and compares it in constant time.
func (r *Request) Verify(creds Credentials) error {
	method := r.Params.Get(ParamSignatureMethod)
	signature, ok := r.Params.Lookup(ParamSignature)
	if !ok || signature == "" {
		return fmt.Errorf("%w: %s", ErrMissingParameter, ParamSignature)
	}

	switch method {
	case MethodHMACSHA1:
		expected := HMACSHA1(r.BaseString(), creds.ConsumerSecret, creds.TokenSecret)
		if !hmac.Equal([]byte(expected), []byte(signature)) {
			return ErrInvalidSignature
		}
	case MethodPlaintext:
		if !r.Secure() {
			return ErrInsecurePlaintext
		}
		expected := SigningKey(creds.ConsumerSecret, creds.TokenSecret)
		if !hmac.Equal([]byte(expected), []byte(signature)) {
			return ErrInvalidSignature
		}
	case MethodRSASHA1:
		if creds.PublicKey == nil {
			return ErrInvalidPublicKey
		}
		raw, err := base64.StdEncoding.DecodeString(signature)
		if err != nil {
			return ErrInvalidSignature
		}
		digest := sha1.Sum([]byte(r.BaseString())) //nolint:gosec
		if err := rsa.VerifyPKCS1v15(creds.PublicKey, crypto.SHA1, digest[:], raw); err != nil {
			return ErrInvalidSignature
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedSignatureMethod, method)
	}

	return nil
}

// Secure reports whether the base string URI is https, either because the
// request arrived over TLS or because the public URL says so.
func (r *Request) Secure() bool {
	return strings.HasPrefix(r.URI, "https://")
}

// Timestamp parses oauth_timestamp as seconds since the Unix epoch.
func (r *Request) Timestamp() (time.Time, error) {
	raw := r.Params.Get(ParamTimestamp)
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || secs < 0 {
		return time.Time{}, ErrInvalidTimestamp
	}
	return time.Unix(secs, 0), nil
}

// ParsePublicKey accepts a PEM encoded PKIX key, PKCS#1 key or certificate,
// or the bare base64 DER body of a PKIX key.
func ParsePublicKey(data string) (*rsa.PublicKey, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, ErrInvalidPublicKey
	}

	var der []byte
	blockType := "PUBLIC KEY"
	if block, _ := pem.Decode([]byte(data)); block != nil {
		der = block.Bytes
		blockType = block.Type
	} else {
		var err error
		der, err = base64.StdEncoding.DecodeString(strings.Join(strings.Fields(data), ""))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}
	}

	var key any
	var err error
	switch blockType {
	case "RSA PUBLIC KEY":
		key, err = x509.ParsePKCS1PublicKey(der)
	case "CERTIFICATE":
		var cert *x509.Certificate
		if cert, err = x509.ParseCertificate(der); err == nil {
			key = cert.PublicKey
		}
	default:
		key, err = x509.ParsePKIXPublicKey(der)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}

	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA key", ErrInvalidPublicKey)
	}
	return rsaKey, nil
}
