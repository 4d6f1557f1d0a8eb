package oauth1

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest_FirstOccurrenceWins(t *testing.T) {
	r := httptest.NewRequest(
		http.MethodGet,
		"/rest/api?oauth_consumer_key=first&oauth_consumer_key=second",
		nil,
	)

	req, err := ParseRequest(r, nil)
	require.NoError(t, err)
	assert.Equal(t, "first", req.Params.Get(ParamConsumerKey))
}

func TestParseRequest_SourcePrecedence(t *testing.T) {
	form := url.Values{ParamNonce: {"from-body"}, ParamToken: {"body-token"}}
	r := httptest.NewRequest(
		http.MethodPost,
		"/rest/api?oauth_nonce=from-query",
		strings.NewReader(form.Encode()),
	)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	r.Header.Set("Authorization", `OAuth realm="jira", oauth_consumer_key="from-header", oauth_nonce="hdr%20nonce"`)

	req, err := ParseRequest(r, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-header", req.Params.Get(ParamConsumerKey))
	assert.Equal(t, "hdr nonce", req.Params.Get(ParamNonce))
	assert.Equal(t, "body-token", req.Params.Get(ParamToken))
	_, hasRealm := req.Params.Lookup("realm")
	assert.False(t, hasRealm, "realm must not be treated as a parameter")
}

func TestParseRequest_EmptyTokenIsPresent(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", `OAuth oauth_token="", oauth_consumer_key="jenkins"`)

	req, err := ParseRequest(r, nil)
	require.NoError(t, err)
	value, ok := req.Params.Lookup(ParamToken)
	assert.True(t, ok)
	assert.Empty(t, value)

	_, ok = req.Params.Lookup(ParamVerifier)
	assert.False(t, ok)
}

func TestParseRequest_MalformedHeader(t *testing.T) {
	tests := []string{
		`OAuth oauth_token`,
		`OAuth oauth_token=unquoted`,
		`OAuth oauth_token="%zz"`,
	}
	for _, header := range tests {
		t.Run(header, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("Authorization", header)

			_, err := ParseRequest(r, nil)
			assert.ErrorIs(t, err, ErrMalformedHeader)
		})
	}
}

func TestParseRequest_IgnoresOtherSchemes(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?oauth_nonce=q", nil)
	r.Header.Set("Authorization", "Basic YWxpY2U6c2VjcmV0")

	req, err := ParseRequest(r, nil)
	require.NoError(t, err)
	assert.Equal(t, "q", req.Params.Get(ParamNonce))
	assert.Len(t, req.Params, 1)
}

func TestBaseStringURI(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		host      string
		publicURL string
		want      string
	}{
		{
			name:   "default http port dropped",
			target: "/photos?x=1",
			host:   "Photos.Example.NET:80",
			want:   "http://photos.example.net/photos",
		},
		{
			name:   "custom port kept",
			target: "/r%20v",
			host:   "example.com:8080",
			want:   "http://example.com:8080/r%20v",
		},
		{
			name:      "public url replaces scheme and host",
			target:    "/bitbucket/oauth/request-token",
			host:      "10.0.0.5:8080",
			publicURL: "https://jenkins.example.com:443/ci/",
			want:      "https://jenkins.example.com/ci/bitbucket/oauth/request-token",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			r.Host = tt.host

			var public *url.URL
			if tt.publicURL != "" {
				var err error
				public, err = url.Parse(tt.publicURL)
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, BaseStringURI(r, public))
		})
	}
}
