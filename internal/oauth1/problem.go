package oauth1

import (
	"net/url"
	"strings"
)

// Response parameter names.
const (
	ParamTokenSecret            = "oauth_token_secret"
	ParamCallbackConfirmed      = "oauth_callback_confirmed"
	ParamExpiresIn              = "oauth_expires_in"
	ParamAuthorizationExpiresIn = "oauth_authorization_expires_in"
	ParamProblem                = "oauth_problem"
	ParamProblemAdvice          = "oauth_problem_advice"
	ParamParametersAbsent       = "oauth_parameters_absent"
	ParamParametersRejected     = "oauth_parameters_rejected"
	ContentTypeFormURLEncoded   = "application/x-www-form-urlencoded"
	authenticateChallengePrefix = "OAuth realm="
)

// Problem values reported to consumers in oauth_problem.
const (
	ProblemParameterAbsent    = "parameter_absent"
	ProblemParameterRejected  = "parameter_rejected"
	ProblemSignatureInvalid   = "signature_invalid"
	ProblemTokenRejected      = "token_rejected"
	ProblemVerifierInvalid    = "verifier_invalid"
	ProblemPermissionUnknown  = "permission_unknown"
	ProblemServiceUnavailable = "service_unavailable"
	ProblemRateLimited        = "rate_limited"
)

// ProblemBody encodes an OAuth problem report as a form-encoded body.
// Extra pairs such as oauth_parameters_absent are appended when non-empty.
func ProblemBody(problem, advice string, extra ...string) string {
	v := url.Values{ParamProblem: {problem}}
	if advice != "" {
		v.Set(ParamProblemAdvice, advice)
	}
	for i := 0; i+1 < len(extra); i += 2 {
		if extra[i+1] != "" {
			v.Set(extra[i], extra[i+1])
		}
	}
	return v.Encode()
}

// Challenge returns the WWW-Authenticate value for realm.
func Challenge(realm string) string {
	return authenticateChallengePrefix + `"` + strings.ReplaceAll(realm, `"`, `\"`) + `"`
}
