package http

import "net/http"

type authTransport struct {
	token     string
	transport http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token == "" {
		return t.transport.RoundTrip(req)
	}

	reqCopy := req.Clone(req.Context())
	reqCopy.Header.Set("Authorization", "Bearer "+t.token)

	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken attaches a bearer token to every outbound request. An
// empty token leaves requests untouched.
func WithAuthToken(token string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{
			token:     token,
			transport: rt,
		}
	})
}
