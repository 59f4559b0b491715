package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/and161185/newsdesk/internal/errs"
	"github.com/and161185/newsdesk/internal/session"
)

// Header names used by the pipeline.
const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
	contentTypeJSON     = "application/json;charset=UTF-8"
)

// Fallback messages used when the backend does not provide one.
const (
	MsgUnauthorized = "please log in first"
	MsgForbidden    = "you do not have permission to access this resource"
	MsgNotFound     = "the requested resource does not exist"
	MsgServerError  = "server error"
	MsgRequest      = "request failed"
	MsgNetwork      = "network error, please check your connection"
	MsgConfig       = "request configuration error"
)

// Matcher selects envelopes whose NotFound outcome is expected and must not
// be notified.
type Matcher func(env Envelope) bool

// SummaryLookup matches GET /summaries/news/{id}: "no summary yet" is a
// steady state, not an error.
func SummaryLookup(env Envelope) bool {
	return methodOf(env) == http.MethodGet && strings.Contains(env.Path, "/summaries/news/")
}

// DefaultAllowList is the allow-list used when none is configured.
func DefaultAllowList() []Matcher { return []Matcher{SummaryLookup} }

// Outcome is the post-receive decision for one call.
type Outcome struct {
	Result  Result
	Failure *errs.Failure // nil on success

	Notify        bool // emit exactly one notification carrying Failure.Message
	PurgeSession  bool // clear credential and identity
	RedirectLogin bool // force a redirect to the login entry point
}

// OK reports whether the call succeeded.
func (o Outcome) OK() bool { return o.Failure == nil }

func methodOf(env Envelope) string {
	if env.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(env.Method)
}

// Prepare is the pre-send stage. It builds the request for env against
// baseURL and attaches snap's credential verbatim as a bearer token. A missing
// credential is not an error: the call goes out anonymous.
func Prepare(ctx context.Context, baseURL string, env Envelope, snap session.Snapshot, requestID string) (*http.Request, error) {
	target, err := joinURL(baseURL, env.Path, env.Query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if env.Body != nil {
		b, err := json.Marshal(env.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, methodOf(env), target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", "application/json")
	if requestID != "" {
		req.Header.Set(HeaderRequestID, requestID)
	}
	if snap.Credential != "" {
		req.Header.Set(HeaderAuthorization, "Bearer "+snap.Credential)
	}
	return req, nil
}

func joinURL(baseURL, path string, query url.Values) (string, error) {
	if baseURL == "" {
		return "", fmt.Errorf("empty base url")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base url %q is not absolute", baseURL)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Reject is the outcome of a request that failed before dispatch.
func Reject(cause error) Outcome {
	return Outcome{
		Failure: &errs.Failure{Kind: errs.KindConfigError, Message: MsgConfig, Cause: cause},
		Notify:  true,
	}
}

// Unreachable is the outcome of a call that produced no response.
func Unreachable(cause error) Outcome {
	return Outcome{
		Failure: &errs.Failure{Kind: errs.KindNetworkError, Message: MsgNetwork, Cause: cause},
		Notify:  true,
	}
}

// Interpret is the post-receive stage for a call that got a reply.
func Interpret(env Envelope, status int, body []byte, allow []Matcher) Outcome {
	if status >= 200 && status < 300 {
		res := Result{Status: status}
		if len(bytes.TrimSpace(body)) > 0 {
			res.Payload = json.RawMessage(body)
		}
		return Outcome{Result: res}
	}

	kind := errs.KindForStatus(status)
	f := &errs.Failure{Kind: kind, Status: status, Message: serverMessage(body, fallbackMessage(kind))}
	out := Outcome{Failure: f, Notify: true}

	switch kind {
	case errs.KindUnauthorized:
		out.PurgeSession = true
		out.RedirectLogin = true
	case errs.KindNotFound:
		if allowed(env, allow) {
			out.Notify = false
		}
	}
	return out
}

func allowed(env Envelope, allow []Matcher) bool {
	for _, m := range allow {
		if m != nil && m(env) {
			return true
		}
	}
	return false
}

func fallbackMessage(k errs.Kind) string {
	switch k {
	case errs.KindUnauthorized:
		return MsgUnauthorized
	case errs.KindForbidden:
		return MsgForbidden
	case errs.KindNotFound:
		return MsgNotFound
	case errs.KindServerError:
		return MsgServerError
	default:
		return MsgRequest
	}
}

// serverMessage pulls {"message": "..."} out of an error body.
func serverMessage(body []byte, fallback string) string {
	var eb struct {
		Message string `json:"message"`
	}
	if len(body) == 0 || json.Unmarshal(body, &eb) != nil {
		return fallback
	}
	if m := strings.TrimSpace(eb.Message); m != "" {
		return m
	}
	return fallback
}
