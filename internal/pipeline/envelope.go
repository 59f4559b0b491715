// Package pipeline is the authenticated request pipeline every backend call
// goes through.
//
// A call is described by an Envelope and passes two stages around the
// network round trip:
//
//   - Prepare (pre-send) builds the HTTP request and attaches the session
//     credential as a bearer token when one is present.
//   - Interpret (post-receive) turns whatever came back (a reply, a transport
//     error, or a request that could not be built) into an Outcome: either a
//     success Result or an *errs.Failure, plus the side effects to run.
//
// Both stages are pure; Client.Send runs them and applies the side effects
// (session purge, notification, forced login redirect) in that order.
package pipeline

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/and161185/newsdesk/internal/errs"
)

// Envelope describes one outbound call.
type Envelope struct {
	Method string     // defaults to GET
	Path   string     // relative to the configured base URL
	Query  url.Values // optional
	Body   any        // optional; JSON-encoded
}

// Result is a successful reply with the transport wrapper removed.
type Result struct {
	Status    int
	Payload   json.RawMessage // nil when the reply had no body
	RequestID string
}

// Sender is the one primitive feature calls are built on.
type Sender interface {
	Send(ctx context.Context, env Envelope) (Result, error)
}

// Decode unmarshals the payload into T. An empty payload yields the zero value.
func Decode[T any](res Result) (T, error) {
	var v T
	if len(res.Payload) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(res.Payload, &v); err != nil {
		return v, &errs.Failure{
			Kind:    errs.KindOther,
			Status:  res.Status,
			Message: "malformed response body",
			Cause:   err,
		}
	}
	return v, nil
}

// Call sends env and decodes the reply into T.
func Call[T any](ctx context.Context, s Sender, env Envelope) (T, error) {
	res, err := s.Send(ctx, env)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](res)
}
