// Package identity derives a stable rate-limit key for the caller of an HTTP
// request.
package identity

import (
	"net"
	"net/http"
	"strings"
)

// AnonKey is the shared fallback identity used when nothing about the caller
// can be resolved. Unresolvable callers all drain the same bucket.
const AnonKey = "anon"

const forwardedForHeader = "X-Forwarded-For"

// Resolver turns request metadata into a non-empty client key. It is a pure
// function of the request; resolution never fails.
//
// By default the transport-observed peer address wins and X-Forwarded-For is
// only consulted when the peer address cannot be parsed. TrustProxy flips the
// order so the first forwarded hop identifies the real client.
type Resolver struct {
	trustProxy bool
}

type ResolverOption func(*Resolver)

// TrustProxy makes the resolver prefer the first X-Forwarded-For hop over the
// transport peer address. Only enable this behind a proxy you control: the
// header is attacker-supplied on directly reachable services.
func TrustProxy() ResolverOption {
	return func(r *Resolver) { r.trustProxy = true }
}

func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ClientKey resolves the caller of r to a rate-limit key.
func (rv *Resolver) ClientKey(r *http.Request) string {
	if rv.trustProxy {
		if hop := firstForwardedHop(r); hop != "" {
			return hop
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if !rv.trustProxy {
		if hop := firstForwardedHop(r); hop != "" {
			return hop
		}
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return AnonKey
}

// firstForwardedHop returns the left-most entry of X-Forwarded-For. The value
// is not validated as an address; whatever string the proxy put there is
// taken as-is.
func firstForwardedHop(r *http.Request) string {
	raw := r.Header.Get(forwardedForHeader)
	if raw == "" {
		return ""
	}
	hop, _, _ := strings.Cut(raw, ",")
	return strings.TrimSpace(hop)
}
