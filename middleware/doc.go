// Package middleware adapts an hsjwt.Verifier to net/http.
//
// Requests without a valid bearer token are answered with
// {"code":0,"msg":"<reason>"} and never reach the wrapped handler. Verified
// claims are bound to the request context; read them with Claims.
package middleware
