package hsjwt

// AuthResult is the outcome of Auth: either the verified claims or a claim
// set holding only the diagnostic ErrorMessageKey field.
type AuthResult struct {
	claims *Claims
	err    error
}

// OK reports whether verification succeeded.
func (r AuthResult) OK() bool {
	return r.err == nil && r.claims != nil
}

// Claims returns the claim view. It is never nil.
func (r AuthResult) Claims() *Claims {
	if r.claims == nil {
		return &Claims{}
	}
	return r.claims
}

// Err returns the verification failure, or nil on success.
func (r AuthResult) Err() error {
	return r.err
}

// ErrorMessage returns the diagnostic message, empty on success.
func (r AuthResult) ErrorMessage() string {
	if r.err == nil {
		return ""
	}
	return PublicMessage(r.err)
}

// Get is shorthand for r.Claims().Get(key).
func (r AuthResult) Get(key string) any {
	return r.Claims().Get(key)
}

// Auth verifies the authorization header value and never fails: on error
// the returned claims contain only ErrorMessageKey.
func (v *Verifier) Auth(authorization string) AuthResult {
	claims, err := v.Verify(authorization)
	if err != nil {
		failed := &Claims{}
		failed.Set(ErrorMessageKey, PublicMessage(err))
		return AuthResult{claims: failed, err: err}
	}
	return AuthResult{claims: claims}
}
