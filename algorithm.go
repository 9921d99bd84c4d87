package hsjwt

import (
	"fmt"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwa"
)

// knownAlgorithms is the allow-list of algorithm names a config may carry.
var knownAlgorithms = []jwa.SignatureAlgorithm{
	jwa.HS256,
	jwa.HS384,
	jwa.HS512,
	jwa.RS256,
	jwa.RS384,
	jwa.RS512,
	jwa.ES256,
	jwa.ES384,
	jwa.ES512,
}

// supportedAlgorithms lists the algorithms the engine can actually sign with.
var supportedAlgorithms = []jwa.SignatureAlgorithm{jwa.HS256}

// KnownAlgorithms returns the allow-listed algorithm names.
func KnownAlgorithms() []string {
	return algorithmNames(knownAlgorithms)
}

// SupportedAlgorithms returns the algorithm names that can be used to sign.
func SupportedAlgorithms() []string {
	return algorithmNames(supportedAlgorithms)
}

// ResolveAlgorithm upper-cases name and checks it against the allow-list.
// Allow-listed names other than HS256 are rejected as unsupported.
func ResolveAlgorithm(name string) (jwa.SignatureAlgorithm, error) {
	upper := jwa.SignatureAlgorithm(strings.ToUpper(name))
	if !containsAlgorithm(knownAlgorithms, upper) {
		return "", newErrorf(ErrCodeAlgorithmUnknown, "algorithm [%s] does not exist", name)
	}
	if !containsAlgorithm(supportedAlgorithms, upper) {
		return "", &Error{
			Code:    ErrCodeAlgorithmUnsupported,
			Message: errorMessages[ErrCodeAlgorithmUnsupported],
			Err:     fmt.Errorf("algorithm %s is not implemented", upper),
		}
	}
	return upper, nil
}

func containsAlgorithm(set []jwa.SignatureAlgorithm, alg jwa.SignatureAlgorithm) bool {
	for _, candidate := range set {
		if candidate == alg {
			return true
		}
	}
	return false
}

func algorithmNames(set []jwa.SignatureAlgorithm) []string {
	out := make([]string, 0, len(set))
	for _, alg := range set {
		out = append(out, alg.String())
	}
	return out
}
