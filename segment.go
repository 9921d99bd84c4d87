package hsjwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

// segmentCount is the number of dot-separated parts in a token.
const segmentCount = 3

func encodeSegment(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// decodeSegment accepts padded or unpadded base64 in either the standard or
// the URL-safe alphabet.
func decodeSegment(seg string) ([]byte, error) {
	if seg == "" {
		return nil, errors.New("empty segment")
	}
	enc := base64.StdEncoding
	if strings.ContainsAny(seg, "-_") {
		enc = base64.URLEncoding
	}
	if strings.HasSuffix(seg, "=") {
		return enc.DecodeString(seg)
	}
	return enc.WithPadding(base64.NoPadding).DecodeString(seg)
}

// sign returns the lowercase hex HMAC-SHA256 of input.
func sign(input, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(input))
	return hex.EncodeToString(mac.Sum(nil))
}

// signatureMatches compares signatures in constant time.
func signatureMatches(input, signature, secret string) bool {
	expected := sign(input, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func signingInput(header, payload string) string {
	return header + "." + payload
}
