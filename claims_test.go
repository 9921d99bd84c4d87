package hsjwt

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestClaims_Accessors(t *testing.T) {
	var c Claims
	if c.Get("missing") != nil || c.Has("missing") || c.Len() != 0 {
		t.Fatalf("zero value should be empty")
	}
	c.Delete("missing")

	c.Set("b", 1)
	c.Set("a", nil)
	c.Set("c", "three")
	c.Set("b", 2)

	if got := strings.Join(c.Keys(), ","); got != "b,a,c" {
		t.Fatalf("unexpected order: %s", got)
	}
	if c.Get("b") != 2 {
		t.Fatalf("overwrite should keep position and update value, got %v", c.Get("b"))
	}
	if v, ok := c.Lookup("a"); !ok || v != nil {
		t.Fatalf("null claim should be present: %v %v", v, ok)
	}
	if s, ok := c.String("c"); !ok || s != "three" {
		t.Fatalf("unexpected string claim: %q %v", s, ok)
	}
	if _, ok := c.String("b"); ok {
		t.Fatalf("int claim should not read as string")
	}

	c.Delete("a")
	if c.Has("a") || strings.Join(c.Keys(), ",") != "b,c" {
		t.Fatalf("delete failed: %v", c.Keys())
	}
}

func TestClaims_NilReceiver(t *testing.T) {
	var c *Claims
	if c.Get("x") != nil || c.Has("x") || c.Len() != 0 || c.Keys() != nil {
		t.Fatalf("nil claims should behave as empty")
	}
	if len(c.Map()) != 0 || c.Clone().Len() != 0 {
		t.Fatalf("nil claims should copy as empty")
	}
	c.Delete("x")
}

func TestClaims_JSONKeepsOrder(t *testing.T) {
	raw := `{"z":1,"y":{"b":2,"a":1},"x":[1,"two",null],"w":null,"big":9007199254740993}`

	var c Claims
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got := strings.Join(c.Keys(), ","); got != "z,y,x,w,big" {
		t.Fatalf("unexpected order: %s", got)
	}
	if n, ok := c.Int64("big"); !ok || n != 9007199254740993 {
		t.Fatalf("large integers must survive decoding, got %d", n)
	}

	out, err := json.Marshal(&c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"z":1,"y":{"a":1,"b":2},"x":[1,"two",null],"w":null,"big":9007199254740993}`
	if string(out) != want {
		t.Fatalf("unexpected encoding:\n got %s\nwant %s", out, want)
	}
}

func TestClaims_UnmarshalRejectsNonObjects(t *testing.T) {
	for _, raw := range []string{`[]`, `"s"`, `1`, `null`, `{"a":1} {"b":2}`, `{"a":`, `{}garbage`, `{"exp":1}x`, `{"exp":1}]`} {
		var c Claims
		if err := c.UnmarshalJSON([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", raw)
		}
	}
}

func TestClaims_UnmarshalAllowsTrailingWhitespace(t *testing.T) {
	var c Claims
	if err := c.UnmarshalJSON([]byte("{\"a\":1} \n\t")); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("unexpected claims: %v", c.Map())
	}
}

func TestClaims_MarshalWritesSlashAndUnicodeRaw(t *testing.T) {
	c := NewClaims()
	c.Set("path", "a/b")
	c.Set("name", "José")
	out, err := c.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(out) != `{"path":"a/b","name":"José"}` {
		t.Fatalf("unexpected encoding: %s", out)
	}
}

func TestClaims_MarshalDoesNotEscapeHTML(t *testing.T) {
	c := NewClaims()
	c.Set("url", "https://a.example/?x=1&y=<2>")
	out, err := c.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(out) != `{"url":"https://a.example/?x=1&y=<2>"}` {
		t.Fatalf("unexpected encoding: %s", out)
	}
}

func TestClaims_Int64(t *testing.T) {
	c := NewClaims()
	c.Set("int", 5)
	c.Set("float", 5.9)
	c.Set("number", json.Number("12.5"))
	c.Set("string", "42")
	c.Set("bad", "x")
	c.Set("bool", true)

	checks := map[string]struct {
		want int64
		ok   bool
	}{
		"int":     {5, true},
		"float":   {5, true},
		"number":  {12, true},
		"string":  {42, true},
		"bad":     {0, false},
		"bool":    {0, false},
		"missing": {0, false},
	}
	for key, want := range checks {
		got, ok := c.Int64(key)
		if got != want.want || ok != want.ok {
			t.Fatalf("%s: got %d %v, want %d %v", key, got, ok, want.want, want.ok)
		}
	}
}

func TestStandardClaimNames(t *testing.T) {
	names := StandardClaimNames()
	if strings.Join(names, ",") != "iss,sub,aud,exp,nbf,iat,jti" {
		t.Fatalf("unexpected names: %v", names)
	}
	names[0] = "changed"
	if StandardClaimNames()[0] != "iss" {
		t.Fatalf("StandardClaimNames must return a copy")
	}
	if IsStandardClaim("name") || !IsStandardClaim("exp") {
		t.Fatalf("IsStandardClaim mismatch")
	}
}
