package pagination

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestEncodeDecodeCursor_RoundTrip(t *testing.T) {
	c := Cursor{
		V:   1,
		Sid: "sess-123",
		Vw:  ViewKeepKill,
		Off: 200,
		Ps:  50,
		Rv:  3,
		Fh:  FilterHash("EXIT"),
	}
	tok, err := EncodeCursor(c)
	if err != nil {
		t.Fatalf("EncodeCursor error: %v", err)
	}
	// token should be url-safe base64 (no '+', '/', '=')
	if strings.ContainsAny(tok, "+/=") {
		t.Fatalf("token contains non-url-safe chars: %q", tok)
	}
	out, err := DecodeCursor(tok)
	if err != nil {
		t.Fatalf("DecodeCursor error: %v", err)
	}
	if out.Sid != c.Sid || out.Vw != c.Vw || out.Off != c.Off || out.Ps != c.Ps || out.Rv != c.Rv || out.Fh != c.Fh {
		t.Fatalf("roundtrip mismatch: got %+v want %+v", out, c)
	}
}

func TestDecodeCursor_Invalid(t *testing.T) {
	cases := []string{
		"",    // empty
		"!!!", // not base64
		base64.RawURLEncoding.EncodeToString([]byte("not-json")),
		// missing required fields
		mustB64(`{"v":1}`),
		mustB64(`{"v":1,"sid":"","vw":"keep_kill","off":0,"ps":10}`),
		mustB64(`{"v":1,"sid":"x","vw":"bogus","off":0,"ps":10}`),
		mustB64(`{"v":1,"sid":"x","vw":"search_terms","off":-1,"ps":10}`),
		mustB64(`{"v":1,"sid":"x","vw":"sqp_changes","off":0,"ps":0}`),
	}
	for i, tok := range cases {
		if _, err := DecodeCursor(tok); err == nil {
			t.Fatalf("case %d: expected error for token %q", i, tok)
		}
	}
}

func TestFilterHash(t *testing.T) {
	if FilterHash() != "" {
		t.Fatalf("empty filter should hash to empty string")
	}
	if FilterHash("EXIT") == FilterHash("INVEST") {
		t.Fatalf("distinct filters share a hash")
	}
	if FilterHash("a", "b") == FilterHash("ab") {
		t.Fatalf("separator not applied")
	}
}

func TestWindow(t *testing.T) {
	cases := []struct{ total, off, ps, start, end int }{
		{10, 0, 4, 0, 4},
		{10, 8, 4, 8, 10},
		{10, 12, 4, 10, 10},
		{0, 0, 5, 0, 0},
	}
	for _, c := range cases {
		s, e := Window(c.total, c.off, c.ps)
		if s != c.start || e != c.end {
			t.Fatalf("Window(%d,%d,%d) = %d,%d", c.total, c.off, c.ps, s, e)
		}
	}
	if NextOffset(-3, 2) != 2 || NextOffset(4, 0) != 4 {
		t.Fatalf("NextOffset mismatch")
	}
}

func FuzzDecodeCursor(f *testing.F) {
	seeds := []string{
		"", "abc", mustB64(`{"v":1}`), mustB64(`{"sid":"x"}`),
		mustB64(`{"v":1,"sid":"s","vw":"keep_kill","off":0,"ps":1}`),
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, token string) {
		_, _ = DecodeCursor(token)
	})
}

func mustB64(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}
