package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedactor_Scrub(t *testing.T) {
	rd := newRedactor(RedactOptions{})
	cases := map[string]string{
		"":                                         "",
		"owner=coda@example.com":                   "owner=[REDACTED:email]",
		"id=123e4567-e89b-12d3-a456-426614174000":  "id=[REDACTED:id]",
		"call 212-555-1212":                        "call [REDACTED:phone]",
		"name=Raf":                                 "name=Raf",
	}
	for in, want := range cases {
		if got := rd.scrub(in); got != want {
			t.Fatalf("scrub(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRedactor_Headers(t *testing.T) {
	rd := newRedactor(RedactOptions{MaskHeaders: []string{" x-api-key ", ""}})
	h := http.Header{}
	h.Set("Authorization", "Bearer secret")
	h.Set("X-Api-Key", "shhh")
	h.Add("X-Custom", "a@b.com")
	h.Add("X-Custom", "plain")

	got := rd.headers(h)
	if got["Authorization"] != "[REDACTED]" || got["X-Api-Key"] != "[REDACTED]" {
		t.Fatalf("sensitive headers not masked: %v", got)
	}
	if got["X-Custom"] != "[REDACTED:email], plain" {
		t.Fatalf("custom header not scrubbed: %q", got["X-Custom"])
	}
}

func TestAccessLog_Redactions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(AccessLog(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	r.GET("/people/:name", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	q := "email=a.b+tag@example.com&phone=+1-555-123-4567&id=123e4567-e89b-12d3-a456-426614174000"
	req := httptest.NewRequest(http.MethodGet, "/people/Coda?"+q, nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Cookie", "sid=topsecret")
	req.Header.Set("X-Api-Key", "shhh")
	req.Header.Set("X-Custom", "email a@b.com id=123e4567-e89b-12d3-a456-426614174000 phone 555-123-4567")
	req.Header.Set("X-Request-ID", "rid-req")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	logs := buf.String()
	for _, want := range []string{
		`"level":"info"`,
		`"path":"/people/:name"`,
		`"request_id":"rid-req"`,
		`[REDACTED:email]`, `[REDACTED:phone]`, `[REDACTED:id]`,
		`"Authorization":"[REDACTED]"`,
		`"Cookie":"[REDACTED]"`,
		`"X-Api-Key":"[REDACTED]"`,
		`"X-Custom":"email [REDACTED:email] id=[REDACTED:id] phone [REDACTED:phone]"`,
	} {
		if !strings.Contains(logs, want) {
			t.Fatalf("log missing %s:\n%s", want, logs)
		}
	}
	if strings.Contains(logs, "secret") || strings.Contains(logs, "shhh") {
		t.Fatalf("secrets leaked into logs:\n%s", logs)
	}
}
