package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/ptchurch/site/backend/internal/setup"
	"github.com/ptchurch/site/shared/config"
	"github.com/ptchurch/site/shared/csrf"
	mw "github.com/ptchurch/site/shared/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const siteOrigin = "https://example.org"

const servicesJSON = `[
  {"slug": "sunday-worship", "name": {"en": "Sunday Worship", "ta": "ஞாயிறு ஆராதனை"}, "time": "Sunday 10:00 AM"}
]`

const eventsJSON = `[
  {"slug": "carols", "title": {"en": "Carol Service"}, "start": "2099-12-20T18:00", "rsvp": true}
]`

// newTestServer boots the full stack on a temp dir. extraLimits are yaml
// entries appended under security.rate_limits.
func newTestServer(t *testing.T, extraLimits ...string) http.Handler {
	t.Helper()
	dir := t.TempDir()
	contentDir := filepath.Join(dir, "content")
	require.NoError(t, os.MkdirAll(contentDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "services.json"), []byte(servicesJSON), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "events.json"), []byte(eventsJSON), 0o600))

	public := "site_origin: " + siteOrigin + "\n" +
		"timezone: Asia/Kolkata\n" +
		"store:\n  driver: fs\n  data_dir: " + filepath.Join(dir, "data") + "\n" +
		"content:\n  dir: " + contentDir + "\n" +
		"security:\n  rate_limits:\n    prayer:\n      max: 3\n      window: 1m\n" +
		strings.Join(extraLimits, "")
	private := "token_key: test-key\nadmin_secret: admin-pass\nreminders_secret: cron-pass\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "public.yaml"), []byte(public), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "private.yaml"), []byte(private), 0o600))

	cfg := config.MustLoad(dir)
	deps, err := setup.SetupDependencies(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(deps.Close)

	return New(deps)
}

func fetchCSRF(t *testing.T, srv http.Handler) (*http.Cookie, string) {
	t.Helper()
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/csrf", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Ok    bool   `json:"ok"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == csrf.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.Equal(t, cookie.Value, body.Token)
	return cookie, body.Token
}

func postJSON(srv http.Handler, path, body string, cookie *http.Cookie, token, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	if token != "" {
		req.Header.Set(csrf.HeaderName, token)
	}
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m), rr.Body.String())
	return m
}

func TestPrayerSubmissionEndToEnd(t *testing.T) {
	srv := newTestServer(t)
	cookie, token := fetchCSRF(t, srv)

	rr := postJSON(srv, "/api/prayer", `{"name":"Jane","request":"Pray for healing","kind":"request"}`, cookie, token, siteOrigin)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	body := decode(t, rr)
	assert.Equal(t, true, body["ok"])
	post, ok := body["post"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, post["id"])
	assert.Equal(t, "Jane", post["name"])
	assert.Equal(t, "Pray for healing", post["request"])
	assert.Equal(t, "request", post["kind"])
	assert.Equal(t, true, post["approved"])
	assert.Equal(t, float64(0), post["prayedCount"])

	list := httptest.NewRecorder()
	srv.ServeHTTP(list, httptest.NewRequest(http.MethodGet, "/api/prayer", nil))
	require.Equal(t, http.StatusOK, list.Code)
	posts := decode(t, list)["posts"].([]any)
	assert.Len(t, posts, 1)

	pray := postJSON(srv, "/api/prayer/"+post["id"].(string)+"/pray", "", cookie, token, siteOrigin)
	require.Equal(t, http.StatusOK, pray.Code, pray.Body.String())
	assert.Equal(t, float64(1), decode(t, pray)["post"].(map[string]any)["prayedCount"])
}

func TestSecurityGate(t *testing.T) {
	const prayer = `{"name":"Jane","request":"Pray"}`

	t.Run("foreign origin", func(t *testing.T) {
		srv := newTestServer(t)
		cookie, token := fetchCSRF(t, srv)

		rr := postJSON(srv, "/api/prayer", prayer, cookie, token, "https://evil.example")
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "forbidden_origin", decode(t, rr)["error"])
	})

	t.Run("origin is checked before csrf", func(t *testing.T) {
		srv := newTestServer(t)

		rr := postJSON(srv, "/api/prayer", prayer, nil, "", "https://evil.example")
		assert.Equal(t, "forbidden_origin", decode(t, rr)["error"])
	})

	t.Run("missing csrf header", func(t *testing.T) {
		srv := newTestServer(t)
		cookie, _ := fetchCSRF(t, srv)

		rr := postJSON(srv, "/api/prayer", prayer, cookie, "", siteOrigin)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "csrf_failed", decode(t, rr)["error"])
	})

	t.Run("mismatched csrf", func(t *testing.T) {
		srv := newTestServer(t)
		cookie, _ := fetchCSRF(t, srv)

		rr := postJSON(srv, "/api/prayer", prayer, cookie, strings.Repeat("a", 64), siteOrigin)
		assert.Equal(t, "csrf_failed", decode(t, rr)["error"])
	})

	t.Run("rate limited after budget", func(t *testing.T) {
		srv := newTestServer(t)
		cookie, token := fetchCSRF(t, srv)

		for i := 0; i < 3; i++ {
			rr := postJSON(srv, "/api/prayer", prayer, cookie, token, siteOrigin)
			require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		}
		rr := postJSON(srv, "/api/prayer", prayer, cookie, token, siteOrigin)
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.NotEmpty(t, rr.Header().Get("Retry-After"))
		assert.Equal(t, "rate_limited", decode(t, rr)["error"])
	})

	t.Run("invalid body", func(t *testing.T) {
		srv := newTestServer(t)
		cookie, token := fetchCSRF(t, srv)

		rr := postJSON(srv, "/api/prayer", `{"name":"","request":"x","kind":"rant"}`, cookie, token, siteOrigin)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

var dtLine = regexp.MustCompile(`(DTSTART|DTEND);TZID=Asia/Kolkata:(\d{8}T\d{6})`)

func TestServiceCalendarDefaultsToOneHour(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/services/sunday-worship/calendar.ics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), `filename="sunday-worship.ics"`)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	body := rr.Body.String()
	assert.Contains(t, body, "RRULE:FREQ=WEEKLY;BYDAY=SU\r\n")

	times := map[string]time.Time{}
	for _, m := range dtLine.FindAllStringSubmatch(body, -1) {
		ts, err := time.Parse("20060102T150405", m[2])
		require.NoError(t, err)
		times[m[1]] = ts
	}
	require.Len(t, times, 2)
	assert.Equal(t, 60*time.Minute, times["DTEND"].Sub(times["DTSTART"]))
	assert.Equal(t, time.Sunday, times["DTSTART"].Weekday())
	assert.Equal(t, 10, times["DTSTART"].Hour())
}

func TestEventCalendarHeaders(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/events/carols/calendar.ics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.Equal(t, `attachment; filename="carols.ics"`, rr.Header().Get("Content-Disposition"))

	missing := httptest.NewRecorder()
	srv.ServeHTTP(missing, httptest.NewRequest(http.MethodGet, "/api/events/nope/calendar.ics", nil))
	assert.Equal(t, http.StatusNotFound, missing.Code)

	feed := httptest.NewRecorder()
	srv.ServeHTTP(feed, httptest.NewRequest(http.MethodGet, "/api/calendar.ics", nil))
	require.Equal(t, http.StatusOK, feed.Code)
	assert.True(t, strings.HasPrefix(feed.Header().Get("Content-Disposition"), "inline"))
	assert.Equal(t, 2, strings.Count(feed.Body.String(), "BEGIN:VEVENT"))
}

func TestRSVPAndCancel(t *testing.T) {
	srv := newTestServer(t)
	cookie, token := fetchCSRF(t, srv)

	rr := postJSON(srv, "/api/events/carols/rsvp", `{"name":"Ravi","email":"ravi@example.org","guests":2}`, cookie, token, siteOrigin)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	cancelURL := decode(t, rr)["cancelUrl"].(string)
	require.True(t, strings.HasPrefix(cancelURL, siteOrigin+"/rsvp/cancel?token="))
	cancelToken := strings.TrimPrefix(cancelURL, siteOrigin+"/rsvp/cancel?token=")

	cancel := postJSON(srv, "/api/rsvp/cancel", `{"token":"`+cancelToken+`"}`, cookie, token, siteOrigin)
	require.Equal(t, http.StatusOK, cancel.Code, cancel.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/events/carols/rsvps", nil)
	req.Header.Set(mw.AdminSecretHeader, "admin-pass")
	list := httptest.NewRecorder()
	srv.ServeHTTP(list, req)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Equal(t, float64(0), decode(t, list)["totalGuests"])
}

func TestAdminRoutesRequireSecret(t *testing.T) {
	srv := newTestServer(t)

	testCases := []struct {
		name   string
		header string
		value  string
		path   string
		method string
		want   int
	}{
		{name: "no secret", path: "/api/admin/prayer", method: http.MethodGet, want: http.StatusUnauthorized},
		{name: "wrong secret", header: mw.AdminSecretHeader, value: "nope", path: "/api/admin/prayer", method: http.MethodGet, want: http.StatusUnauthorized},
		{name: "admin secret", header: mw.AdminSecretHeader, value: "admin-pass", path: "/api/admin/prayer", method: http.MethodGet, want: http.StatusOK},
		{name: "admin secret is not the reminders secret", header: mw.AdminSecretHeader, value: "admin-pass", path: "/api/admin/reminders", method: http.MethodPost, want: http.StatusUnauthorized},
		{name: "reminders secret", header: mw.RemindersSecretHeader, value: "cron-pass", path: "/api/admin/reminders", method: http.MethodPost, want: http.StatusOK},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			rr := httptest.NewRecorder()
			srv.ServeHTTP(rr, req)
			assert.Equal(t, tc.want, rr.Code, rr.Body.String())
		})
	}
}

func TestAdminRoutesAreRateLimited(t *testing.T) {
	srv := newTestServer(t, "    admin:\n      max: 2\n      window: 1m\n")

	var codes []int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/prayer", nil)
		req.Header.Set(mw.AdminSecretHeader, "guess")
		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
		if rr.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, rr.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)

	// The bucket covers the reminders route too.
	req := httptest.NewRequest(http.MethodPost, "/api/admin/reminders", nil)
	req.Header.Set(mw.RemindersSecretHeader, "cron-pass")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestOperationalEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/health", "/ready", "/api/config", "/api/services", "/api/events", "/metrics"} {
		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}
