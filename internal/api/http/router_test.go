package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/mind-engage/mascot-survey/internal/api/http"
	"github.com/mind-engage/mascot-survey/internal/assets"
	"github.com/mind-engage/mascot-survey/internal/captcha"
	"github.com/mind-engage/mascot-survey/internal/catalog"
	"github.com/mind-engage/mascot-survey/internal/config"
	"github.com/mind-engage/mascot-survey/internal/fingerprint"
	"github.com/mind-engage/mascot-survey/internal/guard"
	"github.com/mind-engage/mascot-survey/internal/i18n"
	"github.com/mind-engage/mascot-survey/internal/kv"
	"github.com/mind-engage/mascot-survey/internal/session"
	"github.com/mind-engage/mascot-survey/internal/sheetdb"
	"github.com/mind-engage/mascot-survey/internal/survey"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

const browserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Firefox/128.0"

type fixture struct {
	srv     *httptest.Server
	sheet   *httptest.Server
	rows    atomic.Int32
	lastUA  atomic.Value
	failing atomic.Bool
	store   kv.Store
	guard   *guard.Guard
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: kv.NewMemory()}

	f.sheet = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.failing.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		var body struct {
			Data map[string]string `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Data["timestamp"] == "" {
			http.Error(w, "bad row", http.StatusBadRequest)
			return
		}
		f.rows.Add(1)
		f.lastUA.Store(body.Data["userAgent"])
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(f.sheet.Close)

	cat, err := catalog.New([]catalog.Question{
		{ID: "q1", Options: []string{"a", "b", "c", "d", "e"}},
		{ID: "q2", Options: []string{"a", "b", "c", "d", "e"}},
	}, catalog.Labels{{QuestionID: "q1", OptionID: "a", Lang: "en"}: "Apple"})
	require.NoError(t, err)

	cfg := config.Config{SheetDBAPI: f.sheet.URL, DisableCaptcha: true, CORSOrigins: []string{"http://localhost:5173"}, SessionSecret: "test"}
	fp := fingerprint.ProviderFunc(func(context.Context) (string, error) { return "device-1", nil })
	g := guard.New(f.store, fp, guard.WithLogger(quiet))
	f.guard = g
	sink := sheetdb.New(sheetdb.Config{Endpoint: f.sheet.URL, Rate: 1000, Burst: 10})
	reg := session.NewRegistry(cfg.SessionSecret, time.Hour, func(ua string) *survey.Machine {
		return survey.New(cat, g, sink, survey.WithLogger(quiet), survey.WithUserAgent(ua))
	})
	res := assets.NewResolver(assets.NewStore(fstest.MapFS{
		"mascots/q1-a":             {Data: []byte("img-a")},
		"mascots/placeholder.webp": {Data: []byte("placeholder")},
	}), cat, quiet)

	f.srv = httptest.NewServer(api.NewRouter(api.Deps{
		Config:     cfg,
		Catalog:    cat,
		Sessions:   reg,
		Verifier:   captcha.Bypass{},
		Guard:      g,
		Preference: i18n.NewPreference(f.store, i18n.NL),
		Assets:     res,
		Logger:     quiet,
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("User-Agent", browserAgent)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(res.Body).Decode(&out)
	return res.StatusCode, out
}

func (f *fixture) newSession(t *testing.T) string {
	t.Helper()
	code, out := f.do(t, http.MethodPost, "/session", "", nil)
	require.Equal(t, http.StatusCreated, code)
	tok, _ := out["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func kind(out map[string]any) string {
	if st, ok := out["state"].(map[string]any); ok {
		out = st
	}
	step, _ := out["step"].(map[string]any)
	k, _ := step["kind"].(string)
	return k
}

func (f *fixture) toForm(t *testing.T, tok string) {
	t.Helper()
	steps := []struct {
		method, path string
		body         any
		want         string
	}{
		{http.MethodPost, "/verify", map[string]string{"token": "x"}, "consent"},
		{http.MethodPost, "/consent", map[string]bool{"accepted": true}, "consent"},
		{http.MethodPost, "/start", nil, "question"},
		{http.MethodPost, "/reorder", map[string]string{"active": "b", "over": "a"}, "question"},
		{http.MethodPost, "/next", nil, "question"},
		{http.MethodPost, "/next", nil, "form"},
	}
	for _, s := range steps {
		code, out := f.do(t, s.method, s.path, tok, s.body)
		require.Equal(t, http.StatusOK, code, s.path)
		require.Equal(t, s.want, kind(out), s.path)
	}
}

func TestSurveyFlow(t *testing.T) {
	f := newFixture(t)
	tok := f.newSession(t)

	code, out := f.do(t, http.MethodGet, "/state", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "verification", kind(out))

	f.toForm(t, tok)

	code, out = f.do(t, http.MethodPost, "/submit", tok, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	fields, _ := out["fields"].(map[string]any)
	assert.Equal(t, "Leeftijd is verplicht", fields["age"])

	code, _ = f.do(t, http.MethodPut, "/form", tok, map[string]any{"age": 31, "gender": "female", "education": "hbo"})
	require.Equal(t, http.StatusOK, code)

	code, out = f.do(t, http.MethodPost, "/submit", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "submitted", kind(out))
	assert.Equal(t, int32(1), f.rows.Load())
	assert.Equal(t, browserAgent, f.lastUA.Load(), "row carries the respondent's browser")

	recs, err := f.guard.Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, browserAgent, recs["device-1"].UserAgent)

	// a new tab on the same device is turned away
	code, out = f.do(t, http.MethodPost, "/session", "", nil)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "already_submitted", kind(out))

	code, out = f.do(t, http.MethodGet, "/env", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), out["recordedSubmissions"])
	assert.Equal(t, true, out["ready"])
}

func TestFormRejectsUnknownFieldWithoutApplying(t *testing.T) {
	f := newFixture(t)
	tok := f.newSession(t)
	f.toForm(t, tok)

	code, out := f.do(t, http.MethodPut, "/form", tok, map[string]any{"age": 31, "gender": "female", "shoeSize": 44})
	assert.Equal(t, http.StatusBadRequest, code)
	st, _ := out["state"].(map[string]any)
	form, _ := st["form"].(map[string]any)
	assert.Equal(t, "", form["gender"])
}

func TestSubmitUpstreamFailure(t *testing.T) {
	f := newFixture(t)
	tok := f.newSession(t)
	f.toForm(t, tok)
	code, _ := f.do(t, http.MethodPut, "/form", tok, map[string]any{"age": "40", "gender": "male", "education": "vwo"})
	require.Equal(t, http.StatusOK, code)

	f.failing.Store(true)
	code, out := f.do(t, http.MethodPost, "/submit", tok, nil)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "form", kind(out))

	f.failing.Store(false)
	code, out = f.do(t, http.MethodPost, "/submit", tok, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "submitted", kind(out))
}

func TestErrorsMapToStatus(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(t, http.MethodGet, "/state", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = f.do(t, http.MethodGet, "/state", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	tok := f.newSession(t)
	code, _ = f.do(t, http.MethodPost, "/next", tok, nil)
	assert.Equal(t, http.StatusConflict, code)

	_, _ = f.do(t, http.MethodPost, "/verify", tok, map[string]string{"token": "x"})
	code, _ = f.do(t, http.MethodPost, "/start", tok, nil)
	assert.Equal(t, http.StatusConflict, code, "consent not given")

	req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/consent", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestLanguage(t *testing.T) {
	f := newFixture(t)

	code, out := f.do(t, http.MethodGet, "/lang", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "nl", out["lang"])

	code, _ = f.do(t, http.MethodPut, "/lang", "", map[string]string{"lang": "fr"})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = f.do(t, http.MethodPut, "/lang", "", map[string]string{"lang": "en"})
	require.Equal(t, http.StatusOK, code)

	v, ok, err := f.store.Get(context.Background(), i18n.StoreKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "en", v)

	// validation texts follow the stored language
	tok := f.newSession(t)
	f.toForm(t, tok)
	_, out = f.do(t, http.MethodPost, "/submit", tok, nil)
	fields, _ := out["fields"].(map[string]any)
	assert.Equal(t, "Age is required", fields["age"])

	code, out = f.do(t, http.MethodGet, "/i18n/en", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Mascot Survey", out["title"])
	labels, _ := out["labels"].(map[string]any)
	q1, _ := labels["q1"].(map[string]any)
	assert.Equal(t, "Apple", q1["a"])

	code, _ = f.do(t, http.MethodGet, "/i18n/de", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMascots(t *testing.T) {
	f := newFixture(t)

	res, err := http.Get(f.srv.URL + "/mascots/q1/a")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, "img-a", string(body))
	assert.Empty(t, res.Header.Get("X-Asset-Fallback"))

	res, err = http.Get(f.srv.URL + "/mascots/q1/b")
	require.NoError(t, err)
	body, _ = io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, "placeholder", string(body))
	assert.Equal(t, "1", res.Header.Get("X-Asset-Fallback"))
	assert.Equal(t, "image/webp", res.Header.Get("Content-Type"))

	// option "a" of q2 is a different image than option "a" of q1
	res, err = http.Get(f.srv.URL + "/mascots/q2/a")
	require.NoError(t, err)
	body, _ = io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, "placeholder", string(body))
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	res, err := http.Get(f.srv.URL + "/healthz")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
