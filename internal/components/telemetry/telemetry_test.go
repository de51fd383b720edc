package telemetry

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := &Recorder{}
	tel := NewScopedAPI("cagr", rec)

	tel.ReportBroken("session.login", "boom")
	tel.ReportWarning("session.list-rooms")
	tel.ReportDebug("fetch", "/x")
	tel.ReportCount("rooms", 3)

	require.Equal(t, []Report{{Kind: "broken", Id: "cagr: session.login", Params: []any{"boom"}}}, rec.Reports("broken"))
	require.Equal(t, "cagr: session.list-rooms", rec.Reports("warning")[0].Id)
	require.Equal(t, "cagr: fetch", rec.Reports("debug")[0].Id)
	require.Equal(t, []any{int64(3)}, rec.Reports("count")[0].Params)
}

func TestRedactForm(t *testing.T) {
	body := url.Values{"username": {"aluno"}, "password": {"segredo"}}.Encode()

	redacted := redactForm("application/x-www-form-urlencoded", body)
	values, err := url.ParseQuery(redacted)
	require.NoError(t, err)
	require.Equal(t, "aluno", values.Get("username"))
	require.Equal(t, "<REDACTED>", values.Get("password"))

	require.Equal(t, body, redactForm("text/plain", body))
}

func TestNewLogger(t *testing.T) {
	var buff bytes.Buffer
	logger := NewLogger(&buff, false)
	logger.Debug("hidden")
	logger.Info("shown")
	require.NotContains(t, buff.String(), "hidden")
	require.Contains(t, buff.String(), "shown")

	buff.Reset()
	logger = NewLogger(&buff, true)
	logger.Debug("visible")
	require.Contains(t, buff.String(), "visible")
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	rec := &Recorder{}
	client := resty.New()
	InstrumentResty(client, rec, output)

	res, err := client.R().
		SetContext(context.Background()).
		SetFormData(map[string]string{"password": "segredo"}).
		Post(server.URL + "/login")
	require.NoError(t, err)
	require.Equal(t, "ok", res.String())

	_, err = client.R().Get(server.URL + "/missing")
	require.NoError(t, err)

	debug := rec.Reports("debug")
	require.Len(t, debug, 4)
	require.Equal(t, report_resty_request, debug[0].Id)
	require.Equal(t, report_resty_response, debug[1].Id)

	dumped, err := os.ReadFile(filepath.Join(dir, "1.txt"))
	require.NoError(t, err)
	require.Contains(t, string(dumped), "POST "+server.URL+"/login")
	require.NotContains(t, string(dumped), "segredo")

	missing, err := os.ReadFile(filepath.Join(dir, "2.txt"))
	require.NoError(t, err)
	require.Contains(t, string(missing), "GET "+server.URL+"/missing")
	require.Contains(t, string(missing), noBodyAvailable)
	require.Contains(t, string(missing), "404")

	_, err = client.R().Get("http://127.0.0.1:0/unreachable")
	require.Error(t, err)
	require.Len(t, rec.Reports("broken"), 1)
}

func TestSetupWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), "test", Config{})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestFormatRequestBody(t *testing.T) {
	get := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Equal(t, noBodyAvailable, formatRequestBody(get))

	get.Body = io.NopCloser(strings.NewReader(""))
	get.GetBody = func() (io.ReadCloser, error) {
		return nil, nil
	}
	require.Equal(t, noBodyAvailable, formatRequestBody(get))

	form := url.Values{"username": {"aluno"}, "password": {"segredo"}}.Encode()
	post := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form))
	post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	post.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(form)), nil
	}
	require.Equal(t, "password=%3CREDACTED%3E&username=aluno", formatRequestBody(post))
}
