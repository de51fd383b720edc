// client.go contains the http session itself: login against the UFSC single
// sign-on and the navigation primitives the listing operations are built on.

package cagr

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
	"ufsc-matriculas/internal/components/assert"
	"ufsc-matriculas/internal/components/telemetry"
	"ufsc-matriculas/pkg/htmlutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_session_login            = "session.login"
	report_session_open             = "session.open"
	report_session_submit           = "session.submit"
	report_session_list_rooms       = "session.list-rooms"
	report_session_list_student_ids = "session.list-student-ids"
)

const (
	DefaultLoginUrl   = "https://sistemas.ufsc.br/login"
	DefaultServiceUrl = "http://forum.cagr.ufsc.br/"
	DefaultForumUrl   = "http://forum.cagr.ufsc.br"

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)

const (
	loginFormSelector = "#fm1"
	maxRedirects      = 10
)

type Options struct {
	// LoginUrl is the single sign-on login endpoint.
	LoginUrl string
	// ServiceUrl is passed to the single sign-on as the `service` callback.
	ServiceUrl string
	// ForumUrl is the base the forum endpoints are resolved against.
	ForumUrl string

	Timeout time.Duration
	// RequestsPerSecond limits how fast the forum is hit, <= 0 means the
	// default of 2.
	RequestsPerSecond float64
	UserAgent         string
	// DisableCloudflareBypass leaves the default http transport untouched.
	DisableCloudflareBypass bool

	Telemetry telemetry.API
	// MessageOutput, if set, receives a dump of every http exchange.
	MessageOutput telemetry.MessageOutput
}

func (o Options) withDefaults() Options {
	if o.LoginUrl == "" {
		o.LoginUrl = DefaultLoginUrl
	}
	if o.ServiceUrl == "" {
		o.ServiceUrl = DefaultServiceUrl
	}
	if o.ForumUrl == "" {
		o.ForumUrl = DefaultForumUrl
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Second * 30
	}
	if o.RequestsPerSecond <= 0 {
		o.RequestsPerSecond = 2
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.Telemetry == nil {
		o.Telemetry = telemetry.SlogAPI{}
	}
	return o
}

// Session is an authenticated browsing context on the forum. It remembers the
// last page it loaded, like a browser tab would.
//
// A Session must not be used from more than one goroutine at a time.
type Session struct {
	Http *resty.Client

	loginUrl *url.URL
	forumUrl *url.URL
	tel      telemetry.API

	page    *goquery.Document
	pageUrl *url.URL
}

func newSession(opts Options) (*Session, error) {
	loginUrl, err := url.Parse(opts.LoginUrl)
	if err != nil {
		return nil, fmt.Errorf("parse login url: %w", err)
	}
	forumUrl, err := url.Parse(opts.ForumUrl)
	if err != nil {
		return nil, fmt.Errorf("parse forum url: %w", err)
	}
	serviceUrl, err := url.Parse(opts.ServiceUrl)
	if err != nil {
		return nil, fmt.Errorf("parse service url: %w", err)
	}

	tel := telemetry.NewScopedAPI("cagr", opts.Telemetry)

	httpClient := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	if !opts.DisableCloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	httpClient.SetHeader("user-agent", opts.UserAgent)
	// redirects are followed inside net/http, so they bypass the rate limiter
	httpClient.SetRedirectPolicy(
		resty.FlexibleRedirectPolicy(maxRedirects),
		resty.DomainCheckRedirectPolicy(
			loginUrl.Hostname(),
			forumUrl.Hostname(),
			serviceUrl.Hostname(),
		),
	)
	httpClient.SetTimeout(opts.Timeout)

	// max burst of 1 keeps the requests evenly spaced
	rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel, opts.MessageOutput)

	return &Session{
		Http:     httpClient,
		loginUrl: loginUrl,
		forumUrl: forumUrl,
		tel:      tel,
	}, nil
}

// Login authenticates on the single sign-on portal and returns a session
// logged into the forum. A non successful response to the credentials
// submission yields ErrAuth.
func Login(ctx context.Context, username, password string, opts Options) (*Session, error) {
	assert.NotEmptyStr("username", username)
	assert.NotEmptyStr("password", password)

	opts = opts.withDefaults()
	s, err := newSession(opts)
	if err != nil {
		return nil, err
	}

	loginError := func(err error) error {
		return fmt.Errorf("cagr: login: %w", err)
	}

	_, err = s.open(ctx, s.loginUrl.String(), url.Values{"service": {opts.ServiceUrl}})
	if err != nil {
		s.tel.ReportBroken(
			report_session_login,
			fmt.Errorf("login page: %w", err),
		)
		return nil, loginError(err)
	}

	form, err := htmlutil.FindForm(s.page, s.pageUrl, loginFormSelector)
	if err != nil {
		s.tel.ReportBroken(report_session_login, err)
		return nil, loginError(err)
	}
	form.Set("username", username)
	form.Set("password", password)

	res, err := s.submit(ctx, form)
	if err != nil {
		s.tel.ReportBroken(
			report_session_login,
			fmt.Errorf("submit credentials: %w", err),
		)
		return nil, loginError(err)
	}
	if res.IsError() {
		s.tel.ReportWarning(report_session_login, "credentials rejected", res.Status())
		return nil, ErrAuth
	}

	s.tel.ReportDebug("logged in", username)
	return s, nil
}

// open performs a GET and makes the result the current page.
func (s *Session) open(ctx context.Context, endpoint string, query url.Values) (*resty.Response, error) {
	s.tel.ReportDebug(report_session_open, endpoint)

	req := s.Http.R().SetContext(ctx)
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	res, err := req.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	err = s.setPage(res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// submit sends a form the way a browser would and makes the result the
// current page.
func (s *Session) submit(ctx context.Context, form *htmlutil.Form) (*resty.Response, error) {
	endpoint := form.Action.String()
	s.tel.ReportDebug(report_session_submit, form.Method, endpoint)

	req := s.Http.R().SetContext(ctx)
	var (
		res *resty.Response
		err error
	)
	switch form.Method {
	case http.MethodPost:
		res, err = req.SetFormDataFromValues(form.Values).Post(endpoint)
	default:
		res, err = req.SetQueryParamsFromValues(form.Values).Get(endpoint)
	}
	if err != nil {
		return nil, fmt.Errorf("submit %s: %w", endpoint, err)
	}
	err = s.setPage(res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Session) setPage(res *resty.Response) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return fmt.Errorf("parse %s: %w", res.Request.URL, err)
	}

	pageUrl, err := url.Parse(res.Request.URL)
	if err != nil {
		return err
	}
	// the final url after redirects is what relative links resolve against
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		pageUrl = res.RawResponse.Request.URL
	}

	s.page = doc
	s.pageUrl = pageUrl
	return nil
}

// onLoginPage reports whether the current page is the single sign-on login
// form, which is where the forum sends sessions that are no longer valid.
func (s *Session) onLoginPage() bool {
	return s.page != nil && s.page.Find(loginFormSelector).Length() > 0
}

func (s *Session) forumEndpoint(path string) string {
	return s.forumUrl.JoinPath(path).String()
}
