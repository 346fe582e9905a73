package server_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/dogtv-dashboard/api/apifake"
	"github.com/jrsteele09/dogtv-dashboard/internal/config"
	"github.com/jrsteele09/dogtv-dashboard/server"
	"github.com/jrsteele09/dogtv-dashboard/token"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "ana@dogtv.com"
	testPassword = "segredo1"
	testName     = "Ana Souza"
)

type testConfig struct {
	config.Config
	apiURL string
	secret string
	wait   time.Duration
}

func (c testConfig) GetAPIBaseURL() string         { return c.apiURL }
func (c testConfig) GetSessionSecret() string      { return c.secret }
func (c testConfig) GetPendingWait() time.Duration { return c.wait }

type harness struct {
	t      *testing.T
	api    *apifake.FakeAPI
	cfg    testConfig
	srv    *server.Server
	web    *httptest.Server
	client *http.Client
}

func newAPI(t *testing.T) *apifake.FakeAPI {
	fake := apifake.New()
	t.Cleanup(fake.Close)
	fake.AddAccount(apifake.Account{Name: testName, Email: testEmail, Password: testPassword})
	fake.SetTvs(
		apifake.Tv{ID: "tv1", Name: "Sala de Estar", Customers: []apifake.Customer{
			{ID: "c1", Name: "Bruno Lima", Email: "bruno@example.com", Phone: "11 99999-0001", PaymentStatus: true},
			{ID: "c2", Name: "Carla Dias", Email: "carla@example.com", Phone: "11 99999-0002"},
		}},
		apifake.Tv{ID: "tv2", Name: "Quarto", Customers: []apifake.Customer{}},
	)
	return fake
}

func newHarness(t *testing.T, fake *apifake.FakeAPI, secret string, opts ...func(*testConfig)) *harness {
	t.Helper()
	cfg := testConfig{
		Config: config.New(),
		apiURL: fake.URL(),
		secret: secret,
		wait:   2 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	srv, err := server.New(cfg)
	require.NoError(t, err)

	web := httptest.NewServer(srv)
	t.Cleanup(web.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &harness{
		t:   t,
		api: fake,
		cfg: cfg,
		srv: srv,
		web: web,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (h *harness) do(req *http.Request) (*http.Response, string) {
	h.t.Helper()
	resp, err := h.client.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp, string(body)
}

func (h *harness) get(path string, header ...string) (*http.Response, string) {
	h.t.Helper()
	req, err := http.NewRequest(http.MethodGet, h.web.URL+path, nil)
	require.NoError(h.t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	return h.do(req)
}

func (h *harness) post(path string, form url.Values) (*http.Response, string) {
	h.t.Helper()
	req, err := http.NewRequest(http.MethodPost, h.web.URL+path, strings.NewReader(form.Encode()))
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req)
}

func loginForm(email, password string) url.Values {
	return url.Values{
		"form_id": {uuid.NewString()},
		"email":   {email},
		"senha":   {password},
	}
}

func (h *harness) login() *http.Response {
	h.t.Helper()
	resp, _ := h.post("/auth/login", loginForm(testEmail, testPassword))
	require.Equal(h.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(h.t, "/", resp.Header.Get("Location"))
	return resp
}

func tokenCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	return nil
}

func TestLoginPage(t *testing.T) {
	h := newHarness(t, newAPI(t), "secret")

	resp, body := h.get("/login?email=ana%40dogtv.com")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `name="form_id"`)
	require.Contains(t, body, `value="ana@dogtv.com"`)
	require.Contains(t, body, "Lembrar-me")
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	require.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))
}

func TestLogin_ValidationBlocksSubmission(t *testing.T) {
	fake := newAPI(t)
	h := newHarness(t, fake, "secret")

	tests := []struct {
		email, password string
		want            string
	}{
		{"", testPassword, "O email é obrigatório"},
		{"not-an-email", testPassword, "Formato de email inválido"},
		{"ana@dogtv", testPassword, "Formato de email inválido"},
		{testEmail, "", "A senha é obrigatória"},
		{testEmail, "12345", "A senha deve ter pelo menos 6 caracteres"},
	}
	for _, tc := range tests {
		resp, body := h.post("/auth/login", loginForm(tc.email, tc.password))
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, tc.email)
		require.Contains(t, body, tc.want)
		require.Nil(t, tokenCookie(resp))
	}
	require.Zero(t, fake.LoginCalls.Load())
}

func TestGuard_NoTokenRedirectsToLogin(t *testing.T) {
	fake := newAPI(t)
	h := newHarness(t, fake, "secret")

	for _, path := range []string{"/", "/tvs", "/clientes", "/configuracoes"} {
		resp, _ := h.get(path)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		require.Equal(t, "/login", resp.Header.Get("Location"))
	}

	resp, _ := h.get("/", "HX-Request", "true")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("HX-Redirect"))

	require.Zero(t, fake.VerifyCalls.Load())
	require.Zero(t, fake.ListCalls.Load())
}

func TestLogin_ThenDashboard(t *testing.T) {
	fake := newAPI(t)
	h := newHarness(t, fake, "secret")

	c := tokenCookie(h.login())
	require.NotNil(t, c)
	require.True(t, c.HttpOnly)
	require.Zero(t, c.MaxAge, "without Lembrar-me the cookie lasts for the browser session")
	require.NotContains(t, c.Value, ".", "the raw token is never stored in the clear")

	resp, body := h.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Olá "+testName)
	require.Contains(t, body, "Seus clientes:")
	require.Contains(t, body, "Sala de Estar")
	require.Contains(t, body, "Quarto")
	require.Contains(t, body, fmt.Sprintf("© %d DogTV. Todos os direitos reservados.", time.Now().Year()))
	require.Equal(t, int32(1), fake.VerifyCalls.Load())
	require.Equal(t, int32(1), fake.ListCalls.Load())

	// Later activations reuse the verified session and fetch once each.
	resp, body = h.get("/tvs")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "2 TVs, 2 clientes (1 pagos, 1 pendentes)")
	require.Equal(t, int32(1), fake.VerifyCalls.Load())
	require.Equal(t, int32(2), fake.ListCalls.Load())
}

func TestLogin_RememberPersistsCookie(t *testing.T) {
	h := newHarness(t, newAPI(t), "secret")

	form := loginForm(testEmail, testPassword)
	form.Set("lembrar", "1")
	resp, _ := h.post("/auth/login", form)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	c := tokenCookie(resp)
	require.NotNil(t, c)
	require.Greater(t, c.MaxAge, 0)
	require.LessOrEqual(t, c.MaxAge, int(time.Hour.Seconds()), "bounded by the token's own expiry")
}

func TestLogin_RejectedShowsAPIMessage(t *testing.T) {
	fake := newAPI(t)
	h := newHarness(t, fake, "secret")

	form := loginForm(testEmail, "wrong-password")
	for i := 1; i <= 2; i++ {
		resp, body := h.post("/auth/login", form)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Empty(t, resp.Header.Get("Location"))
		require.Nil(t, tokenCookie(resp))
		require.Contains(t, body, "Email ou senha inválidos")
		require.Contains(t, body, `value="`+testEmail+`"`)
		require.Equal(t, int32(i), fake.LoginCalls.Load())
	}
}

func TestLogin_APIUnreachable(t *testing.T) {
	fake := newAPI(t)
	h := newHarness(t, fake, "secret", func(c *testConfig) {
		c.apiURL = "http://127.0.0.1:1"
	})

	resp, body := h.post("/auth/login", loginForm(testEmail, testPassword))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Ocorreu um erro inesperado. Tente novamente mais tarde.")
	require.Nil(t, tokenCookie(resp))
}

func TestLogin_DuplicateSubmissionIgnored(t *testing.T) {
	fake := newAPI(t)
	h := newHarness(t, fake, "secret")

	release := fake.HoldLogins()
	defer release()

	form := loginForm(testEmail, testPassword)
	first := make(chan *http.Response, 1)
	go func() {
		resp, err := h.client.PostForm(h.web.URL+"/auth/login", form)
		if err == nil {
			resp.Body.Close()
		}
		first <- resp
	}()
	require.Eventually(t, func() bool { return fake.LoginCalls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp, _ := h.post("/auth/login", form)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, int32(1), fake.LoginCalls.Load())

	release()
	resp = <-first
	require.NotNil(t, resp)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	// Settled: the same form may be submitted again.
	resp, _ = h.post("/auth/login", form)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, int32(2), fake.LoginCalls.Load())
}

func TestGuard_RejectedTokenDeletesCookie(t *testing.T) {
	fake := newAPI(t)
	h := newHarness(t, fake, "secret")

	sealer, err := token.NewSealer("secret")
	require.NoError(t, err)
	raw := fake.IssueToken(testEmail)
	fake.Revoke(raw)
	sealed, err := sealer.Seal(raw)
	require.NoError(t, err)

	u, err := url.Parse(h.web.URL)
	require.NoError(t, err)
	h.client.Jar.SetCookies(u, []*http.Cookie{{Name: "token", Value: sealed, Path: "/"}})

	resp, _ := h.get("/")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))
	c := tokenCookie(resp)
	require.NotNil(t, c)
	require.Less(t, c.MaxAge, 0)
	require.Equal(t, int32(1), fake.VerifyCalls.Load())
	require.Zero(t, fake.ListCalls.Load())

	// The token is gone: the next load is the plain no-token case.
	resp, _ = h.get("/")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Nil(t, tokenCookie(resp))
	require.Equal(t, int32(1), fake.VerifyCalls.Load())
}

func TestGuard_TamperedCookie(t *testing.T) {
	fake := newAPI(t)
	h := newHarness(t, fake, "secret")

	u, err := url.Parse(h.web.URL)
	require.NoError(t, err)
	h.client.Jar.SetCookies(u, []*http.Cookie{{Name: "token", Value: "not-sealed", Path: "/"}})

	resp, _ := h.get("/")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))
	c := tokenCookie(resp)
	require.NotNil(t, c)
	require.Less(t, c.MaxAge, 0)
	require.Zero(t, fake.VerifyCalls.Load())
}

func TestGuard_PendingRendersWaitingPage(t *testing.T) {
	fake := newAPI(t)
	h := newHarness(t, fake, "secret", func(c *testConfig) {
		c.wait = 10 * time.Millisecond
	})
	fake.SetVerifyDelay(300 * time.Millisecond)
	h.login()

	resp, body := h.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Verificando autenticação...")
	require.NotContains(t, body, "Seus clientes:")
	require.Zero(t, fake.ListCalls.Load())

	require.Eventually(t, func() bool {
		_, body := h.get("/")
		return strings.Contains(body, "Olá "+testName)
	}, 3*time.Second, 50*time.Millisecond)
	require.Equal(t, int32(1), fake.VerifyCalls.Load())
}

func TestLogout(t *testing.T) {
	fake := newAPI(t)
	h := newHarness(t, fake, "secret")
	h.login()

	resp, _ := h.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = h.post("/auth/logout", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))
	c := tokenCookie(resp)
	require.NotNil(t, c)
	require.Less(t, c.MaxAge, 0)

	resp, _ = h.get("/")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	// Logging out with nothing to log out of still lands on the login page.
	resp, _ = h.get("/auth/logout")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestDashboard_EmptyGroupAndToggle(t *testing.T) {
	h := newHarness(t, newAPI(t), "secret")
	h.login()

	_, body := h.get("/")
	require.Contains(t, body, `href="/?open=tv1"`)
	require.Contains(t, body, `href="/?open=tv2"`)
	require.NotContains(t, body, "Bruno Lima", "collapsed by default")
	require.NotContains(t, body, "Nenhum cliente cadastrado.")

	_, body = h.get("/?open=tv2")
	require.Contains(t, body, "Nenhum cliente cadastrado.")
	require.NotContains(t, body, "Bruno Lima")
	require.NotContains(t, body, `href="/?open=tv2"`, "tv2 header now collapses itself")

	_, body = h.get("/?open=tv1")
	require.Contains(t, body, "Bruno Lima")
	require.Contains(t, body, "Pago")
	require.Contains(t, body, "Pendente")
	require.NotContains(t, body, "Nenhum cliente cadastrado.")

	_, body = h.get("/?open=tv1&open=tv2&open=unknown")
	require.Contains(t, body, "Bruno Lima")
	require.Contains(t, body, "Nenhum cliente cadastrado.")
	require.NotContains(t, body, "unknown")
}

func TestDashboard_FetchFailureKeepsSession(t *testing.T) {
	fake := newAPI(t)
	h := newHarness(t, fake, "secret")
	h.login()

	fake.FailList(http.StatusInternalServerError, map[string]string{"message": "Serviço indisponível"})
	resp, body := h.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Serviço indisponível")
	require.Nil(t, tokenCookie(resp))

	fake.FailList(http.StatusBadGateway, nil)
	_, body = h.get("/")
	require.Contains(t, body, "Não foi possível carregar os dados.")

	fake.FailList(0, nil)
	_, body = h.get("/")
	require.Contains(t, body, "Sala de Estar")
	require.Equal(t, int32(1), fake.VerifyCalls.Load())
}

func TestCustomersAndSettingsPages(t *testing.T) {
	fake := newAPI(t)
	h := newHarness(t, fake, "secret")
	h.login()

	_, body := h.get("/clientes")
	require.Contains(t, body, "Bruno Lima")
	require.Contains(t, body, "Carla Dias")
	require.Contains(t, body, "Sala de Estar")
	require.Less(t, strings.Index(body, "Bruno Lima"), strings.Index(body, "Carla Dias"))
	require.Contains(t, body, `class="nav-link active" aria-current="page"`)
	lists := fake.ListCalls.Load()

	_, body = h.get("/configuracoes")
	require.Contains(t, body, fake.URL())
	require.Contains(t, body, testName)
	require.Equal(t, lists, fake.ListCalls.Load(), "settings fetches nothing")
}

func TestRestart_SameSecretKeepsIdentity(t *testing.T) {
	fake := newAPI(t)
	first := newHarness(t, fake, "restart-secret")
	first.login()

	second := newHarness(t, fake, "restart-secret")
	second.client = first.client

	resp, body := second.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Olá "+testName)

	other := newHarness(t, fake, "another-secret")
	other.client = first.client
	resp, _ = other.get("/")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestStaticAndHealth(t *testing.T) {
	fake := newAPI(t)
	h := newHarness(t, fake, "secret")

	resp, body := h.get("/css/app.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/css")
	require.Contains(t, body, ".sidebar")

	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)
	resp, _ = h.get("/css/app.css", "If-None-Match", etag, "Accept-Encoding", "identity")
	require.Equal(t, http.StatusNotModified, resp.StatusCode)

	resp, _ = h.get("/css/missing.css")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = h.get("/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `"status":"ok"`)
	require.Zero(t, fake.VerifyCalls.Load())
}

func TestRecoverMiddleware(t *testing.T) {
	h := newHarness(t, newAPI(t), "secret")

	handler := server.ChainMiddleware(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}, h.srv.HTMLMiddleWare()...)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "Ocorreu um erro inesperado")
}
