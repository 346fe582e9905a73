// Package apifake serves an in-process stand-in for the remote TV subscription API.
package apifake

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Account struct {
	ID       string
	Name     string
	Email    string
	Password string
}

type Customer struct {
	ID            string            `json:"id"`
	Name          string            `json:"nome"`
	Email         string            `json:"email"`
	Phone         string            `json:"telefone"`
	PaymentStatus bool              `json:"statusPagamento"`
	Payments      []json.RawMessage `json:"pagamento,omitempty"`
}

type Tv struct {
	ID        string     `json:"id"`
	Name      string     `json:"nome"`
	Customers []Customer `json:"clientes"`
}

type FakeAPI struct {
	server *httptest.Server
	key    []byte

	lock     sync.RWMutex
	accounts map[string]Account // email -> account
	tokens   map[string]string  // token -> email
	tvs      []Tv
	listErr  *failure
	gate     chan struct{}
	delay    time.Duration

	LoginCalls  atomic.Int32
	VerifyCalls atomic.Int32
	ListCalls   atomic.Int32
}

type failure struct {
	status  int
	payload map[string]string
}

func New() *FakeAPI {
	f := &FakeAPI{
		key:      []byte(uuid.NewString()),
		accounts: make(map[string]Account),
		tokens:   make(map[string]string),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", f.login)
	mux.HandleFunc("GET /auth/verificar", f.verify)
	mux.HandleFunc("GET /tvs/clientes", f.list)
	f.server = httptest.NewServer(mux)
	return f
}

func (f *FakeAPI) URL() string {
	return f.server.URL
}

func (f *FakeAPI) Close() {
	f.server.Close()
}

func (f *FakeAPI) AddAccount(a Account) Account {
	f.lock.Lock()
	defer f.lock.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	f.accounts[strings.ToLower(a.Email)] = a
	return a
}

func (f *FakeAPI) SetTvs(tvs ...Tv) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.tvs = tvs
}

// IssueToken mints a token for an existing account without going through /auth/login.
func (f *FakeAPI) IssueToken(email string) string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.issue(strings.ToLower(email))
}

// Revoke makes subsequent verifications of token fail.
func (f *FakeAPI) Revoke(token string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	delete(f.tokens, token)
}

// FailList makes /tvs/clientes answer status with payload until cleared with a zero status.
func (f *FakeAPI) FailList(status int, payload map[string]string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if status == 0 {
		f.listErr = nil
		return
	}
	f.listErr = &failure{status: status, payload: payload}
}

// SetVerifyDelay slows down /auth/verificar.
func (f *FakeAPI) SetVerifyDelay(d time.Duration) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.delay = d
}

// HoldLogins blocks /auth/login until the returned release func is called.
func (f *FakeAPI) HoldLogins() (release func()) {
	f.lock.Lock()
	defer f.lock.Unlock()
	gate := make(chan struct{})
	f.gate = gate
	var once sync.Once
	return func() {
		once.Do(func() { close(gate) })
	}
}

func (f *FakeAPI) issue(email string) string {
	acc := f.accounts[email]
	claims := jwt.RegisteredClaims{
		Subject:   acc.ID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.key)
	if err != nil {
		panic("apifake: sign token: " + err.Error())
	}
	f.tokens[signed] = email
	return signed
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	f.LoginCalls.Add(1)

	f.lock.RLock()
	gate := f.gate
	f.lock.RUnlock()
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	var body struct {
		Email string `json:"email"`
		Senha string `json:"senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Requisição inválida"})
		return
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	acc, ok := f.accounts[strings.ToLower(body.Email)]
	if !ok || acc.Password != body.Senha {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Email ou senha inválidos"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": f.issue(strings.ToLower(body.Email))})
}

func (f *FakeAPI) verify(w http.ResponseWriter, r *http.Request) {
	f.VerifyCalls.Add(1)

	f.lock.RLock()
	delay := f.delay
	f.lock.RUnlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	acc, ok := f.account(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token inválido ou expirado"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": acc.ID, "nome": acc.Name})
}

func (f *FakeAPI) list(w http.ResponseWriter, r *http.Request) {
	f.ListCalls.Add(1)

	if _, ok := f.account(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token inválido ou expirado"})
		return
	}

	f.lock.RLock()
	defer f.lock.RUnlock()
	if f.listErr != nil {
		writeJSON(w, f.listErr.status, f.listErr.payload)
		return
	}
	tvs := f.tvs
	if tvs == nil {
		tvs = []Tv{}
	}
	writeJSON(w, http.StatusOK, tvs)
}

func (f *FakeAPI) account(r *http.Request) (Account, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return Account{}, false
	}
	f.lock.RLock()
	defer f.lock.RUnlock()
	email, ok := f.tokens[token]
	if !ok {
		return Account{}, false
	}
	acc, ok := f.accounts[email]
	return acc, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
