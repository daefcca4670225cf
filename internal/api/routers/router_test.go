package routers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	mw "khata_ledger/internal/api/middlewares"
	"khata_ledger/internal/api/routers"
	"khata_ledger/internal/models"
	"khata_ledger/internal/repositories/memstore"
	"khata_ledger/internal/services"

	"github.com/shopspring/decimal"
)

func TestMain(m *testing.M) {
	decimal.MarshalJSONWithoutQuotes = true
	os.Setenv("JWT_SECRET", "test-secret")
	os.Exit(m.Run())
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Field   string          `json:"field"`
	Token   string          `json:"token"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	t       *testing.T
	handler http.Handler
}

func newClient(t *testing.T) *client {
	t.Helper()
	ledger := services.NewLedger(memstore.New())
	jwt := mw.MiddlewaresExcludePaths(mw.JWTMiddleware, "/users/signup", "/users/login")
	return &client{t: t, handler: jwt(mw.SecurityHeaders(routers.MainRouter(ledger, nil)))}
}

func (c *client) do(method, path, token string, body any) (int, envelope) {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		c.t.Fatalf("%s %s: decode response %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env
}

func (c *client) signupAndLogin(username string) (models.User, string) {
	c.t.Helper()

	code, env := c.do(http.MethodPost, "/users/signup", "", map[string]string{
		"username":   username,
		"email":      username + "@example.com",
		"first_name": username,
		"password":   "password123",
	})
	if code != http.StatusCreated {
		c.t.Fatalf("signup %s: status %d, %+v", username, code, env)
	}
	var user models.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		c.t.Fatalf("decode user: %v", err)
	}

	code, env = c.do(http.MethodPost, "/users/login", "", map[string]string{
		"account_id": username,
		"password":   "password123",
	})
	if code != http.StatusOK || env.Token == "" {
		c.t.Fatalf("login %s: status %d, %+v", username, code, env)
	}
	return user, env.Token
}

func TestLedgerFlow(t *testing.T) {
	c := newClient(t)
	_, aliceToken := c.signupAndLogin("alice")
	bob, bobToken := c.signupAndLogin("bob")

	if code, env := c.do(http.MethodPost, fmt.Sprintf("/friends/%d/add", bob.ID), aliceToken, nil); code != http.StatusCreated {
		t.Fatalf("add friend: status %d, %+v", code, env)
	}

	code, env := c.do(http.MethodPost, "/expenses/create", aliceToken, map[string]any{
		"title":        "Dinner",
		"amount":       60,
		"split_type":   "equal",
		"participants": []map[string]int{{"user_id": bob.ID}},
	})
	if code != http.StatusCreated {
		t.Fatalf("create expense: status %d, %+v", code, env)
	}
	var txn models.Transaction
	if err := json.Unmarshal(env.Data, &txn); err != nil {
		t.Fatalf("decode transaction: %v", err)
	}
	if len(txn.Splits) != 2 {
		t.Fatalf("got %d splits, want 2", len(txn.Splits))
	}

	code, env = c.do(http.MethodGet, "/summary/", aliceToken, nil)
	if code != http.StatusOK {
		t.Fatalf("summary: status %d, %+v", code, env)
	}
	var summary models.BalanceSummary
	if err := json.Unmarshal(env.Data, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if !summary.TotalToTake.Equal(decimal.NewFromInt(30)) || len(summary.ToTakeWith) != 1 {
		t.Errorf("alice's summary = %+v, want bob owing 30", summary)
	}

	var bobSplit models.SplitDetail
	for _, s := range txn.Splits {
		if s.UserID == bob.ID {
			bobSplit = s
		}
	}
	payPath := fmt.Sprintf("/expenses/splits/%d/pay", bobSplit.ID)

	if code, _ := c.do(http.MethodPost, payPath, aliceToken, nil); code != http.StatusForbidden {
		t.Errorf("alice paying bob's split: status %d, want 403", code)
	}
	if code, env := c.do(http.MethodPost, payPath, bobToken, nil); code != http.StatusOK {
		t.Fatalf("pay split: status %d, %+v", code, env)
	}
	if code, _ := c.do(http.MethodPost, payPath, bobToken, nil); code != http.StatusConflict {
		t.Errorf("paying twice: status %d, want 409", code)
	}

	code, env = c.do(http.MethodPost, "/khata/create", aliceToken, map[string]any{
		"borrower_id": bob.ID,
		"amount":      "25.50",
		"reason":      "train tickets",
	})
	if code != http.StatusCreated {
		t.Fatalf("create khata entry: status %d, %+v", code, env)
	}
	var entry models.KhataBookEntry
	if err := json.Unmarshal(env.Data, &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}

	if code, env := c.do(http.MethodPost, fmt.Sprintf("/khata/%d/settle", entry.ID), bobToken, nil); code != http.StatusOK {
		t.Fatalf("settle: status %d, %+v", code, env)
	}

	if code, env := c.do(http.MethodDelete, "/users/me", bobToken, nil); code != http.StatusOK {
		t.Errorf("delete bob: status %d, %+v", code, env)
	}
}

func TestListingRoutes(t *testing.T) {
	c := newClient(t)
	alice, aliceToken := c.signupAndLogin("alice")
	bob, bobToken := c.signupAndLogin("bob")

	code, env := c.do(http.MethodGet, "/users/me", aliceToken, nil)
	if code != http.StatusOK {
		t.Fatalf("me: status %d, %+v", code, env)
	}
	var me models.User
	if err := json.Unmarshal(env.Data, &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.ID != alice.ID || me.Username != "alice" || me.Password != "" {
		t.Errorf("me = %+v, want alice without a password", me)
	}
	if code, _ := c.do(http.MethodPut, "/users/me", aliceToken, nil); code != http.StatusMethodNotAllowed {
		t.Errorf("PUT /users/me: status %d, want 405", code)
	}

	if code, env := c.do(http.MethodPost, fmt.Sprintf("/friends/%d/add", bob.ID), aliceToken, nil); code != http.StatusCreated {
		t.Fatalf("add friend: status %d, %+v", code, env)
	}
	if code, env := c.do(http.MethodPost, "/expenses/create", aliceToken, map[string]any{
		"title":        "Groceries",
		"amount":       "42.00",
		"split_type":   "equal",
		"participants": []map[string]int{{"user_id": bob.ID}},
	}); code != http.StatusCreated {
		t.Fatalf("create expense: status %d, %+v", code, env)
	}

	// Lending needs no friendship, so carol can borrow from bob.
	carol, _ := c.signupAndLogin("carol")
	code, env = c.do(http.MethodPost, "/khata/create", bobToken, map[string]any{
		"borrower_id": carol.ID,
		"amount":      "6.00",
		"reason":      "snacks",
	})
	if code != http.StatusCreated {
		t.Fatalf("lend to carol: status %d, %+v", code, env)
	}
	var entry models.KhataBookEntry
	if err := json.Unmarshal(env.Data, &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if code, env := c.do(http.MethodPost, fmt.Sprintf("/khata/%d/settle", entry.ID), bobToken, nil); code != http.StatusOK {
		t.Fatalf("settle: status %d, %+v", code, env)
	}

	code, env = c.do(http.MethodGet, "/khata/", bobToken, nil)
	if code != http.StatusOK {
		t.Fatalf("list khata: status %d, %+v", code, env)
	}
	var entries []models.KhataBookEntry
	if err := json.Unmarshal(env.Data, &entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != entry.ID || !entries[0].IsSettled {
		t.Errorf("bob's khata = %+v, want the settled snacks entry", entries)
	}

	code, env = c.do(http.MethodGet, "/expenses/", bobToken, nil)
	if code != http.StatusOK {
		t.Fatalf("list expenses: status %d, %+v", code, env)
	}
	var txns []models.Transaction
	if err := json.Unmarshal(env.Data, &txns); err != nil {
		t.Fatalf("decode transactions: %v", err)
	}
	if len(txns) != 1 || txns[0].Title != "Groceries" || len(txns[0].Splits) != 2 {
		t.Errorf("bob's expenses = %+v, want Groceries with two splits", txns)
	}

	if code, _ := c.do(http.MethodPost, "/khata/", bobToken, nil); code != http.StatusMethodNotAllowed {
		t.Errorf("POST /khata/: status %d, want 405", code)
	}
}

func TestErrorResponses(t *testing.T) {
	c := newClient(t)
	_, token := c.signupAndLogin("alice")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
		field  string
	}{
		{"no token", http.MethodGet, "/summary/", "", nil, http.StatusUnauthorized, ""},
		{"bad token", http.MethodGet, "/summary/", "not-a-jwt", nil, http.StatusUnauthorized, ""},
		{"wrong method", http.MethodGet, "/expenses/create", token, nil, http.StatusMethodNotAllowed, ""},
		{"unknown field", http.MethodPost, "/expenses/create", token, map[string]any{"colour": "red"}, http.StatusBadRequest, ""},
		{"invalid amount", http.MethodPost, "/expenses/create", token, map[string]any{"title": "x", "amount": 0, "split_type": "equal"}, http.StatusBadRequest, "amount"},
		{"bad path id", http.MethodPost, "/khata/abc/settle", token, nil, http.StatusBadRequest, ""},
		{"missing entry", http.MethodPost, "/khata/42/settle", token, nil, http.StatusNotFound, ""},
		{"wrong password", http.MethodPost, "/users/login", "", map[string]string{"account_id": "alice", "password": "nope"}, http.StatusForbidden, ""},
		{"duplicate signup", http.MethodPost, "/users/signup", "", map[string]string{"username": "alice", "email": "alice@example.com", "password": "password123"}, http.StatusConflict, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := c.do(tt.method, tt.path, tt.token, tt.body)
			if code != tt.status {
				t.Errorf("status %d, want %d (%+v)", code, tt.status, env)
			}
			if env.Status != "error" {
				t.Errorf("body status %q, want error", env.Status)
			}
			if tt.field != "" && env.Field != tt.field {
				t.Errorf("field %q, want %q", env.Field, tt.field)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/categories/", nil)
	rec := httptest.NewRecorder()

	handler := mw.SecurityHeaders(routers.MainRouter(services.NewLedger(memstore.New()), nil))
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("missing X-Content-Type-Options header")
	}
}
