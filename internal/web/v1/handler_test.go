package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/smallproject/api/internal/core/domain"
	logicv1 "github.com/smallproject/api/internal/logic/v1"
)

type stubUserRepo struct {
	byEmail  map[string]*domain.UserRow
	nextID   int
	getCalls int
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.UserRow, error) {
	s.getCalls++
	if row, ok := s.byEmail[email]; ok {
		copied := *row
		return &copied, nil
	}
	return nil, nil
}

func (s *stubUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	_, ok := s.byEmail[email]
	return ok, nil
}

func (s *stubUserRepo) Create(_ context.Context, email, passwordHash, firstName, lastName string) (int, error) {
	id := s.nextID
	s.nextID++
	s.byEmail[email] = &domain.UserRow{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
	}
	return id, nil
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, _ int) error { return nil }

type stubSessionRepo struct {
	rows        []domain.SessionRow
	tokenCalls  int
	insertCalls int
}

func (s *stubSessionRepo) GetByUserAndIP(_ context.Context, userID int, ip string) (*domain.SessionRow, error) {
	for _, row := range s.rows {
		if row.UserID == userID && row.IP == ip {
			found := row
			return &found, nil
		}
	}
	return nil, nil
}

func (s *stubSessionRepo) GetUserIDByIPAndToken(_ context.Context, ip, token string) (int, error) {
	s.tokenCalls++
	for _, row := range s.rows {
		if row.IP == ip && row.Token == token {
			return row.UserID, nil
		}
	}
	return 0, nil
}

func (s *stubSessionRepo) Insert(_ context.Context, session domain.SessionRow) (bool, error) {
	s.insertCalls++
	for _, row := range s.rows {
		if row.UserID == session.UserID && row.IP == session.IP {
			return false, nil
		}
	}
	s.rows = append(s.rows, session)
	return true, nil
}

type stubContactRepo struct {
	contacts map[int][]domain.ContactRow
	calls    int
}

func (s *stubContactRepo) ListByUserID(_ context.Context, userID int) ([]domain.ContactRow, error) {
	s.calls++
	return s.contacts[userID], nil
}

type testEnv struct {
	router   *gin.Engine
	users    *stubUserRepo
	sessions *stubSessionRepo
	contacts *stubContactRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := &stubUserRepo{byEmail: make(map[string]*domain.UserRow), nextID: 1}
	sessions := &stubSessionRepo{}
	contacts := &stubContactRepo{contacts: make(map[int][]domain.ContactRow)}

	auth := logicv1.NewAuthService(users, contacts, logicv1.NewSessionManager(sessions))

	r := gin.New()
	NewHandler(auth).RegisterRoutes(r.Group("/"))

	return &testEnv{router: r, users: users, sessions: sessions, contacts: contacts}
}

func (e *testEnv) seedUser(t *testing.T, email, password string) int {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	id, err := e.users.Create(context.Background(), email, string(hash), "Ada", "Lovelace")
	require.NoError(t, err)
	return id
}

const testClientIP = "10.1.2.3"

func (e *testEnv) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = testClientIP + ":51234"

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestLoginValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "not an object", body: `[1, 2]`, wantErr: "payload is not a valid JSON object"},
		{name: "missing email", body: `{"password": "x"}`, wantErr: "payload is missing email"},
		{name: "missing password", body: `{"email": "a@b.com"}`, wantErr: "payload is missing password"},
		{name: "empty email", body: `{"email": "", "password": "x"}`, wantErr: "email may not be empty"},
		{name: "empty password", body: `{"email": "a@b.com", "password": ""}`, wantErr: "password may not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			w := env.post("/login", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantErr, decodeError(t, w))
			assert.Zero(t, env.users.getCalls, "validation failure must not touch the store")
			assert.Zero(t, env.sessions.insertCalls)
		})
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "ada@example.com", "secret")

	w := env.post("/login", `{"email": "ada@example.com", "password": "wrong"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "invalid email/password", decodeError(t, w))
}

func TestLoginUnknownUserLooksLikeBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	w := env.post("/login", `{"email": "ghost@example.com", "password": "x"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "invalid email/password", decodeError(t, w))
}

func TestLoginSuccessEnvelope(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedUser(t, "ada@example.com", "secret")

	w := env.post("/login", `{"email": "ada@example.com", "password": "secret"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp domain.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.UserID)
	assert.Equal(t, testClientIP, resp.IP)
	assert.Len(t, resp.Token, logicv1.TokenLength)

	// Second login from the same address returns the identical session.
	w2 := env.post("/login", `{"email": "ada@example.com", "password": "secret"}`)
	require.Equal(t, http.StatusOK, w2.Code)
	var resp2 domain.SessionResponse
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &resp2))
	assert.Equal(t, resp.Token, resp2.Token)
	assert.Equal(t, 1, env.sessions.insertCalls)
}

func TestRegisterProbe(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "taken@x.com", "secret")

	t.Run("taken", func(t *testing.T) {
		w := env.post("/register", `{"email": "taken@x.com"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "email is already in use", decodeError(t, w))
	})

	t.Run("free", func(t *testing.T) {
		w := env.post("/register", `{"email": "free@x.com"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "free@x.com", body.Status)
	})

	t.Run("invalid syntax", func(t *testing.T) {
		w := env.post("/register", `{"email": "not-an-email"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid email address", decodeError(t, w))
	})

	assert.Zero(t, env.sessions.insertCalls, "probe mode must have no session side effects")
}

func TestRegisterValidationOrder(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "not an object", body: `"nope"`, wantErr: "unable to construct user from payload"},
		{
			name:    "bad email reported first",
			body:    `{"email": "nope", "password": "", "firstname": "", "lastname": ""}`,
			wantErr: "invalid email address",
		},
		{
			name:    "missing password",
			body:    `{"email": "a@b.com", "firstname": "Ada", "lastname": "Lovelace"}`,
			wantErr: "invalid password",
		},
		{
			name:    "missing first name",
			body:    `{"email": "a@b.com", "password": "x", "lastname": "Lovelace"}`,
			wantErr: "invalid first name",
		},
		{
			name:    "missing last name",
			body:    `{"email": "a@b.com", "password": "x", "firstname": "Ada"}`,
			wantErr: "invalid last name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			w := env.post("/register", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantErr, decodeError(t, w))
		})
	}
}

func TestRegisterFullSuccess(t *testing.T) {
	env := newTestEnv(t)

	w := env.post("/register", `{"email": "new@x.com", "password": "hunter2", "firstname": "Grace", "lastname": "Hopper"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp domain.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, testClientIP, resp.IP)
	assert.Len(t, resp.Token, logicv1.TokenLength)
	assert.NotNil(t, env.users.byEmail["new@x.com"])
}

func TestRegisterExistingEmailWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "ada@example.com", "secret")

	w := env.post("/register", `{"email": "ada@example.com", "password": "wrong", "firstname": "Ada", "lastname": "Lovelace"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email is already in use", decodeError(t, w))
}

func TestDashboardTokenGate(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.post("/dashboard", `{}`)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "token not present", decodeError(t, w))
		assert.Zero(t, env.sessions.tokenCalls)
	})

	t.Run("malformed token skips store", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.post("/dashboard", `{"token": "deadbeef"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid token received", decodeError(t, w))
		assert.Zero(t, env.sessions.tokenCalls, "malformed token must never query the store")
	})

	t.Run("unknown well-formed token", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.post("/dashboard", `{"token": "`+strings.Repeat("ab", 32)+`"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid token received", decodeError(t, w))
		assert.Equal(t, 1, env.sessions.tokenCalls)
		assert.Zero(t, env.contacts.calls, "unresolved token must have zero side effects")
	})
}

func TestDashboardSuccess(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedUser(t, "ada@example.com", "secret")
	env.contacts.contacts[id] = []domain.ContactRow{
		{ID: 1, Name: "Charles Babbage", Email: "charles@example.com"},
	}

	login := env.post("/login", `{"email": "ada@example.com", "password": "secret"}`)
	require.Equal(t, http.StatusOK, login.Code)
	var session domain.SessionResponse
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &session))

	w := env.post("/dashboard", `{"token": "`+session.Token+`"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var data domain.DashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &data))
	assert.Contains(t, data.Status, "hello user #")
	require.Len(t, data.Contacts, 1)
	assert.Equal(t, "Charles Babbage", data.Contacts[0].Name)
}
