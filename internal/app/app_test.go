package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/TPerez13/MuchasVidas/internal/auth"
	"github.com/TPerez13/MuchasVidas/internal/config"
	apperrors "github.com/TPerez13/MuchasVidas/internal/errors"
	"github.com/TPerez13/MuchasVidas/internal/repository/memrepo"
	"github.com/TPerez13/MuchasVidas/internal/seed"
)

const testSecret = "test-secret"

type testServer struct {
	e     *echo.Echo
	users *memrepo.Users
	repos Repositories
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:   testSecret,
		TokenTTL:    time.Hour,
		BcryptCost:  bcrypt.MinCost,
		CORSOrigins: []string{"*"},
	}
	users := memrepo.NewUsers()
	repos := Repositories{
		Users:         users,
		Habits:        memrepo.NewHabits(),
		Achievements:  memrepo.NewAchievements(),
		Notifications: memrepo.NewNotifications(),
	}

	catalog, err := seed.DefaultCatalog()
	require.NoError(t, err)
	_, err = seed.Apply(context.Background(), repos.Habits, repos.Achievements, catalog)
	require.NoError(t, err)

	e, err := New(cfg, repos, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return &testServer{
		e:     e,
		users: users,
		repos: repos,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			encoded, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(encoded)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

type authBody struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) register(t *testing.T, email, name, password string) authBody {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    email,
		"name":     name,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeJSON[authBody](t, rec)
}

func (s *testServer) habitTypeID(t *testing.T, token, code string) string {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/habits/types", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeJSON[struct {
		Results int `json:"results"`
		Data    struct {
			HabitTypes []struct {
				ID   string `json:"id"`
				Code string `json:"code"`
			} `json:"habitTypes"`
		} `json:"data"`
	}](t, rec)
	require.Equal(t, 5, body.Results)
	for _, ht := range body.Data.HabitTypes {
		if ht.Code == code {
			return ht.ID
		}
	}
	t.Fatalf("habit type %s not listed", code)
	return ""
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/does-not-exist", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperrors.CodeNotFound, decodeJSON[errorBody](t, rec).Code)
}

func TestRegisterTokenMeFlow(t *testing.T) {
	s := newTestServer(t)

	registered := s.register(t, "ana@example.com", "Ana", "secret1")
	require.NotEmpty(t, registered.Token)
	assert.Equal(t, "ana@example.com", registered.User.Email)
	assert.Equal(t, "Ana", registered.User.Name)

	rec := s.do(t, http.MethodGet, "/auth/me", registered.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	identity := decodeJSON[struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}](t, rec)
	assert.Equal(t, registered.User.ID, identity.ID)
	assert.Equal(t, "ana@example.com", identity.Email)

	login := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "ana@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, login.Code, login.Body.String())
	assert.NotEmpty(t, decodeJSON[authBody](t, login).Token)

	profile := s.do(t, http.MethodGet, "/users/me", registered.Token, nil)
	require.Equal(t, http.StatusOK, profile.Code)

	for _, rec := range []*httptest.ResponseRecorder{rec, login, profile} {
		body := strings.ToLower(rec.Body.String())
		assert.NotContains(t, body, "password")
		assert.NotContains(t, body, "pass_hash")
		assert.NotContains(t, body, "$2a$")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	first := s.register(t, "ana@example.com", "Ana", "secret1")

	rec := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "ana@example.com",
		"name":     "Impostor",
		"password": "other-secret",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apperrors.CodeUserExists, decodeJSON[errorBody](t, rec).Code)

	// The first account is untouched: its password still works and its name is unchanged.
	login := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "ana@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, login.Code)
	user := decodeJSON[authBody](t, login).User
	assert.Equal(t, first.User.ID, user.ID)
	assert.Equal(t, "Ana", user.Name)

	impostor := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "ana@example.com", "password": "other-secret"})
	assert.Equal(t, http.StatusUnauthorized, impostor.Code)
}

func TestRegister_ValidationListsEveryField(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"name":     "A",
		"password": "123",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeJSON[errorBody](t, rec)
	assert.Equal(t, apperrors.CodeValidation, body.Code)
	fields := make([]string, 0, len(body.Details))
	for _, d := range body.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"email", "name", "password"}, fields)
}

func TestRegister_MalformedBody(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/auth/register", "", `{"email":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.CodeValidation, decodeJSON[errorBody](t, rec).Code)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "ana@example.com", "Ana", "secret1")

	wrongPassword := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "ana@example.com", "password": "wrong-one"})
	unknownEmail := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "nobody@example.com", "password": "secret1"})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, apperrors.CodeInvalidCredentials, decodeJSON[errorBody](t, wrongPassword).Code)
	assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestProtectedRoutes_TokenFailures(t *testing.T) {
	s := newTestServer(t)
	registered := s.register(t, "ana@example.com", "Ana", "secret1")
	userID := uuid.MustParse(registered.User.ID)

	expired, err := auth.NewJWTService(testSecret, -time.Hour).Issue(userID)
	require.NoError(t, err)
	forged, err := auth.NewJWTService("another-secret", time.Hour).Issue(userID)
	require.NoError(t, err)

	gone := s.register(t, "bea@example.com", "Bea", "secret1")
	s.users.Delete(uuid.MustParse(gone.User.ID))

	tests := []struct {
		name     string
		token    string
		wantCode string
	}{
		{"no token", "", apperrors.CodeUnauthorized},
		{"garbage token", "not.a.jwt", apperrors.CodeInvalidToken},
		{"expired token", expired, apperrors.CodeInvalidToken},
		{"wrong signature", forged, apperrors.CodeInvalidToken},
		{"user deleted", gone.Token, apperrors.CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, path := range []string{"/auth/me", "/habits/types", "/gamification/me"} {
				rec := s.do(t, http.MethodGet, path, tt.token, nil)
				assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
				assert.Equal(t, tt.wantCode, decodeJSON[errorBody](t, rec).Code, path)
			}
		})
	}
}

func TestHabitEntries(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "ana@example.com", "Ana", "secret1").Token
	waterID := s.habitTypeID(t, token, "HYDRATION")

	t.Run("negative value is rejected", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/habits/entries", token, map[string]interface{}{
			"typeId": waterID,
			"value":  -5,
			"unit":   "ml",
		})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeJSON[errorBody](t, rec)
		assert.Equal(t, apperrors.CodeValidation, body.Code)
		require.NotEmpty(t, body.Details)
		assert.Equal(t, "value", body.Details[0].Field)
	})

	t.Run("values that do not survive storage are rejected", func(t *testing.T) {
		for _, value := range []interface{}{0.001, 0.004, 1e15, "abc"} {
			rec := s.do(t, http.MethodPost, "/habits/entries", token, map[string]interface{}{
				"typeId": waterID,
				"value":  value,
				"unit":   "ml",
			})

			require.Equal(t, http.StatusBadRequest, rec.Code, "value %v: %s", value, rec.Body.String())
			body := decodeJSON[errorBody](t, rec)
			assert.Equal(t, apperrors.CodeValidation, body.Code)
			require.Len(t, body.Details, 1)
			assert.Equal(t, "value", body.Details[0].Field)
		}

		list := s.do(t, http.MethodGet, "/habits/entries", token, nil)
		assert.Contains(t, list.Body.String(), `"results":0`)
	})

	t.Run("unknown habit type", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/habits/entries", token, map[string]interface{}{
			"typeId": uuid.NewString(),
			"value":  1,
			"unit":   "ml",
		})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, apperrors.CodeNotFound, decodeJSON[errorBody](t, rec).Code)
	})

	t.Run("first entry without notes unlocks an achievement", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/habits/entries", token, map[string]interface{}{
			"typeId": waterID,
			"value":  250,
			"unit":   "ml",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		body := decodeJSON[struct {
			Status string `json:"status"`
			Data   struct {
				Entry struct {
					TypeID string  `json:"typeId"`
					Value  float64 `json:"value"`
					Notes  *string `json:"notes"`
				} `json:"entry"`
				UnlockedAchievements []struct {
					Name      string `json:"name"`
					Criterion string `json:"criterion"`
				} `json:"unlockedAchievements"`
			} `json:"data"`
		}](t, rec)
		assert.Equal(t, "success", body.Status)
		assert.Equal(t, waterID, body.Data.Entry.TypeID)
		assert.Equal(t, 250.0, body.Data.Entry.Value)
		assert.Nil(t, body.Data.Entry.Notes)
		require.Len(t, body.Data.UnlockedAchievements, 1)
		assert.Equal(t, "FIRST_ENTRY", body.Data.UnlockedAchievements[0].Criterion)

		again := s.do(t, http.MethodPost, "/habits/entries", token, map[string]interface{}{
			"typeId": waterID,
			"value":  100,
			"unit":   "ml",
			"notes":  "segundo vaso",
		})
		require.Equal(t, http.StatusCreated, again.Code)
		assert.Contains(t, again.Body.String(), `"unlockedAchievements":[]`)
	})

	t.Run("listing is newest first and filterable", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/habits/entries", token, map[string]interface{}{
			"typeId":   waterID,
			"value":    1.5,
			"unit":     "l",
			"dateTime": "2020-01-01T08:00:00Z",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		all := s.do(t, http.MethodGet, "/habits/entries", token, nil)
		require.Equal(t, http.StatusOK, all.Code)
		listed := decodeJSON[struct {
			Results int `json:"results"`
			Data    struct {
				Entries []struct {
					DateTime time.Time `json:"dateTime"`
				} `json:"entries"`
			} `json:"data"`
		}](t, all)
		require.Equal(t, 3, listed.Results)
		assert.True(t, listed.Data.Entries[0].DateTime.After(listed.Data.Entries[2].DateTime))

		old := s.do(t, http.MethodGet, "/habits/entries?to=2021-01-01T00:00:00Z", token, nil)
		require.Equal(t, http.StatusOK, old.Code)
		assert.Contains(t, old.Body.String(), `"results":1`)

		bad := s.do(t, http.MethodGet, "/habits/entries?from=yesterday", token, nil)
		assert.Equal(t, http.StatusBadRequest, bad.Code)
	})

	t.Run("achievements and points", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/gamification/me", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeJSON[struct {
			Data struct {
				TotalPoints  int               `json:"totalPoints"`
				Achievements []json.RawMessage `json:"achievements"`
			} `json:"data"`
		}](t, rec)
		assert.Equal(t, 10, body.Data.TotalPoints)
		assert.Len(t, body.Data.Achievements, 1)

		catalog := s.do(t, http.MethodGet, "/gamification/achievements", token, nil)
		require.Equal(t, http.StatusOK, catalog.Code)
		assert.Contains(t, catalog.Body.String(), `"results":3`)
	})
}

func TestEntriesAreScopedToTheirOwner(t *testing.T) {
	s := newTestServer(t)
	ana := s.register(t, "ana@example.com", "Ana", "secret1").Token
	bea := s.register(t, "bea@example.com", "Bea", "secret1").Token
	waterID := s.habitTypeID(t, ana, "HYDRATION")

	rec := s.do(t, http.MethodPost, "/habits/entries", ana, map[string]interface{}{"typeId": waterID, "value": 1, "unit": "l"})
	require.Equal(t, http.StatusCreated, rec.Code)

	list := s.do(t, http.MethodGet, "/habits/entries", bea, nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), `"results":0`)
}

func TestUpdateProfile(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "ana@example.com", "Ana", "secret1").Token
	s.register(t, "bea@example.com", "Bea", "secret1")

	rec := s.do(t, http.MethodPatch, "/users/me", token, map[string]string{"name": "Ana María"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Ana María")

	me := s.do(t, http.MethodGet, "/auth/me", token, nil)
	assert.Contains(t, me.Body.String(), "Ana María")

	conflict := s.do(t, http.MethodPatch, "/users/me", token, map[string]string{"email": "bea@example.com"})
	assert.Equal(t, http.StatusConflict, conflict.Code)
	assert.Equal(t, apperrors.CodeUserExists, decodeJSON[errorBody](t, conflict).Code)
}

func TestNotifications(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "ana@example.com", "Ana", "secret1").Token

	invalid := s.do(t, http.MethodPost, "/notifications/schedule", token, map[string]string{
		"title":        "Hidratación",
		"body":         "Toma un vaso de agua",
		"scheduledFor": "mañana",
	})
	assert.Equal(t, http.StatusBadRequest, invalid.Code)

	for _, at := range []string{"2030-01-01T09:00:00Z", "2030-01-02T09:00:00Z"} {
		rec := s.do(t, http.MethodPost, "/notifications/schedule", token, map[string]string{
			"title":        "Hidratación",
			"body":         "Toma un vaso de agua",
			"scheduledFor": at,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"status":"SCHEDULED"`)
	}

	rec := s.do(t, http.MethodGet, "/notifications", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON[struct {
		Results int `json:"results"`
		Data    struct {
			Notifications []struct {
				ScheduledFor time.Time `json:"scheduledFor"`
			} `json:"notifications"`
		} `json:"data"`
	}](t, rec)
	require.Equal(t, 2, body.Results)
	assert.True(t, body.Data.Notifications[0].ScheduledFor.After(body.Data.Notifications[1].ScheduledFor))
}
