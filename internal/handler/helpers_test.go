package handler_test

import (
    "context"
    "database/sql"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "sync"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/require"

    "github.com/lakshmi-kamath/BookMySpace/internal/handler"
    "github.com/lakshmi-kamath/BookMySpace/internal/middleware"
    "github.com/lakshmi-kamath/BookMySpace/internal/model"
    "github.com/lakshmi-kamath/BookMySpace/internal/repository"
    "github.com/lakshmi-kamath/BookMySpace/internal/utils"
)

var tokens = utils.NewTokenManager("handler-test-secret", time.Hour)

// fakeUsers is an in-memory handler.UserStore.
type fakeUsers struct {
    mu    sync.Mutex
    next  uint64
    users map[uint64]model.User
    err   error
}

func newFakeUsers() *fakeUsers { return &fakeUsers{users: map[uint64]model.User{}} }

func (f *fakeUsers) add(t *testing.T, name, email, password, role string) model.User {
    t.Helper()
    u, err := f.Create(context.Background(), name, email, password, role, 4)
    require.NoError(t, err)
    return u
}

func (f *fakeUsers) Create(_ context.Context, name, email, password, role string, cost int) (model.User, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    if f.err != nil {
        return model.User{}, f.err
    }
    for _, u := range f.users {
        if strings.EqualFold(u.Email, email) {
            return model.User{}, repository.ErrEmailExists
        }
    }
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return model.User{}, err
    }
    f.next++
    u := model.User{ID: f.next, Name: name, Email: email, PasswordHash: hash, Role: role}
    f.users[u.ID] = u
    return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    for _, u := range f.users {
        if u.Email == email {
            return u, nil
        }
    }
    return model.User{}, sql.ErrNoRows
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    if u, ok := f.users[id]; ok {
        return u, nil
    }
    return model.User{}, sql.ErrNoRows
}

func (f *fakeUsers) List(context.Context) ([]model.User, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    out := make([]model.User, 0, len(f.users))
    for id := uint64(1); id <= f.next; id++ {
        if u, ok := f.users[id]; ok {
            out = append(out, u)
        }
    }
    return out, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id uint64, name, password string, cost int) (model.User, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    u, ok := f.users[id]
    if !ok {
        return model.User{}, repository.ErrUserNotFound
    }
    if name != "" {
        u.Name = name
    }
    if password != "" {
        hash, err := utils.HashPassword(password, cost)
        if err != nil {
            return model.User{}, err
        }
        u.PasswordHash = hash
    }
    f.users[id] = u
    return u, nil
}

// newEcho returns an echo instance with the validator installed and a
// group behind JWTAuth.
func newEcho() (*echo.Echo, *echo.Group) {
    e := echo.New()
    e.Validator = handler.NewValidator()
    return e, e.Group("/api", middleware.JWTAuth(tokens))
}

func bearer(t *testing.T, u model.User) string {
    t.Helper()
    tok, err := tokens.Issue(u.ID, u.Email, u.Role)
    require.NoError(t, err)
    return "Bearer " + tok.Token
}

func call(e *echo.Echo, method, path, auth, body string) *httptest.ResponseRecorder {
    var req *http.Request
    if body != "" {
        req = httptest.NewRequest(method, path, strings.NewReader(body))
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    } else {
        req = httptest.NewRequest(method, path, nil)
    }
    if auth != "" {
        req.Header.Set(echo.HeaderAuthorization, auth)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
    t.Helper()
    var out map[string]any
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
    return out
}
