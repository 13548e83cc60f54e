package utils

import (
    "strings"
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
    now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
    m := NewTokenManager("secret", 0).WithClock(func() time.Time { return now })

    tok, err := m.Issue(42, "asha@example.com", "admin")
    require.NoError(t, err)
    assert.Equal(t, now.Add(24*time.Hour), tok.Exp)

    c, err := m.Verify(tok.Token)
    require.NoError(t, err)
    assert.Equal(t, uint64(42), c.UserID)
    assert.Equal(t, "asha@example.com", c.Email)
    assert.Equal(t, "admin", c.Role)
    assert.True(t, c.Exp.Equal(tok.Exp))
}

func TestTokenManager_Expired(t *testing.T) {
    issued := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
    m := NewTokenManager("secret", time.Hour).WithClock(func() time.Time { return issued })
    tok, err := m.Issue(1, "a@b.c", "user")
    require.NoError(t, err)

    later := m.WithClock(func() time.Time { return issued.Add(2 * time.Hour) })
    _, err = later.Verify(tok.Token)
    assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_Rejects(t *testing.T) {
    m := NewTokenManager("secret", time.Hour)
    good, err := m.Issue(7, "a@b.c", "user")
    require.NoError(t, err)

    _, err = NewTokenManager("other", time.Hour).Verify(good.Token)
    assert.ErrorIs(t, err, ErrTokenInvalid, "wrong secret")

    _, err = m.Verify(good.Token[:strings.LastIndex(good.Token, ".")] + ".AAAA")
    assert.ErrorIs(t, err, ErrTokenInvalid, "bad signature")

    _, err = m.Verify("not-a-token")
    assert.ErrorIs(t, err, ErrTokenInvalid)

    none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
        "user_id": 7, "role": "admin", "exp": time.Now().Add(time.Hour).Unix(),
    }).SignedString(jwt.UnsafeAllowNoneSignatureType)
    require.NoError(t, err)
    _, err = m.Verify(none)
    assert.ErrorIs(t, err, ErrTokenInvalid, "alg none")

    noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
        "user_id": 7, "role": "admin",
    }).SignedString([]byte("secret"))
    require.NoError(t, err)
    _, err = m.Verify(noExp)
    assert.ErrorIs(t, err, ErrTokenInvalid, "missing exp")
}

func TestPassword(t *testing.T) {
    hash, err := HashPassword("hunter22", 4)
    require.NoError(t, err)
    assert.True(t, VerifyPassword(hash, "hunter22"))
    assert.False(t, VerifyPassword(hash, "hunter23"))

    hash, err = HashPassword("x", 99)
    require.NoError(t, err)
    assert.True(t, VerifyPassword(hash, "x"))
}
