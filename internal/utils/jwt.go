package utils // package utils provides helpers for identity tokens and password hashing

import (
    "errors"
    "fmt"
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

var (
    // ErrTokenExpired is returned by Verify for a well-signed token past its exp claim.
    ErrTokenExpired = errors.New("token has expired")
    // ErrTokenInvalid covers every other verification failure.
    ErrTokenInvalid = errors.New("invalid token")
)

// AccessToken is a signed identity token and its expiry.
type AccessToken struct {
    Token string
    Exp   time.Time
}

// Claims is the verified content of an identity token.
type Claims struct {
    UserID uint64
    Email  string
    Role   string
    Exp    time.Time
}

// TokenManager issues and verifies HS256 identity tokens.  The secret is
// fixed at construction.
type TokenManager struct {
    secret []byte
    ttl    time.Duration
    now    func() time.Time
}

// NewTokenManager returns a manager signing with secret.  ttl defaults to
// 24 hours when not positive.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
    if ttl <= 0 {
        ttl = 24 * time.Hour
    }
    return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the manager's clock.  Used by tests.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
    cp := *m
    cp.now = now
    return &cp
}

// Issue signs a token for a user.  The claims carry user_id, sub (the
// same id as a string), email, role, iat and exp.
func (m *TokenManager) Issue(userID uint64, email, role string) (AccessToken, error) {
    now := m.now().UTC()
    exp := now.Add(m.ttl)
    claims := jwt.MapClaims{
        "user_id": userID,
        "sub":     strconv.FormatUint(userID, 10),
        "email":   email,
        "role":    role,
        "iat":     now.Unix(),
        "exp":     exp.Unix(),
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// Verify checks signature, algorithm and expiry and returns the claims.
func (m *TokenManager) Verify(raw string) (Claims, error) {
    tok, err := jwt.Parse(raw,
        func(t *jwt.Token) (interface{}, error) { return m.secret, nil },
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
        jwt.WithExpirationRequired(),
        jwt.WithTimeFunc(m.now),
    )
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return Claims{}, ErrTokenExpired
        }
        return Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
    }
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok || !tok.Valid {
        return Claims{}, ErrTokenInvalid
    }

    var c Claims
    switch v := mc["user_id"].(type) {
    case float64:
        c.UserID = uint64(v)
    default:
        sub, _ := mc.GetSubject()
        id, perr := strconv.ParseUint(sub, 10, 64)
        if perr != nil {
            return Claims{}, ErrTokenInvalid
        }
        c.UserID = id
    }
    if c.UserID == 0 {
        return Claims{}, ErrTokenInvalid
    }
    c.Email, _ = mc["email"].(string)
    c.Role, _ = mc["role"].(string)
    if c.Role == "" {
        return Claims{}, ErrTokenInvalid
    }
    if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
        c.Exp = exp.Time
    }
    return c, nil
}
