package handler

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/lakshmi-kamath/BookMySpace/internal/middleware"
    "github.com/lakshmi-kamath/BookMySpace/internal/model"
    "github.com/lakshmi-kamath/BookMySpace/internal/repository"
    "github.com/lakshmi-kamath/BookMySpace/internal/utils"
)

// AuthHandler serves signup, login and the current-user endpoints.
type AuthHandler struct {
    Users      UserStore
    Tokens     *utils.TokenManager
    BcryptCost int
    Log        *zap.Logger
}

func NewAuthHandler(users UserStore, tokens *utils.TokenManager, bcryptCost int, log *zap.Logger) *AuthHandler {
    if log == nil {
        log = zap.NewNop()
    }
    return &AuthHandler{Users: users, Tokens: tokens, BcryptCost: bcryptCost, Log: log}
}

// ----- DTOs -----

type signupReq struct {
    Name     string `json:"name" validate:"required"`
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required,min=6"`
    Role     string `json:"role"`
}

type loginReq struct {
    Email    string `json:"email" validate:"required"`
    Password string `json:"password" validate:"required"`
}

type userPart struct {
    ID    uint64 `json:"id"`
    Name  string `json:"name"`
    Email string `json:"email"`
    Role  string `json:"role"`
}

func toUserPart(u model.User) userPart {
    return userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Signup creates an account.  Creating an admin requires an admin bearer
// token on the request.
func (h *AuthHandler) Signup(c echo.Context) error {
    var req signupReq
    if msg, ok := bindValid(c, &req); !ok {
        return badRequest(c, msg)
    }
    role := strings.ToLower(strings.TrimSpace(req.Role))
    if role == "" {
        role = model.RoleUser
    }
    if !model.ValidRole(role) {
        return badRequest(c, `Invalid role specified. Must be "user" or "admin"`)
    }
    if role == model.RoleAdmin {
        raw := middleware.BearerToken(c)
        if raw == "" {
            return errorJSON(c, http.StatusUnauthorized, codeUnauthenticated, "Admin token required to create admin user")
        }
        claims, err := h.Tokens.Verify(raw)
        if err != nil {
            msg := "Invalid token"
            if errors.Is(err, utils.ErrTokenExpired) {
                msg = "Token has expired"
            }
            return errorJSON(c, http.StatusUnauthorized, codeUnauthenticated, msg)
        }
        if claims.Role != model.RoleAdmin {
            return errorJSON(c, http.StatusForbidden, codeForbidden, "Admin access required to create admin user")
        }
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, role, h.BcryptCost)
    if err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return errorJSON(c, http.StatusConflict, codeConflict, "Email already exists")
        }
        return internalError(c, h.Log, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "message": "User created successfully",
        "user":    toUserPart(u),
    })
}

// Login verifies credentials and returns a 24h identity token.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if msg, ok := bindValid(c, &req); !ok {
        return badRequest(c, msg)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return errorJSON(c, http.StatusUnauthorized, codeUnauthenticated, "Invalid credentials")
        }
        return internalError(c, h.Log, err)
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return errorJSON(c, http.StatusUnauthorized, codeUnauthenticated, "Invalid credentials")
    }

    tok, err := h.Tokens.Issue(u.ID, u.Email, u.Role)
    if err != nil {
        return internalError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "message":    "Login successful",
        "token":      tok.Token,
        "expires_at": tok.Exp,
        "user":       toUserPart(u),
    })
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
    p := principal(c)
    u, err := h.Users.GetByID(c.Request().Context(), p.ID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return errorJSON(c, http.StatusNotFound, codeNotFound, "User not found")
        }
        return internalError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}
