package handler

import (
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/lakshmi-kamath/BookMySpace/internal/service"
)

// UsersHandler serves the admin user management endpoints.
type UsersHandler struct {
    Users    UserStore
    Accounts *service.AccountService
    Log      *zap.Logger
}

func NewUsersHandler(users UserStore, accounts *service.AccountService, log *zap.Logger) *UsersHandler {
    if users == nil || accounts == nil {
        panic("nil dependency passed to NewUsersHandler")
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &UsersHandler{Users: users, Accounts: accounts, Log: log}
}

type roleReq struct {
    Role string `json:"role"`
}

// List handles GET /users.
func (h *UsersHandler) List(c echo.Context) error {
    users, err := h.Users.List(c.Request().Context())
    if err != nil {
        return internalError(c, h.Log, err)
    }
    out := make([]userPart, 0, len(users))
    for _, u := range users {
        out = append(out, toUserPart(u))
    }
    return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// Delete handles DELETE /users/:id.
func (h *UsersHandler) Delete(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid user id")
    }
    if err := h.Accounts.DeleteUser(c.Request().Context(), principal(c).ID, id); err != nil {
        return fail(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}

// UpdateRole handles PUT /users/:id/role.
func (h *UsersHandler) UpdateRole(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid user id")
    }
    var req roleReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "Invalid request body")
    }
    u, err := h.Accounts.UpdateRole(c.Request().Context(), principal(c).ID, id, req.Role)
    if err != nil {
        return fail(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "message": fmt.Sprintf("User role updated to %s", u.Role),
        "user":    toUserPart(u),
    })
}
