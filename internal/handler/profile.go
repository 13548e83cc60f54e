package handler

import (
    "database/sql"
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/lakshmi-kamath/BookMySpace/internal/repository"
)

// ProfileHandler lets users read and edit their own account.
type ProfileHandler struct {
    Users      UserStore
    BcryptCost int
    Log        *zap.Logger
}

func NewProfileHandler(users UserStore, bcryptCost int, log *zap.Logger) *ProfileHandler {
    if log == nil {
        log = zap.NewNop()
    }
    return &ProfileHandler{Users: users, BcryptCost: bcryptCost, Log: log}
}

type profileReq struct {
    Name     string `json:"name"`
    Password string `json:"password" validate:"omitempty,min=6"`
}

// Get handles GET /profile.
func (h *ProfileHandler) Get(c echo.Context) error {
    u, err := h.Users.GetByID(c.Request().Context(), principal(c).ID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return errorJSON(c, http.StatusNotFound, codeNotFound, "User not found")
        }
        return internalError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// Update handles PUT /profile.  Name and password are both optional but
// at least one is required.
func (h *ProfileHandler) Update(c echo.Context) error {
    var req profileReq
    if msg, ok := bindValid(c, &req); !ok {
        return badRequest(c, msg)
    }
    if strings.TrimSpace(req.Name) == "" && req.Password == "" {
        return badRequest(c, "At least one field must be provided")
    }
    u, err := h.Users.UpdateProfile(c.Request().Context(), principal(c).ID, req.Name, req.Password, h.BcryptCost)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return errorJSON(c, http.StatusNotFound, codeNotFound, "User not found")
        }
        return internalError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated successfully", "user": toUserPart(u)})
}
