package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/lakshmi-kamath/BookMySpace/internal/model"
    "github.com/lakshmi-kamath/BookMySpace/internal/repository"
)

// VenueHandler serves venue management for admins.
type VenueHandler struct {
    Venues VenueStore
    Log    *zap.Logger
}

func NewVenueHandler(venues VenueStore, log *zap.Logger) *VenueHandler {
    if log == nil {
        log = zap.NewNop()
    }
    return &VenueHandler{Venues: venues, Log: log}
}

type venueReq struct {
    Name     string  `json:"name" validate:"required"`
    Location string  `json:"location" validate:"required"`
    Capacity int     `json:"capacity" validate:"required,gt=0"`
    Price    float64 `json:"price" validate:"required,gt=0"`
}

type venuePatchReq struct {
    Name     *string  `json:"name" validate:"omitempty,min=1"`
    Location *string  `json:"location" validate:"omitempty,min=1"`
    Capacity *int     `json:"capacity" validate:"omitempty,gt=0"`
    Price    *float64 `json:"price" validate:"omitempty,gt=0"`
}

// List handles GET /venues.
func (h *VenueHandler) List(c echo.Context) error {
    venues, err := h.Venues.List(c.Request().Context())
    if err != nil {
        return internalError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"venues": venues})
}

// Get handles GET /venues/:id.
func (h *VenueHandler) Get(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid venue id")
    }
    v, err := h.Venues.GetByID(c.Request().Context(), id)
    if err != nil {
        return h.venueError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"venue": v})
}

// Create handles POST /venues.
func (h *VenueHandler) Create(c echo.Context) error {
    var req venueReq
    if msg, ok := bindValid(c, &req); !ok {
        return badRequest(c, msg)
    }
    v := model.Venue{
        Name:     strings.TrimSpace(req.Name),
        Location: strings.TrimSpace(req.Location),
        Capacity: req.Capacity,
        Price:    req.Price,
    }
    if err := h.Venues.Create(c.Request().Context(), &v); err != nil {
        return internalError(c, h.Log, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"message": "Venue created successfully", "venue": v})
}

// Update handles PUT /venues/:id with any subset of the fields.
func (h *VenueHandler) Update(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid venue id")
    }
    var req venuePatchReq
    if msg, ok := bindValid(c, &req); !ok {
        return badRequest(c, msg)
    }
    patch := repository.VenuePatch{Name: req.Name, Location: req.Location, Capacity: req.Capacity, Price: req.Price}
    if patch.Empty() {
        return badRequest(c, "At least one field must be provided")
    }
    v, err := h.Venues.Update(c.Request().Context(), id, patch)
    if err != nil {
        return h.venueError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Venue updated successfully", "venue": v})
}

// Delete handles DELETE /venues/:id.
func (h *VenueHandler) Delete(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badRequest(c, "Invalid venue id")
    }
    if err := h.Venues.Delete(c.Request().Context(), id); err != nil {
        return h.venueError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Venue deleted successfully"})
}

func (h *VenueHandler) venueError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, repository.ErrVenueNotFound):
        return errorJSON(c, http.StatusNotFound, codeNotFound, "Venue not found")
    case errors.Is(err, repository.ErrConflict):
        return errorJSON(c, http.StatusConflict, codeConflict, "Venue has bookings and cannot be deleted")
    }
    return internalError(c, h.Log, err)
}
