package handler_test

import (
    "context"
    "fmt"
    "net/http"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/lakshmi-kamath/BookMySpace/internal/handler"
    "github.com/lakshmi-kamath/BookMySpace/internal/model"
    "github.com/lakshmi-kamath/BookMySpace/internal/repository"
    "github.com/lakshmi-kamath/BookMySpace/internal/service"
    "github.com/lakshmi-kamath/BookMySpace/internal/service/servicetest"
)

type fakeVenues struct {
    next   uint64
    venues map[uint64]model.Venue
    booked map[uint64]bool
}

func newFakeVenues() *fakeVenues {
    return &fakeVenues{venues: map[uint64]model.Venue{}, booked: map[uint64]bool{}}
}

func (f *fakeVenues) Create(_ context.Context, v *model.Venue) error {
    f.next++
    v.ID = f.next
    f.venues[v.ID] = *v
    return nil
}

func (f *fakeVenues) GetByID(_ context.Context, id uint64) (model.Venue, error) {
    v, ok := f.venues[id]
    if !ok {
        return model.Venue{}, repository.ErrVenueNotFound
    }
    return v, nil
}

func (f *fakeVenues) List(context.Context) ([]model.Venue, error) {
    out := make([]model.Venue, 0, len(f.venues))
    for id := uint64(1); id <= f.next; id++ {
        if v, ok := f.venues[id]; ok {
            out = append(out, v)
        }
    }
    return out, nil
}

func (f *fakeVenues) Update(_ context.Context, id uint64, p repository.VenuePatch) (model.Venue, error) {
    v, ok := f.venues[id]
    if !ok {
        return model.Venue{}, repository.ErrVenueNotFound
    }
    if p.Name != nil {
        v.Name = *p.Name
    }
    if p.Location != nil {
        v.Location = *p.Location
    }
    if p.Capacity != nil {
        v.Capacity = *p.Capacity
    }
    if p.Price != nil {
        v.Price = *p.Price
    }
    f.venues[id] = v
    return v, nil
}

func (f *fakeVenues) Delete(_ context.Context, id uint64) error {
    if _, ok := f.venues[id]; !ok {
        return repository.ErrVenueNotFound
    }
    if f.booked[id] {
        return repository.ErrConflict
    }
    delete(f.venues, id)
    return nil
}

// fakeReports records the last filter it was asked for.
type fakeReports struct {
    last repository.ReportFilter
}

func (f *fakeReports) ListAll(_ context.Context, rf repository.ReportFilter) ([]model.BookingDetail, error) {
    f.last = rf
    return []model.BookingDetail{{Booking: model.Booking{ID: 1, Status: model.BookingConfirmed}, VenueName: "Hall A"}}, nil
}

func (f *fakeReports) Statistics(_ context.Context, rf repository.ReportFilter) (repository.Statistics, error) {
    f.last = rf
    return repository.Statistics{TotalBookings: 3, ConfirmedBookings: 2, CancelledBookings: 1, TotalRevenue: 3000}, nil
}

func (f *fakeReports) Revenue(_ context.Context, rf repository.ReportFilter) (repository.Revenue, error) {
    f.last = rf
    return repository.Revenue{Total: 3000, Venues: []repository.VenueRevenue{{VenueID: 1, VenueName: "Hall A", Bookings: 2, Revenue: 3000}}}, nil
}

func TestVenues(t *testing.T) {
    venues := newFakeVenues()
    e, g := newEcho()
    h := handler.NewVenueHandler(venues, nil)
    g.GET("/venues", h.List)
    g.GET("/venues/:id", h.Get)
    g.POST("/venues", h.Create)
    g.PUT("/venues/:id", h.Update)
    g.DELETE("/venues/:id", h.Delete)
    auth := bearer(t, model.User{ID: 1, Email: "root@example.com", Role: model.RoleAdmin})

    rec := call(e, http.MethodPost, "/api/venues", auth, `{"name":"Hall A","location":"Pune","capacity":80}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Equal(t, "Missing required fields: price", decode(t, rec)["error"])

    rec = call(e, http.MethodPost, "/api/venues", auth, `{"name":"Hall A","location":"Pune","capacity":-5,"price":1500}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    rec = call(e, http.MethodPost, "/api/venues", auth, `{"name":"Hall A","location":"Pune","capacity":80,"price":1500}`)
    require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
    assert.Equal(t, "Venue created successfully", decode(t, rec)["message"])

    rec = call(e, http.MethodGet, "/api/venues", auth, "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Len(t, decode(t, rec)["venues"], 1)

    rec = call(e, http.MethodGet, "/api/venues/1", auth, "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "Hall A", decode(t, rec)["venue"].(map[string]any)["name"])

    rec = call(e, http.MethodGet, "/api/venues/42", auth, "")
    assert.Equal(t, http.StatusNotFound, rec.Code)
    assert.Equal(t, "Venue not found", decode(t, rec)["error"])

    rec = call(e, http.MethodPut, "/api/venues/1", auth, `{}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    rec = call(e, http.MethodPut, "/api/venues/1", auth, `{"price":1750.5}`)
    require.Equal(t, http.StatusOK, rec.Code)
    v := decode(t, rec)["venue"].(map[string]any)
    assert.EqualValues(t, 1750.5, v["price"])
    assert.Equal(t, "Pune", v["location"], "fields left out are unchanged")

    venues.booked[1] = true
    rec = call(e, http.MethodDelete, "/api/venues/1", auth, "")
    assert.Equal(t, http.StatusConflict, rec.Code)

    venues.booked[1] = false
    rec = call(e, http.MethodDelete, "/api/venues/1", auth, "")
    assert.Equal(t, http.StatusOK, rec.Code)
    rec = call(e, http.MethodDelete, "/api/venues/1", auth, "")
    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func newUsersEnv(t *testing.T) (*echo.Echo, *servicetest.Store, *fakeUsers) {
    t.Helper()
    store := servicetest.New()
    users := newFakeUsers()
    e, g := newEcho()
    h := handler.NewUsersHandler(users, service.NewAccountService(store, nil), nil)
    g.GET("/users", h.List)
    g.DELETE("/users/:id", h.Delete)
    g.PUT("/users/:id/role", h.UpdateRole)
    return e, store, users
}

func TestUsers_DeleteAndRole(t *testing.T) {
    e, store, users := newUsersEnv(t)
    admin := store.AddUser(model.User{Name: "Root", Email: "root@example.com", Role: model.RoleAdmin})
    member := store.AddUser(model.User{Name: "Meera", Email: "meera@example.com"})
    users.add(t, "Root", "root@example.com", "secret1", model.RoleAdmin)
    auth := bearer(t, admin)

    rec := call(e, http.MethodGet, "/api/users", auth, "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.NotContains(t, rec.Body.String(), "password")

    rec = call(e, http.MethodPut, fmt.Sprintf("/api/users/%d/role", member.ID), auth, `{"role":"admin"}`)
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
    assert.Equal(t, "User role updated to admin", decode(t, rec)["message"])

    rec = call(e, http.MethodPut, fmt.Sprintf("/api/users/%d/role", member.ID), auth, `{"role":"owner"}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    rec = call(e, http.MethodPut, fmt.Sprintf("/api/users/%d/role", admin.ID), auth, `{"role":"user"}`)
    assert.Equal(t, http.StatusForbidden, rec.Code)

    rec = call(e, http.MethodDelete, fmt.Sprintf("/api/users/%d", admin.ID), auth, "")
    assert.Equal(t, http.StatusForbidden, rec.Code)
    assert.Equal(t, "Cannot delete your own account", decode(t, rec)["error"])

    rec = call(e, http.MethodDelete, fmt.Sprintf("/api/users/%d", member.ID), auth, "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "User deleted successfully", decode(t, rec)["message"])

    rec = call(e, http.MethodDelete, fmt.Sprintf("/api/users/%d", member.ID), auth, "")
    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReports_Filters(t *testing.T) {
    reports := &fakeReports{}
    e, g := newEcho()
    h := handler.NewReportHandler(reports, nil)
    g.GET("/bookings/all", h.All)
    g.GET("/bookings/statistics", h.Statistics)
    g.GET("/revenue", h.Revenue)
    auth := bearer(t, model.User{ID: 1, Email: "root@example.com", Role: model.RoleAdmin})

    rec := call(e, http.MethodGet, "/api/bookings/all?from=2026-10-01&to=2026-10-31&venue_id=3&status=confirmed", auth, "")
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
    assert.Equal(t, repository.ReportFilter{From: "2026-10-01", To: "2026-10-31", VenueID: 3, Status: "confirmed"}, reports.last)
    assert.EqualValues(t, 1, decode(t, rec)["count"])

    rec = call(e, http.MethodGet, "/api/bookings/statistics?user_id=7", auth, "")
    require.Equal(t, http.StatusOK, rec.Code)
    stats := decode(t, rec)["statistics"].(map[string]any)
    assert.EqualValues(t, 3, stats["total_bookings"])
    assert.EqualValues(t, 7, reports.last.UserID)

    rec = call(e, http.MethodGet, "/api/revenue", auth, "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.EqualValues(t, 3000, decode(t, rec)["total_revenue"])

    for _, q := range []string{"from=10/01/2026", "to=2026-13-01", "from=2026-10-31&to=2026-10-01", "venue_id=0", "user_id=x", "status=done"} {
        rec = call(e, http.MethodGet, "/api/bookings/all?"+q, auth, "")
        assert.Equal(t, http.StatusBadRequest, rec.Code, q)
    }
}

type downDB struct{ err error }

func (d downDB) PingContext(context.Context) error { return d.err }

func TestHealth(t *testing.T) {
    e := echo.New()
    e.GET("/healthz", handler.Health(downDB{}))
    rec := call(e, http.MethodGet, "/healthz", "", "")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "ok", rec.Body.String())

    e = echo.New()
    e.GET("/healthz", handler.Health(downDB{err: context.DeadlineExceeded}))
    rec = call(e, http.MethodGet, "/healthz", "", "")
    assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
