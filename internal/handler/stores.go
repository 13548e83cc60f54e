package handler

import (
    "context"

    "github.com/lakshmi-kamath/BookMySpace/internal/model"
    "github.com/lakshmi-kamath/BookMySpace/internal/repository"
)

// The handlers depend on these narrow views of the repositories.

type UserStore interface {
    Create(ctx context.Context, name, email, password, role string, cost int) (model.User, error)
    GetByEmail(ctx context.Context, email string) (model.User, error)
    GetByID(ctx context.Context, id uint64) (model.User, error)
    List(ctx context.Context) ([]model.User, error)
    UpdateProfile(ctx context.Context, id uint64, name, password string, cost int) (model.User, error)
}

type VenueStore interface {
    Create(ctx context.Context, v *model.Venue) error
    GetByID(ctx context.Context, id uint64) (model.Venue, error)
    List(ctx context.Context) ([]model.Venue, error)
    Update(ctx context.Context, id uint64, p repository.VenuePatch) (model.Venue, error)
    Delete(ctx context.Context, id uint64) error
}

type ReportStore interface {
    ListAll(ctx context.Context, f repository.ReportFilter) ([]model.BookingDetail, error)
    Statistics(ctx context.Context, f repository.ReportFilter) (repository.Statistics, error)
    Revenue(ctx context.Context, f repository.ReportFilter) (repository.Revenue, error)
}

var (
    _ UserStore   = (*repository.UserRepo)(nil)
    _ VenueStore  = (*repository.VenueRepo)(nil)
    _ ReportStore = (*repository.ReportRepo)(nil)
)
