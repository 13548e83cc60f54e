package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/lakshmi-kamath/BookMySpace/internal/model"
)

// AccountService applies admin actions on users while keeping at least
// one admin in the system.
type AccountService struct {
	store UserStore
	log   *zap.Logger
}

// NewAccountService panics on a nil store.  A nil logger is replaced by a
// no-op logger.
func NewAccountService(store UserStore, log *zap.Logger) *AccountService {
	if store == nil {
		panic("nil store passed to NewAccountService")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountService{store: store, log: log}
}

// DeleteUser removes targetID on behalf of actorID.  Admins cannot delete
// themselves or the last admin.
func (a *AccountService) DeleteUser(ctx context.Context, actorID, targetID uint64) error {
	if actorID == targetID {
		return forbiddenf("Cannot delete your own account")
	}
	err := a.inTx(ctx, func(tx UserTx) error {
		u, err := lockUser(ctx, tx, targetID)
		if err != nil {
			return err
		}
		if u.IsAdmin() {
			if err := ensureAnotherAdmin(ctx, tx, "Cannot delete the last admin"); err != nil {
				return err
			}
		}
		if err := tx.DeleteUser(ctx, targetID); err != nil {
			return internal("delete user", err)
		}
		return nil
	})
	if err == nil {
		a.log.Info("user deleted", zap.Uint64("user_id", targetID), zap.Uint64("by", actorID))
	}
	return err
}

// UpdateRole changes targetID's role.  Admins cannot change their own role
// or demote the last admin.
func (a *AccountService) UpdateRole(ctx context.Context, actorID, targetID uint64, role string) (model.User, error) {
	if actorID == targetID {
		return model.User{}, forbiddenf("Cannot change your own role")
	}
	if !model.ValidRole(role) {
		return model.User{}, validationf("Invalid or missing role")
	}
	var out model.User
	err := a.inTx(ctx, func(tx UserTx) error {
		u, err := lockUser(ctx, tx, targetID)
		if err != nil {
			return err
		}
		if u.IsAdmin() && role == model.RoleUser {
			if err := ensureAnotherAdmin(ctx, tx, "Cannot demote the last admin"); err != nil {
				return err
			}
		}
		if u.Role != role {
			if err := tx.SetRole(ctx, targetID, role); err != nil {
				return internal("update role", err)
			}
			u.Role = role
		}
		out = u
		return nil
	})
	if err != nil {
		return model.User{}, err
	}
	a.log.Info("user role updated", zap.Uint64("user_id", targetID), zap.String("role", role), zap.Uint64("by", actorID))
	return out, nil
}

func (a *AccountService) inTx(ctx context.Context, fn func(UserTx) error) error {
	tx, err := a.store.BeginUserTx(ctx)
	if err != nil {
		return internal("begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return internal("commit", err)
	}
	committed = true
	return nil
}

func lockUser(ctx context.Context, tx UserTx, id uint64) (model.User, error) {
	u, err := tx.UserForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, notFoundf("User not found")
		}
		return model.User{}, internal("load user", err)
	}
	return u, nil
}

func ensureAnotherAdmin(ctx context.Context, tx UserTx, msg string) error {
	n, err := tx.CountAdmins(ctx)
	if err != nil {
		return internal("count admins", err)
	}
	if n <= 1 {
		return forbiddenf("%s", msg)
	}
	return nil
}
