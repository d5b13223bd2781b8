package api

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/viettravel/tourhub/internal/client/transport"
	"github.com/viettravel/tourhub/internal/models"
)

// UsersClient covers admin user management. Accounts are soft-deactivated
// with a reason and can be reactivated; there is no hard delete.
type UsersClient struct {
	p   *transport.Pipeline
	log *zap.Logger
}

// List returns all user accounts.
func (c *UsersClient) List(ctx context.Context) ([]models.User, error) {
	const path = "/api/admin/users"
	var users []models.User
	if err := c.p.JSON(ctx, http.MethodGet, path, nil, &users); err != nil {
		return nil, logFail(c.log, "users.list", path, err)
	}
	return users, nil
}

// Deactivate soft-deletes a user account with the given reason.
func (c *UsersClient) Deactivate(ctx context.Context, id, reason string) (models.User, error) {
	path := fmt.Sprintf("/api/admin/users/%s/deactivate", id)
	var u models.User
	if err := c.p.JSON(ctx, http.MethodPost, path, reasonRequest{Reason: reason}, &u); err != nil {
		return models.User{}, logFail(c.log, "users.deactivate", path, err)
	}
	return u, nil
}

// Reactivate restores a previously deactivated account.
func (c *UsersClient) Reactivate(ctx context.Context, id string) (models.User, error) {
	path := fmt.Sprintf("/api/admin/users/%s/reactivate", id)
	var u models.User
	if err := c.p.JSON(ctx, http.MethodPost, path, nil, &u); err != nil {
		return models.User{}, logFail(c.log, "users.reactivate", path, err)
	}
	return u, nil
}
