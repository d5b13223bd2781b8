package api

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/viettravel/tourhub/internal/client/transport"
	"github.com/viettravel/tourhub/internal/models"
)

// PartnersClient covers admin partner management, mirroring the user
// soft-delete model.
type PartnersClient struct {
	p   *transport.Pipeline
	log *zap.Logger
}

// List returns all registered partners.
func (c *PartnersClient) List(ctx context.Context) ([]models.Partner, error) {
	const path = "/api/admin/partners"
	var partners []models.Partner
	if err := c.p.JSON(ctx, http.MethodGet, path, nil, &partners); err != nil {
		return nil, logFail(c.log, "partners.list", path, err)
	}
	return partners, nil
}

// Deactivate soft-deletes a partner with the given reason. The partner's
// tours drop out of the catalogue server-side.
func (c *PartnersClient) Deactivate(ctx context.Context, id, reason string) (models.Partner, error) {
	path := fmt.Sprintf("/api/admin/partners/%s/deactivate", id)
	var p models.Partner
	if err := c.p.JSON(ctx, http.MethodPost, path, reasonRequest{Reason: reason}, &p); err != nil {
		return models.Partner{}, logFail(c.log, "partners.deactivate", path, err)
	}
	return p, nil
}

// Reactivate restores a previously deactivated partner.
func (c *PartnersClient) Reactivate(ctx context.Context, id string) (models.Partner, error) {
	path := fmt.Sprintf("/api/admin/partners/%s/reactivate", id)
	var p models.Partner
	if err := c.p.JSON(ctx, http.MethodPost, path, nil, &p); err != nil {
		return models.Partner{}, logFail(c.log, "partners.reactivate", path, err)
	}
	return p, nil
}
