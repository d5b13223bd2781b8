package api

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/viettravel/tourhub/internal/client/transport"
	"github.com/viettravel/tourhub/internal/models"
)

// PlansClient covers AI-generated itineraries. Generation runs on the
// backend and can take minutes; the pipeline's generous timeout covers it.
type PlansClient struct {
	p   *transport.Pipeline
	log *zap.Logger
}

// GenerateRequest describes the itinerary the customer wants.
type GenerateRequest struct {
	Destination string   `json:"destination"`
	Days        int      `json:"days"`
	Preferences []string `json:"preferences,omitempty"`
}

// Generate asks the backend to produce an itinerary. Callers should pass a
// context without a short deadline.
func (c *PlansClient) Generate(ctx context.Context, req GenerateRequest) (models.Plan, error) {
	const path = "/api/plans/generate"
	var plan models.Plan
	if err := c.p.JSON(ctx, http.MethodPost, path, req, &plan); err != nil {
		return models.Plan{}, logFail(c.log, "plans.generate", path, err)
	}
	return plan, nil
}

// ListMine returns the calling customer's saved plans.
func (c *PlansClient) ListMine(ctx context.Context) ([]models.Plan, error) {
	const path = "/api/plans"
	var plans []models.Plan
	if err := c.p.JSON(ctx, http.MethodGet, path, nil, &plans); err != nil {
		return nil, logFail(c.log, "plans.listMine", path, err)
	}
	return plans, nil
}

// Get fetches one plan by id.
func (c *PlansClient) Get(ctx context.Context, id int64) (models.Plan, error) {
	path := fmt.Sprintf("/api/plans/%d", id)
	var plan models.Plan
	if err := c.p.JSON(ctx, http.MethodGet, path, nil, &plan); err != nil {
		return models.Plan{}, logFail(c.log, "plans.get", path, err)
	}
	return plan, nil
}
