package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/viettravel/tourhub/internal/client/transport"
	"github.com/viettravel/tourhub/internal/models"
)

// ReportsClient covers admin reporting. All aggregates are server-computed.
type ReportsClient struct {
	p   *transport.Pipeline
	log *zap.Logger
}

// Revenue returns booking and refund totals for the given period.
func (c *ReportsClient) Revenue(ctx context.Context, from, to time.Time) (models.RevenueReport, error) {
	q := url.Values{}
	q.Set("from", from.Format(time.RFC3339))
	q.Set("to", to.Format(time.RFC3339))
	path := fmt.Sprintf("/api/admin/reports/revenue?%s", q.Encode())

	var report models.RevenueReport
	if err := c.p.JSON(ctx, http.MethodGet, path, nil, &report); err != nil {
		return models.RevenueReport{}, logFail(c.log, "reports.revenue", path, err)
	}
	return report, nil
}
