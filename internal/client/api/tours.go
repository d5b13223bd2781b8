package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/viettravel/tourhub/internal/client/transport"
	"github.com/viettravel/tourhub/internal/lifecycle/tour"
	"github.com/viettravel/tourhub/internal/models"
)

// ToursClient covers the public catalogue, the partner's listing workflow
// and the admin approval workflow. Approve/reject of an update proposal is
// addressed by the original tour's id on dedicated -update routes.
type ToursClient struct {
	p   *transport.Pipeline
	log *zap.Logger
}

// List returns the approved, customer-visible catalogue page.
func (c *ToursClient) List(ctx context.Context, page, pageSize int) ([]models.Tour, error) {
	path := fmt.Sprintf("/api/tours?page=%d&pageSize=%d", page, pageSize)
	var tours []models.Tour
	if err := c.p.JSON(ctx, http.MethodGet, path, nil, &tours); err != nil {
		return nil, logFail(c.log, "tours.list", path, err)
	}
	return tours, nil
}

// Get fetches one tour by id.
func (c *ToursClient) Get(ctx context.Context, id int64) (models.Tour, error) {
	path := fmt.Sprintf("/api/tours/%d", id)
	var t models.Tour
	if err := c.p.JSON(ctx, http.MethodGet, path, nil, &t); err != nil {
		return models.Tour{}, logFail(c.log, "tours.get", path, err)
	}
	return t, nil
}

// ListMine returns the calling partner's own tours, all statuses included.
func (c *ToursClient) ListMine(ctx context.Context) ([]models.Tour, error) {
	const path = "/api/partner/tours"
	var tours []models.Tour
	if err := c.p.JSON(ctx, http.MethodGet, path, nil, &tours); err != nil {
		return nil, logFail(c.log, "tours.listMine", path, err)
	}
	return tours, nil
}

// Create saves a new draft tour for the calling partner.
func (c *ToursClient) Create(ctx context.Context, t models.Tour) (models.Tour, error) {
	const path = "/api/partner/tours"
	var created models.Tour
	if err := c.p.JSON(ctx, http.MethodPost, path, t, &created); err != nil {
		return models.Tour{}, logFail(c.log, "tours.create", path, err)
	}
	return created, nil
}

// Update saves edits to a draft or rejected tour.
func (c *ToursClient) Update(ctx context.Context, t models.Tour) (models.Tour, error) {
	path := fmt.Sprintf("/api/partner/tours/%d", t.ID)
	var updated models.Tour
	if err := c.p.JSON(ctx, http.MethodPut, path, t, &updated); err != nil {
		return models.Tour{}, logFail(c.log, "tours.update", path, err)
	}
	return updated, nil
}

// ProposeUpdate spawns an update proposal against an approved tour. The
// original keeps its Approved status; the proposal is a new draft record
// referencing it.
func (c *ToursClient) ProposeUpdate(ctx context.Context, originalID int64, changes models.Tour) (models.Tour, error) {
	path := fmt.Sprintf("/api/partner/tours/%d/propose-update", originalID)
	var proposal models.Tour
	if err := c.p.JSON(ctx, http.MethodPost, path, changes, &proposal); err != nil {
		return models.Tour{}, logFail(c.log, "tours.proposeUpdate", path, err)
	}
	return proposal, nil
}

// Submit sends a draft into admin review. The guard runs before any network
// call; status in the response is authoritative.
func (c *ToursClient) Submit(ctx context.Context, t models.Tour) (models.Tour, error) {
	if err := tour.CanSubmit(t); err != nil {
		return models.Tour{}, logFail(c.log, "tours.submit", "", err)
	}
	path := fmt.Sprintf("/api/partner/tours/%d/submit", t.ID)
	var updated models.Tour
	if err := c.p.JSON(ctx, http.MethodPost, path, nil, &updated); err != nil {
		return models.Tour{}, logFail(c.log, "tours.submit", path, err)
	}
	return updated, nil
}

// Resubmit sends a rejected tour back into review on its dedicated route.
func (c *ToursClient) Resubmit(ctx context.Context, id int64) (models.Tour, error) {
	path := fmt.Sprintf("/api/partner/tours/resubmit-rejected/%d", id)
	var updated models.Tour
	if err := c.p.JSON(ctx, http.MethodPost, path, nil, &updated); err != nil {
		return models.Tour{}, logFail(c.log, "tours.resubmit", path, err)
	}
	return updated, nil
}

type retireRequest struct {
	Action tour.RetireChoice `json:"action"`
}

// Retire soft-deletes a tour or pulls it back to draft, by the owner's
// explicit choice. An empty or unknown choice fails before dispatch.
func (c *ToursClient) Retire(ctx context.Context, t models.Tour, choice tour.RetireChoice) (models.Tour, error) {
	if err := tour.ValidateRetire(t, choice); err != nil {
		return models.Tour{}, logFail(c.log, "tours.retire", "", err)
	}
	path := fmt.Sprintf("/api/partner/tours/%d/retire", t.ID)
	var updated models.Tour
	if err := c.p.JSON(ctx, http.MethodPost, path, retireRequest{Action: choice}, &updated); err != nil {
		return models.Tour{}, logFail(c.log, "tours.retire", path, err)
	}
	return updated, nil
}

// ListPending returns tours awaiting admin review, update proposals included.
func (c *ToursClient) ListPending(ctx context.Context) ([]models.Tour, error) {
	const path = "/api/admin/tours/pending"
	var tours []models.Tour
	if err := c.p.JSON(ctx, http.MethodGet, path, nil, &tours); err != nil {
		return nil, logFail(c.log, "tours.listPending", path, err)
	}
	return tours, nil
}

// Approve clears a pending tour. For an update proposal the call targets
// the original tour's id on the approve-update route, so the proposal's
// content supersedes the original.
func (c *ToursClient) Approve(ctx context.Context, t models.Tour) (models.Tour, error) {
	var path string
	if t.IsUpdateProposal() {
		path = fmt.Sprintf("/api/admin/tours/%d/approve-update", t.ApprovalTargetID())
	} else {
		path = fmt.Sprintf("/api/admin/tours/%d/approve", t.ID)
	}
	var updated models.Tour
	if err := c.p.JSON(ctx, http.MethodPost, path, nil, &updated); err != nil {
		return models.Tour{}, logFail(c.log, "tours.approve", path, err)
	}
	return updated, nil
}

// Reject turns a pending tour down. The reason is validated client-side
// before any request is made, and is sent as a raw JSON string. Update
// proposals are rejected against the original tour's id.
func (c *ToursClient) Reject(ctx context.Context, t models.Tour, reason string) (models.Tour, error) {
	if err := tour.ValidateRejectReason(reason); err != nil {
		return models.Tour{}, logFail(c.log, "tours.reject", "", err)
	}
	var path string
	if t.IsUpdateProposal() {
		path = fmt.Sprintf("/api/admin/tours/%d/reject-update", t.ApprovalTargetID())
	} else {
		path = fmt.Sprintf("/api/admin/tours/%d/reject", t.ID)
	}
	var updated models.Tour
	if err := c.p.JSON(ctx, http.MethodPost, path, reason, &updated); err != nil {
		return models.Tour{}, logFail(c.log, "tours.reject", path, err)
	}
	return updated, nil
}

// UploadImage attaches an image to a tour via multipart form encoding.
func (c *ToursClient) UploadImage(ctx context.Context, tourID int64, filename string, file io.Reader) (models.Tour, error) {
	path := fmt.Sprintf("/api/partner/tours/%d/images", tourID)
	var updated models.Tour
	if err := c.p.Upload(ctx, path, "file", filename, file, nil, &updated); err != nil {
		return models.Tour{}, logFail(c.log, "tours.uploadImage", path, err)
	}
	return updated, nil
}
