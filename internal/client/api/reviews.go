package api

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/viettravel/tourhub/internal/client/transport"
	"github.com/viettravel/tourhub/internal/models"
)

// ReviewsClient covers customer reviews of tours.
type ReviewsClient struct {
	p   *transport.Pipeline
	log *zap.Logger
}

// ListByTour returns the reviews for a tour.
func (c *ReviewsClient) ListByTour(ctx context.Context, tourID int64) ([]models.Review, error) {
	path := fmt.Sprintf("/api/tours/%d/reviews", tourID)
	var reviews []models.Review
	if err := c.p.JSON(ctx, http.MethodGet, path, nil, &reviews); err != nil {
		return nil, logFail(c.log, "reviews.listByTour", path, err)
	}
	return reviews, nil
}

type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// Create posts a review. Rating bounds are checked before dispatch.
func (c *ReviewsClient) Create(ctx context.Context, tourID int64, rating int, comment string) (models.Review, error) {
	if rating < 1 || rating > 5 {
		return models.Review{}, logFail(c.log, "reviews.create", "",
			fmt.Errorf("rating must be between 1 and 5, got %d", rating))
	}
	path := fmt.Sprintf("/api/tours/%d/reviews", tourID)
	var review models.Review
	if err := c.p.JSON(ctx, http.MethodPost, path, createReviewRequest{Rating: rating, Comment: comment}, &review); err != nil {
		return models.Review{}, logFail(c.log, "reviews.create", path, err)
	}
	return review, nil
}
