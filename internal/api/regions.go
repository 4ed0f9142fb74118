package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/bilingua-nb/bilingua-client/internal/models"
)

// Regions lists region summaries. The endpoint has shipped two shapes over
// time, a bare array and {"regions": [...]}; both are accepted.
func (c *Client) Regions(ctx context.Context) ([]models.Region, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/regions", &raw); err != nil {
		return nil, err
	}

	var list []models.Region
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Regions []models.Region `json:"regions"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Regions != nil {
		return wrapped.Regions, nil
	}
	return nil, errors.New("unexpected regions response format")
}

// Region fetches one region by id.
func (c *Client) Region(ctx context.Context, id int) (*models.Region, error) {
	var out models.Region
	if err := c.get(ctx, fmt.Sprintf("/api/regions/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitQuiz stores the onboarding quiz answers.
func (c *Client) SubmitQuiz(ctx context.Context, answers models.QuizAnswers) error {
	return c.post(ctx, "/api/quiz", answers, nil)
}
