package api

import (
	"context"
	"net/http"

	"AidDesk/internal/cli/model"
)

// CreateApplication создаёт заявку. 401 → ErrUnauthorized,
// остальные не-2xx → *StatusError с разобранным телом.
func (c *Client) CreateApplication(ctx context.Context, p model.ApplicationPayload) error {
	resp, body, err := c.postJSON(ctx, "/api/applications", p, p.SubmissionID)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if !isSuccess(resp.StatusCode) {
		return statusError(resp.StatusCode, body)
	}
	c.log.Infow("application created", "submissionId", p.SubmissionID, "status", resp.StatusCode)
	return nil
}
