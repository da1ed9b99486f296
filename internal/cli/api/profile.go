package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"AidDesk/internal/cli/model"
)

// Me возвращает текущего пользователя или nil, если сессии нет.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var out struct {
		User *model.User `json:"user"`
	}
	if err := c.getJSON(ctx, "/api/profile/me", &out); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, nil
		}
		return nil, err
	}
	if out.User == nil || out.User.ID == "" {
		return nil, nil
	}
	return out.User, nil
}

// statsWire покрывает текущий и устаревшие форматы /api/profile/stats.
type statsWire struct {
	Trust *struct {
		TrustLevel                    *int          `json:"trustLevel"`
		Limits                        *model.Limits `json:"limits"`
		EffectiveApprovedApplications *int          `json:"effectiveApprovedApplications"`
		ApprovedApplications          *int          `json:"approvedApplications"`
	} `json:"trust"`
	ApprovedApplications *int `json:"approvedApplications"`
	Stats                *struct {
		ApprovedApplications *int `json:"approvedApplications"`
	} `json:"stats"`
	Applications *struct {
		Approved *int `json:"approved"`
	} `json:"applications"`
}

func (w statsWire) normalize() model.ProfileStats {
	var res model.ProfileStats
	candidates := []*int{}
	if w.Trust != nil {
		candidates = append(candidates, w.Trust.EffectiveApprovedApplications, w.Trust.ApprovedApplications)
		if w.Trust.TrustLevel != nil {
			res.Trust = &model.TrustSnapshot{
				TrustLevel:                    *w.Trust.TrustLevel,
				Limits:                        w.Trust.Limits,
				EffectiveApprovedApplications: w.Trust.EffectiveApprovedApplications,
				ApprovedApplications:          w.Trust.ApprovedApplications,
			}
		}
	}
	candidates = append(candidates, w.ApprovedApplications)
	if w.Stats != nil {
		candidates = append(candidates, w.Stats.ApprovedApplications)
	}
	if w.Applications != nil {
		candidates = append(candidates, w.Applications.Approved)
	}
	for _, n := range candidates {
		if n != nil {
			v := *n
			res.ApprovedCount = &v
			break
		}
	}
	return res
}

// ProfileStats читает статистику профиля: снимок доверия и число одобренных заявок.
func (c *Client) ProfileStats(ctx context.Context) (model.ProfileStats, error) {
	var w statsWire
	if err := c.getJSON(ctx, "/api/profile/stats", &w); err != nil {
		return model.ProfileStats{}, err
	}
	return w.normalize(), nil
}

// ReviewStatus сообщает, оставил ли пользователь обязательный отзыв.
func (c *Client) ReviewStatus(ctx context.Context) (model.ReviewStatus, error) {
	var out struct {
		Viewer *struct {
			Review json.RawMessage `json:"review"`
		} `json:"viewer"`
	}
	if err := c.getJSON(ctx, "/api/reviews", &out); err != nil {
		return model.ReviewStatus{}, err
	}
	has := out.Viewer != nil &&
		len(bytes.TrimSpace(out.Viewer.Review)) > 0 &&
		!bytes.Equal(bytes.TrimSpace(out.Viewer.Review), []byte("null"))
	return model.ReviewStatus{HasReview: has}, nil
}
