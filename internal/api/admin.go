package api

import (
	"context"
	"fmt"

	"github.com/bilingua-nb/bilingua-client/internal/models"
)

// AdminUsers lists accounts for the back-office user table.
func (c *Client) AdminUsers(ctx context.Context) ([]models.AdminUser, error) {
	var out []models.AdminUser
	if err := c.get(ctx, "/api/admin/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SuspendUser toggles an account's suspended flag.
func (c *Client) SuspendUser(ctx context.Context, userID int, suspended bool) error {
	path := fmt.Sprintf("/api/admin/users/%d", userID)
	return c.put(ctx, path, map[string]bool{"suspended": suspended}, nil)
}

// AdminRegions lists regions with admin-only fields included.
func (c *Client) AdminRegions(ctx context.Context) ([]models.Region, error) {
	var out []models.Region
	if err := c.get(ctx, "/api/admin/regions", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRegion adds a region.
func (c *Client) CreateRegion(ctx context.Context, region models.Region) (*models.Region, error) {
	var out models.Region
	if err := c.post(ctx, "/api/admin/regions", region, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRegion saves region edits.
func (c *Client) UpdateRegion(ctx context.Context, region models.Region) error {
	path := fmt.Sprintf("/api/admin/regions/%d", region.ID)
	return c.put(ctx, path, region, nil)
}

// AdminAnalytics fetches the dashboard statistics snapshot.
func (c *Client) AdminAnalytics(ctx context.Context) (*models.Analytics, error) {
	var out models.Analytics
	if err := c.get(ctx, "/api/admin/analytics", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verifications lists pending identity verifications.
func (c *Client) Verifications(ctx context.Context) ([]models.Verification, error) {
	var out []models.Verification
	if err := c.get(ctx, "/api/admin/verifications", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveVerification approves or rejects a verification request.
func (c *Client) ResolveVerification(ctx context.Context, id int, status string) error {
	path := fmt.Sprintf("/api/admin/verifications/%d", id)
	return c.put(ctx, path, map[string]string{"status": status}, nil)
}

// Settings fetches the platform settings blob.
func (c *Client) Settings(ctx context.Context) (*models.PlatformSettings, error) {
	var out models.PlatformSettings
	if err := c.get(ctx, "/api/admin/settings", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSettings saves the platform settings blob.
func (c *Client) UpdateSettings(ctx context.Context, settings models.PlatformSettings) error {
	return c.put(ctx, "/api/admin/settings", settings, nil)
}

// SecurityEvents lists the audit feed.
func (c *Client) SecurityEvents(ctx context.Context) ([]models.SecurityEvent, error) {
	var out []models.SecurityEvent
	if err := c.get(ctx, "/api/admin/security/events", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Reports lists moderation reports.
func (c *Client) Reports(ctx context.Context) ([]models.Report, error) {
	var out []models.Report
	if err := c.get(ctx, "/api/admin/reports", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveReport closes a moderation report with the given status.
func (c *Client) ResolveReport(ctx context.Context, id int, status string) error {
	path := fmt.Sprintf("/api/admin/reports/%d", id)
	return c.put(ctx, path, map[string]string{"status": status}, nil)
}
