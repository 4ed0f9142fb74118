package models

import "time"

// AdminUser is a row in the back-office user table.
type AdminUser struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Language  string    `json:"language"`
	Region    string    `json:"region"`
	Verified  bool      `json:"verified"`
	Suspended bool      `json:"suspended"`
	CreatedAt time.Time `json:"createdAt"`
}

// Analytics is the platform statistics snapshot for the admin dashboard.
type Analytics struct {
	TotalUsers          int `json:"totalUsers"`
	ActiveUsers         int `json:"activeUsers"`
	MessagesToday       int `json:"messagesToday"`
	UnlockedRegions     int `json:"unlockedRegions"`
	PendingReports      int `json:"pendingReports"`
	PendingVerification int `json:"pendingVerification"`
}

// Verification is a pending identity-verification request.
type Verification struct {
	ID          int       `json:"id"`
	UserID      int       `json:"userId"`
	Username    string    `json:"username"`
	Status      string    `json:"status"` // pending, approved, rejected
	SubmittedAt time.Time `json:"submittedAt"`
}

// Report is a message moderation report.
type Report struct {
	ID         int       `json:"id"`
	MessageID  int       `json:"messageId"`
	ReporterID int       `json:"reporterId"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"` // open, resolved, dismissed
	CreatedAt  time.Time `json:"createdAt"`
}

// SecurityEvent is an entry in the admin security audit feed.
type SecurityEvent struct {
	ID        int       `json:"id"`
	Kind      string    `json:"kind"`
	Actor     string    `json:"actor"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"createdAt"`
}

// PlatformSettings is the admin-editable configuration blob.
type PlatformSettings struct {
	SignupsEnabled      bool   `json:"signupsEnabled"`
	MaintenanceMode     bool   `json:"maintenanceMode"`
	DefaultLanguage     string `json:"defaultLanguage"`
	MaxMessageLength    int    `json:"maxMessageLength"`
	TranslationProvider string `json:"translationProvider"`
}
