package models

// User is the authenticated account as reported by /api/auth/status.
type User struct {
	ID             int    `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email,omitempty"`
	NativeLanguage string `json:"nativeLanguage,omitempty"`
	TargetLanguage string `json:"targetLanguage,omitempty"`
	Region         string `json:"region,omitempty"`
	Bio            string `json:"bio,omitempty"`
}

// Admin is the back-office identity reported by /api/admin/status.
type Admin struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"` // "admin" or "superadmin"
}

// Match is a suggested language-exchange partner.
type Match struct {
	User           UserRef `json:"user"`
	SharedRegion   string  `json:"sharedRegion,omitempty"`
	Compatibility  int     `json:"compatibility,omitempty"`
	ConversationID int     `json:"conversationId,omitempty"`
}
