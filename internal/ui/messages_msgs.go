package ui

import (
	"github.com/bilingua-nb/bilingua-client/internal/api"
	"github.com/bilingua-nb/bilingua-client/internal/inbox"
	"github.com/bilingua-nb/bilingua-client/internal/models"
)

// Messages delivered into the bubbletea update loop. Background goroutines
// push these through the app's event channel.

// bootstrapDoneMsg carries the initial auth check result.
type bootstrapDoneMsg struct {
	status *api.AuthStatus
	admin  *api.AdminStatus
	err    error
}

// cacheUpdatedMsg reports a committed or invalidated cache key so the active
// view re-reads it.
type cacheUpdatedMsg struct{ key string }

// toastMsg surfaces a non-blocking notification.
type toastMsg struct{ notice inbox.Notice }

// toastExpiredMsg clears a displayed toast.
type toastExpiredMsg struct{ id int }

// navigateMsg asks the app to resolve and show a path.
type navigateMsg struct{ path string }

// loginDoneMsg carries a login/signup result.
type loginDoneMsg struct {
	status *api.AuthStatus
	err    error
}

// adminLoginDoneMsg carries a back-office login result.
type adminLoginDoneMsg struct {
	status *api.AdminStatus
	err    error
}

// logoutDoneMsg reports session teardown.
type logoutDoneMsg struct{ err error }

// conversationsLoadedMsg carries the cached conversation list.
type conversationsLoadedMsg struct {
	entries []models.ConversationEntry
	err     error
}

// messagesLoadedMsg carries the active conversation's cached messages.
type messagesLoadedMsg struct {
	entries []models.MessageEntry
	err     error
}

// regionsLoadedMsg carries the region list for the regions view.
type regionsLoadedMsg struct {
	regions []models.Region
	err     error
}

// regionLoadedMsg carries one region for the detail view.
type regionLoadedMsg struct {
	region *models.Region
	err    error
}

// matchesLoadedMsg carries suggested partners.
type matchesLoadedMsg struct {
	matches []models.Match
	err     error
}

// quizDoneMsg reports the onboarding quiz submission.
type quizDoneMsg struct{ err error }

// profileSavedMsg reports a profile update.
type profileSavedMsg struct {
	user *models.User
	err  error
}

// sendDoneMsg reports a send pipeline run; the composer clears only on
// success.
type sendDoneMsg struct{ err error }

// meetupDoneMsg reports a meetup proposal submission.
type meetupDoneMsg struct{ err error }

// reportDoneMsg reports a message report submission.
type reportDoneMsg struct{ err error }

// adminDataMsg carries one back-office list load.
type adminDataMsg struct {
	users         []models.AdminUser
	regions       []models.Region
	analytics     *models.Analytics
	verifications []models.Verification
	settings      *models.PlatformSettings
	events        []models.SecurityEvent
	reports       []models.Report
	err           error
}
