package constants

const (
	// ContextKeyUser is the gin context key holding the authenticated *models.User
	ContextKeyUser = "user"

	// ContextKeyTask holds the *models.Task loaded by the ownership middleware
	ContextKeyTask = "task"

	// SessionCookieName is the name of the session cookie carrying flash messages
	SessionCookieName = "task_tracker_session"

	// FlashKey is the session key under which flash messages are queued
	FlashKey = "flashes"

	// MinPasswordLength and MaxPasswordLength bound accepted passwords.
	// bcrypt only reads the first 72 bytes, so longer ones are refused.
	MinPasswordLength = 4
	MaxPasswordLength = 72

	// MinNameLength is the minimum length of a user's display name
	MinNameLength = 2

	// MaxTaskTitleLength matches the tasks.title column width
	MaxTaskTitleLength = 100

	// MaxAIGeneratedTasks caps the number of drafts returned by one generation
	MaxAIGeneratedTasks = 20

	// MaxAIInputLength bounds the text sent to the AI model
	MaxAIInputLength = 4000
)
