package model

// Permission represents a string code for a specific admin action.
type Permission string

const (
	// PermissionQuestionsRead allows listing the question bank.
	PermissionQuestionsRead Permission = "questions:read"

	// PermissionQuestionsWrite allows adding questions to the bank.
	PermissionQuestionsWrite Permission = "questions:write"

	// PermissionSessionsRead allows viewing exam sessions.
	PermissionSessionsRead Permission = "sessions:read"

	// PermissionSessionsWrite allows creating exam sessions for candidates.
	PermissionSessionsWrite Permission = "sessions:write"

	// PermissionSessionsControl allows pausing, resuming and force-submitting live sessions.
	PermissionSessionsControl Permission = "sessions:control"

	// PermissionResultsRead allows viewing graded results and violations.
	PermissionResultsRead Permission = "results:read"

	// PermissionMonitorRead allows subscribing to the live session monitor.
	PermissionMonitorRead Permission = "monitor:read"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionQuestionsRead,
	PermissionQuestionsWrite,
	PermissionSessionsRead,
	PermissionSessionsWrite,
	PermissionSessionsControl,
	PermissionResultsRead,
	PermissionMonitorRead,
}

// AllPermissionCodes returns AllPermissions as plain strings.
func AllPermissionCodes() []string {
	out := make([]string, len(AllPermissions))
	for i, p := range AllPermissions {
		out[i] = string(p)
	}
	return out
}
