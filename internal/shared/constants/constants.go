// Package constants defines shared constant values used across the application.
package constants

// Server modes, matching gin's mode names.
const (
	EnvDebug   = "debug"
	EnvTest    = "test"
	EnvRelease = "release"
)

// Database table names.
const (
	TableUsers         = "users"
	TableResidents     = "residents"
	TableVisitors      = "visitors"
	TableVisitRequests = "visit_requests"
	TableBlocks        = "blocks"
	TableEntryLogs     = "entry_logs"
)

// Gin context keys set by the auth middleware.
const (
	ContextKeyUserID     = "user_id"
	ContextKeyUserRole   = "user_role"
	ContextKeyExternalID = "external_id"
)

// User roles.
const (
	RoleAdmin    = "admin"
	RoleResident = "resident"
)
