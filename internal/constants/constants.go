package constants

// Session and context keys
const (
	ContextKeyUserEmail = "user_email"
	ContextKeyUserName  = "user_name"
	ContextKeyUserRole  = "user_role"
	SessionName         = "kpi_session"
)

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// AdminAccount is the reserved login for the system administrator. Its
// credential lives in the settings table, not the employees table.
const AdminAccount = "admin"

// SettingKeyAdminPassword is the settings-table key holding the bcrypt hash
// of the administrator password.
const SettingKeyAdminPassword = "admin_password_hash"

// DateLayout is the calendar-date format used for all task dates.
const DateLayout = "2006-01-02"

// Password rules
const MinPasswordLength = 4

// Pagination bounds
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
