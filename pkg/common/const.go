package common

const (
	KEY_REVOKED_TOKEN = "revoked_token:%s"
	KEY_SETUPS        = "settings:%s:setups"
	KEY_SESSIONS      = "settings:%s:sessions"
	KEY_SETTINGS      = "settings:%s:"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

const (
	HeaderAdminKey = "X-Admin-Key"
)
