package common

const (
	AuthorizationHeader     = "Authorization"
	AuthorizationTypeBearer = "Bearer"

	// Gin context keys.
	UserIDKey = "userID"
	LoggerKey = "logger"
)
