package globals

// Context keys
type ContextKey string

const (
	UserIDKey    ContextKey = "userId"
	ClaimsKey    ContextKey = "claims"
	RequestIDKey ContextKey = "requestId"
)
