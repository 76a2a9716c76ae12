package middlewares

// gin context keys set by this package
const (
	CtxRequestID = "request_id"
	CtxUserID    = "auth.userID"
	CtxEmail     = "auth.email"
	CtxRole      = "auth.role"
	CtxTokenJTI  = "auth.jti"
	CtxTokenExp  = "auth.exp"
)
