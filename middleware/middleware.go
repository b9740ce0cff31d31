package middleware

// DefaultStack returns the usual interceptors for a CLI or service caller:
// correlation ids and logging.
func DefaultStack(logger Logger) []Middleware {
	return []Middleware{
		RequestID(),
		Logging(logger),
	}
}
