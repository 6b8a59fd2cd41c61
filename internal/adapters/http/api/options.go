package api

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxRecentLimit caps the limit parameter on GET /requests.
func WithMaxRecentLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.requestsHandler.maxRecent = n
		}
	}
}
