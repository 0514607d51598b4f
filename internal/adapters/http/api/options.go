package api

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxCompare caps how many comparison entities a request may ask for.
func WithMaxCompare(n int) Option {
	return func(s *Server) {
		if n >= 0 {
			s.maxCompare = n
		}
	}
}

// WithMaxWindow caps the smoothing window a request may ask for.
func WithMaxWindow(n int) Option {
	return func(s *Server) {
		if n >= 0 {
			s.maxWindow = n
		}
	}
}
