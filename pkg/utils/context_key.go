package utils

type ContextKey string

// CallerID reads the authenticated user id the JWT middleware stored on the
// request context. JSON numbers in claims decode as float64.
func CallerID(v any) (int, bool) {
	idFloat, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int(idFloat), true
}
