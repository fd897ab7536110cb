package widget

// OriginAllowed evaluates a widget's embed allow-list against the request's
// Origin header, falling back to Referer. An empty allow-list permits
// everyone. A request carrying neither header passes: no enforcement is
// possible without one. Matching is verbatim.
func OriginAllowed(allowed []string, origin, referer string) bool {
	if len(allowed) == 0 {
		return true
	}
	requester := origin
	if requester == "" {
		requester = referer
	}
	if requester == "" {
		return true
	}
	for _, a := range allowed {
		if a == requester {
			return true
		}
	}
	return false
}
