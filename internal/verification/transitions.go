package verification

// allowedTransitions is the legal-edge list of the lifecycle. rejected→pending
// is the appeal path. completed and cancelled have no outgoing edges.
var allowedTransitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusRejected, StatusCancelled},
	StatusInProgress: {StatusVerified, StatusRejected, StatusCancelled},
	StatusVerified:   {StatusCompleted, StatusCancelled},
	StatusRejected:   {StatusPending, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether from→to is a legal edge. A self-transition is
// never legal; callers distinguish it as a no-op before consulting this.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTargets returns the statuses reachable from the given one.
func AllowedTargets(from Status) []Status {
	targets := allowedTransitions[from]
	out := make([]Status, len(targets))
	copy(out, targets)
	return out
}
