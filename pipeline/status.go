package pipeline

// Status is the lifecycle state of an operation request. Transitions move
// strictly forward; terminal states absorb all further transition attempts.
type Status string

const (
	StatusDraft             Status = "Draft"
	StatusSimulating        Status = "Simulating"
	StatusAwaitingSignature Status = "AwaitingSignature"
	StatusSubmitted         Status = "Submitted"
	StatusPending           Status = "Pending"
	StatusSucceeded         Status = "Succeeded"
	StatusFailed            Status = "Failed"
	// StatusTimedOut means the poll cap was exceeded: the chain-level
	// outcome is unknown, not refused. Reported distinctly from Failed so
	// callers can give "check again later" guidance instead of "retry".
	StatusTimedOut Status = "TimedOut"
)

// transitions is the full forward transition table. Draft may fail directly
// on local validation; Pending may observe itself while polling.
var transitions = map[Status][]Status{
	StatusDraft:             {StatusSimulating, StatusFailed},
	StatusSimulating:        {StatusAwaitingSignature, StatusFailed},
	StatusAwaitingSignature: {StatusSubmitted, StatusFailed},
	StatusSubmitted:         {StatusPending, StatusFailed},
	StatusPending:           {StatusPending, StatusSucceeded, StatusFailed, StatusTimedOut},
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusTimedOut
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if next == allowed {
			return true
		}
	}

	return false
}
