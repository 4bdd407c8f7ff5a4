package dedup

import (
	"fmt"
	"time"
)

// State is the feedback state of a search session
type State int

const (
	// StateAwaitingFeedback follows a successful search
	StateAwaitingFeedback State = iota
	// StateIngesting means negative feedback is being turned into a ticket
	StateIngesting
	// StateResolved means an existing ticket answered the query
	StateResolved
	// StateIngested means the query was added to the corpus
	StateIngested
)

func (s State) String() string {
	switch s {
	case StateAwaitingFeedback:
		return "awaiting_feedback"
	case StateIngesting:
		return "ingesting"
	case StateResolved:
		return "resolved"
	case StateIngested:
		return "ingested"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s == StateResolved || s == StateIngested
}

// Session remembers a search until its feedback arrives. The query summary
// and embedding are kept so negative feedback does not call the models again.
type Session struct {
	ID          string
	State       State
	Title       string
	Description string
	Summary     string
	Embedding   []float32
	TicketID    *int64
	CreatedAt   time.Time
}

// begin applies feedback to a session. Exactly one transition leaves
// StateAwaitingFeedback.
func (s Session) begin(helpful bool) (Session, error) {
	switch s.State {
	case StateAwaitingFeedback:
		if helpful {
			s.State = StateResolved
		} else {
			s.State = StateIngesting
		}
		return s, nil
	case StateIngesting:
		return s, ErrFeedbackInProgress
	case StateResolved, StateIngested:
		return s, ErrSessionClosed
	}
	return s, fmt.Errorf("unknown session state %d", int(s.State))
}

// complete records the ticket created from negative feedback
func (s Session) complete(ticketID int64) (Session, error) {
	if s.State != StateIngesting {
		return s, fmt.Errorf("cannot complete session in state %s", s.State)
	}
	s.State = StateIngested
	s.TicketID = &ticketID
	return s, nil
}

// rollback reopens a session whose ingestion failed, so feedback can be retried
func (s Session) rollback() (Session, error) {
	if s.State != StateIngesting {
		return s, fmt.Errorf("cannot roll back session in state %s", s.State)
	}
	s.State = StateAwaitingFeedback
	return s, nil
}
