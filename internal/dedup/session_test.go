package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Begin(t *testing.T) {
	tests := []struct {
		name      string
		from      State
		helpful   bool
		wantState State
		wantErr   error
	}{
		{"awaiting helpful", StateAwaitingFeedback, true, StateResolved, nil},
		{"awaiting not helpful", StateAwaitingFeedback, false, StateIngesting, nil},
		{"ingesting", StateIngesting, true, StateIngesting, ErrFeedbackInProgress},
		{"resolved", StateResolved, false, StateResolved, ErrSessionClosed},
		{"ingested", StateIngested, true, StateIngested, ErrSessionClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Session{State: tt.from}.begin(tt.helpful)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantState, next.State)
		})
	}
}

func TestSession_UnknownState(t *testing.T) {
	_, err := Session{State: State(42)}.begin(true)
	assert.ErrorContains(t, err, "unknown session state")
}

func TestSession_CompleteAndRollback(t *testing.T) {
	ingesting := Session{State: StateIngesting}

	done, err := ingesting.complete(7)
	require.NoError(t, err)
	assert.Equal(t, StateIngested, done.State)
	require.NotNil(t, done.TicketID)
	assert.Equal(t, int64(7), *done.TicketID)

	reopened, err := ingesting.rollback()
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingFeedback, reopened.State)

	_, err = Session{State: StateAwaitingFeedback}.complete(1)
	assert.Error(t, err)
	_, err = Session{State: StateResolved}.rollback()
	assert.Error(t, err)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "awaiting_feedback", StateAwaitingFeedback.String())
	assert.Equal(t, "ingesting", StateIngesting.String())
	assert.Equal(t, "resolved", StateResolved.String())
	assert.Equal(t, "ingested", StateIngested.String())
	assert.Equal(t, "state(9)", State(9).String())

	assert.True(t, StateResolved.Terminal())
	assert.True(t, StateIngested.Terminal())
	assert.False(t, StateIngesting.Terminal())
}
