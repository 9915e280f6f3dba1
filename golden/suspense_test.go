package golden

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pfas/domain"
)

func TestValidTransitionsTable(t *testing.T) {
	assert.True(t, validTransitions[domain.SuspenseOpen][domain.SuspenseInProgress])
	assert.True(t, validTransitions[domain.SuspenseOpen][domain.SuspenseResolved])
	assert.True(t, validTransitions[domain.SuspenseOpen][domain.SuspenseWrittenOff])
	assert.True(t, validTransitions[domain.SuspenseInProgress][domain.SuspenseResolved])
	assert.True(t, validTransitions[domain.SuspenseInProgress][domain.SuspenseWrittenOff])

	assert.False(t, validTransitions[domain.SuspenseInProgress][domain.SuspenseOpen])
	assert.False(t, validTransitions[domain.SuspenseResolved][domain.SuspenseInProgress])
	assert.False(t, validTransitions[domain.SuspenseWrittenOff][domain.SuspenseOpen])
}

func TestTransitionRejectsIllegalMoveBeforeTouchingStore(t *testing.T) {
	m := &SuspenseManager{db: nil} // illegal transition short-circuits before any db call
	err := m.Transition(context.Background(), "user-1", "item-1", domain.SuspenseResolved, domain.SuspenseOpen, "")
	require.Error(t, err)
	var domErr *domain.Error
	require.ErrorAs(t, err, &domErr)
	assert.Equal(t, domain.KindInvalid, domErr.Kind)
}
