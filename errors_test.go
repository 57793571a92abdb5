package examiner

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFaultError(t *testing.T) {
	cause := errors.New("boom")
	err := NewFault(ErrComputation, "age", "score", cause)

	assert.Equal(t, `shared computation failed for property "age" (rule score): boom`, err.Error())
	assert.ErrorIs(t, err, ErrComputation)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrExtraction)
}

func TestFaultError_MinimalMessage(t *testing.T) {
	err := NewFault(ErrCancelled, "", "", nil)
	assert.Equal(t, "examination cancelled", err.Error())
}

func TestIsFault(t *testing.T) {
	fault := NewFault(ErrRuleFault, "name", "PATTERN", errors.New("bad input"))
	wrapped := fmt.Errorf("branch %q: %w", "names", fault)

	assert.True(t, IsFault(fault))
	assert.True(t, IsFault(wrapped))
	assert.ErrorIs(t, wrapped, ErrRuleFault)
	assert.False(t, IsFault(errors.New("plain")))
	assert.False(t, IsFault(nil))

	var fe *FaultError
	assert.ErrorAs(t, wrapped, &fe)
	assert.Equal(t, "name", fe.Property)
	assert.Equal(t, "PATTERN", fe.Rule)
}
