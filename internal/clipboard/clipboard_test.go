package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	m := NewMemory()

	text, err := m.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Empty(t, m.History())

	require.NoError(t, m.WriteAll("one"))
	require.NoError(t, m.WriteAll("two"))

	text, err = m.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "two", text)
	assert.Equal(t, []string{"one", "two"}, m.History())
}

func TestMemory_FailWith(t *testing.T) {
	m := NewMemory()
	boom := errors.New("boom")

	m.FailWith(boom)
	assert.ErrorIs(t, m.WriteAll("lost"), boom)
	assert.Empty(t, m.History())

	m.FailWith(nil)
	require.NoError(t, m.WriteAll("kept"))
	assert.Equal(t, []string{"kept"}, m.History())
}

func TestSystem_RoundTrip(t *testing.T) {
	var s System
	if err := s.WriteAll("postsync clipboard test"); err != nil {
		t.Skipf("system clipboard not usable here: %v", err)
	}

	text, err := s.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "postsync clipboard test", text)
}
