package sessions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_LazyCreate(t *testing.T) {
	s := NewStore()

	sess := s.Get(1, 2)
	require.Equal(t, StateIdle, sess.State)
	require.Empty(t, sess.FilterName)
}

func TestStore_PutGetClear(t *testing.T) {
	s := NewStore()

	s.Put(1, 2, Session{State: StateAwaitingResultCount, FilterName: "cats"})
	require.Equal(t, Session{State: StateAwaitingResultCount, FilterName: "cats"}, s.Get(1, 2))

	// other conversations are unaffected
	require.Equal(t, StateIdle, s.Get(1, 3).State)
	require.Equal(t, StateIdle, s.Get(9, 2).State)

	s.Clear(1, 2)
	require.Equal(t, Session{}, s.Get(1, 2))
}
