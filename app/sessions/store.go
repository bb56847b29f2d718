// Package sessions holds the per-user conversation state for the guided
// search flow. State is in-memory only and keyed by (user, chat); it is
// created lazily, mutated only by the handler currently processing that
// conversation's event, and wiped when the flow completes.
package sessions

import "sync"

type State int

const (
	// StateIdle: no flow in progress, free text is ignored
	StateIdle State = iota

	// StateAwaitingFilterName: next text message is the search filter
	StateAwaitingFilterName

	// StateAwaitingResultCount: next text message is the result count
	StateAwaitingResultCount
)

// Session is one conversation's state. FilterName is set only while the
// state is StateAwaitingResultCount.
type Session struct {
	State      State
	FilterName string
}

type Key struct {
	UserID int64
	ChatID int64
}

type Store struct {
	mu       sync.RWMutex
	sessions map[Key]Session
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[Key]Session),
	}
}

// Get returns the conversation's session, or an idle zero session when none
// exists yet.
func (s *Store) Get(userID, chatID int64) Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sessions[Key{UserID: userID, ChatID: chatID}]
}

func (s *Store) Put(userID, chatID int64, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[Key{UserID: userID, ChatID: chatID}] = sess
}

// Clear resets the conversation to idle and wipes all collected fields.
func (s *Store) Clear(userID, chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, Key{UserID: userID, ChatID: chatID})
}
