// Package mutex serializes update handling per conversation. Handlers for
// different users may interleave while awaiting network I/O, but two events
// from the same (user, chat) pair must never run concurrently.
package mutex

import "sync"

type KeyedMutex struct {
	muMap sync.Map
}

func (km *KeyedMutex) Lock(key string) {
	mu, _ := km.muMap.LoadOrStore(key, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
}

// Unlock releases the key's mutex. The mutex stays in the map for the
// lifetime of the conversation so that a concurrent Lock always resolves to
// the same mutex instance.
func (km *KeyedMutex) Unlock(key string) {
	mu, ok := km.muMap.Load(key)
	if ok {
		mu.(*sync.Mutex).Unlock()
	}
}
