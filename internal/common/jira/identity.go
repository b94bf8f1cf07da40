package jira

import (
	"context"
	"sync"
)

// IdentityLookup resolves the account id behind a credential.
type IdentityLookup interface {
	Email() string
	CurrentAccountID(ctx context.Context) (string, error)
}

type identityEntry struct {
	once      sync.Once
	accountID string
	err       error
}

// IdentityCache memoizes account-id lookups per credential email. Create one
// per generation run; it is safe for concurrent use by that run's sub-tasks.
type IdentityCache struct {
	mu      sync.Mutex
	entries map[string]*identityEntry
}

func NewIdentityCache() *IdentityCache {
	return &IdentityCache{entries: make(map[string]*identityEntry)}
}

// AccountID returns the cached account id for lookup's email, resolving it
// once. Concurrent callers for the same email share one lookup, errors included.
func (c *IdentityCache) AccountID(ctx context.Context, lookup IdentityLookup) (string, error) {
	c.mu.Lock()
	entry, ok := c.entries[lookup.Email()]
	if !ok {
		entry = &identityEntry{}
		c.entries[lookup.Email()] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.accountID, entry.err = lookup.CurrentAccountID(ctx)
	})
	return entry.accountID, entry.err
}
