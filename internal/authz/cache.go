// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

package authz

import (
	"sync"
	"time"
)

// maxCachedDecisions bounds the cache; it is cleared when full.
const maxCachedDecisions = 4096

type decisionKey struct {
	subject, object, action string
}

type decision struct {
	allowed   bool
	expiresAt time.Time
}

// decisionCache remembers recent decisions. Policy only changes on restart,
// so entries expire by TTL alone.
type decisionCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	items map[decisionKey]decision
}

func newDecisionCache(ttl time.Duration, now func() time.Time) *decisionCache {
	return &decisionCache{
		ttl:   ttl,
		now:   now,
		items: make(map[decisionKey]decision),
	}
}

func (c *decisionCache) get(subject, object, action string) (allowed, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, found := c.items[decisionKey{subject, object, action}]
	if !found || c.now().After(d.expiresAt) {
		return false, false
	}
	return d.allowed, true
}

func (c *decisionCache) set(subject, object, action string, allowed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) >= maxCachedDecisions {
		c.items = make(map[decisionKey]decision)
	}
	c.items[decisionKey{subject, object, action}] = decision{
		allowed:   allowed,
		expiresAt: c.now().Add(c.ttl),
	}
}

func (c *decisionCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
