// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

package callback

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientLimiter applies a token-bucket rate limit per client IP.
// Entries for idle clients are pruned so the map cannot grow without
// bound under address churn.
type clientLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	clients map[string]*clientEntry
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// pruneAfter is how long a client entry survives without traffic.
const pruneAfter = 10 * time.Minute

// pruneThreshold is the map size above which allow() prunes idle
// entries before inserting a new one.
const pruneThreshold = 1024

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	return &clientLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		clients: make(map[string]*clientEntry),
	}
}

// allow reports whether a request from ip may proceed.
func (l *clientLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.clients[ip]
	if !ok {
		if len(l.clients) >= pruneThreshold {
			for key, e := range l.clients {
				if now.Sub(e.lastSeen) > pruneAfter {
					delete(l.clients, key)
				}
			}
		}
		entry = &clientEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.Allow()
}
