// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package local

import "time"

// SetClock replaces the provider and signer clocks.
func (p *Provider) SetClock(now func() time.Time) {
	p.now = now
	if p.tokens != nil {
		p.tokens = p.tokens.WithClock(now)
	}
}

// SetClock replaces the store clock used to compute key TTLs.
func (store *RedisSessionStore) SetClock(now func() time.Time) {
	store.now = now
}
