// Package store holds the in-memory offer snapshot that analysis requests
// read from. Each analysis pass is a pure function over a copy of the
// snapshot; only floor-price edits and feed refreshes mutate it.
package store

import (
	"sync"
	"time"

	"github.com/pricetrack/buybox-service/internal/offer"
)

// Snapshot is the shared offer collection. Reads copy the backing slice so
// in-flight analyses never observe a concurrent refresh.
type Snapshot struct {
	mu        sync.RWMutex
	offers    []offer.Offer
	urls      []offer.URLRecord
	loadedAt  time.Time
	loaded    bool
}

// New returns an empty snapshot. Analysis callers must check Loaded before
// computing; an unloaded snapshot renders as an explicit no-data state.
func New() *Snapshot {
	return &Snapshot{}
}

// Replace installs a freshly fetched offer collection.
func (s *Snapshot) Replace(offers []offer.Offer, urls []offer.URLRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offers = offers
	s.urls = urls
	s.loadedAt = time.Now()
	s.loaded = true
}

// Offers returns a copy of the current offer collection in stable order.
func (s *Snapshot) Offers() []offer.Offer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]offer.Offer, len(s.offers))
	copy(out, s.offers)
	return out
}

// URLs returns a copy of the URL-lookup records from the last refresh.
func (s *Snapshot) URLs() []offer.URLRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]offer.URLRecord, len(s.urls))
	copy(out, s.urls)
	return out
}

// Loaded reports whether a successful fetch has populated the snapshot, and
// when.
func (s *Snapshot) Loaded() (bool, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded, s.loadedAt
}

// SetFloorPrice mutates the floor price of every offer matching the listing
// key and returns the previous value, for optimistic update with rollback.
// The second return value is false when no offer matched.
func (s *Snapshot) SetFloorPrice(key offer.Key, floor *float64) (*float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var previous *float64
	matched := false
	for i := range s.offers {
		if s.offers[i].ListingKey() != key {
			continue
		}
		if !matched {
			previous = s.offers[i].FloorPrice
		}
		matched = true
		s.offers[i].FloorPrice = floor
	}
	return previous, matched
}

// SetURLActive toggles the activation flag of a URL record, returning the
// previous value for rollback.
func (s *Snapshot) SetURLActive(productKey, marketplace string, active bool) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.urls {
		if s.urls[i].EAN == productKey && s.urls[i].Marketplace == marketplace {
			previous := s.urls[i].Active
			s.urls[i].Active = active
			return previous, true
		}
	}
	return false, false
}
