// Package store holds the in-memory seat state: one map of non-free seat
// statuses and one map of group labels. A seat that is free has no entry in
// either map.
package store

import (
	"sync"
	"time"

	"ms-seating/internal/models"
)

type Store struct {
	mu     sync.RWMutex
	status map[string]models.SeatStatus
	groups map[string]string
}

func New() *Store {
	return &Store{
		status: make(map[string]models.SeatStatus),
		groups: make(map[string]string),
	}
}

// Status defaults to free for unknown seats
func (s *Store) Status(seatID string) models.SeatStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if status, ok := s.status[seatID]; ok {
		return status
	}
	return models.SeatStatusFree
}

func (s *Store) Group(seatID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groups[seatID]
}

// SetMany applies the whole batch under one write lock so readers never see
// half of it.
func (s *Store) SetMany(changes []models.SeatChange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range changes {
		s.apply(c)
	}
}

func (s *Store) ClearMany(seatIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range seatIDs {
		delete(s.status, id)
		delete(s.groups, id)
	}
}

// Replace discards the current state and loads entries in its place
func (s *Store) Replace(entries []models.SeatChange) {
	status := make(map[string]models.SeatStatus, len(entries))
	groups := make(map[string]string)
	for _, e := range entries {
		if e.Status == models.SeatStatusFree || !e.Status.Valid() {
			continue
		}
		status[e.SeatID] = e.Status
		if e.Group != "" {
			groups[e.SeatID] = e.Group
		}
	}

	s.mu.Lock()
	s.status = status
	s.groups = groups
	s.mu.Unlock()
}

func (s *Store) apply(c models.SeatChange) {
	if c.Status == models.SeatStatusFree {
		delete(s.status, c.SeatID)
		delete(s.groups, c.SeatID)
		return
	}
	s.status[c.SeatID] = c.Status
	if c.Group == "" {
		delete(s.groups, c.SeatID)
	} else {
		s.groups[c.SeatID] = c.Group
	}
}

// GroupEntries returns a copy of the seat -> group mapping
func (s *Store) GroupEntries() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.groups))
	for id, g := range s.groups {
		if _, ok := s.status[id]; ok {
			out[id] = g
		}
	}
	return out
}

func (s *Store) Snapshot() models.SeatMapSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := models.SeatMapSnapshot{
		Statuses:  make(map[string]models.SeatStatus, len(s.status)),
		Groups:    make(map[string]string, len(s.groups)),
		Timestamp: time.Now().UTC(),
	}
	for id, st := range s.status {
		snap.Statuses[id] = st
	}
	for id, g := range s.groups {
		snap.Groups[id] = g
	}
	return snap
}

// Counts returns the number of reserved and occupied seats
func (s *Store) Counts() map[models.SeatStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[models.SeatStatus]int{
		models.SeatStatusReserved: 0,
		models.SeatStatusOccupied: 0,
	}
	for _, st := range s.status {
		counts[st]++
	}
	return counts
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.status)
}
