// Package store holds the in-memory entity collections and keeps each one
// mirrored into its own storage slot.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"mindjournal/internal/models"
	"mindjournal/internal/storage"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrEntryNotFound      = errors.New("journal entry not found")
	ErrAnalysisAttached   = errors.New("analysis already attached")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrDuplicateCode      = errors.New("voucher code already issued")
)

type authSnapshot struct {
	Users []models.User `json:"users"`
}

type journalSnapshot struct {
	Entries []models.JournalEntry `json:"entries"`
}

type rewardsSnapshot struct {
	AvailableRewards []models.Reward         `json:"available_rewards"`
	RedeemedRewards  []models.RedeemedReward `json:"redeemed_rewards"`
}

type settingsSnapshot struct {
	Settings models.Settings `json:"settings"`
}

type state struct {
	users       []models.User
	entries     []models.JournalEntry
	rewards     []models.Reward
	redemptions []models.RedeemedReward
	settings    models.Settings
}

func (st *state) encode(key string) ([]byte, error) {
	switch key {
	case storage.SlotAuth:
		return json.Marshal(authSnapshot{Users: st.users})
	case storage.SlotJournal:
		return json.Marshal(journalSnapshot{Entries: st.entries})
	case storage.SlotRewards:
		return json.Marshal(rewardsSnapshot{AvailableRewards: st.rewards, RedeemedRewards: st.redemptions})
	case storage.SlotSettings:
		return json.Marshal(settingsSnapshot{Settings: st.settings})
	}
	return nil, fmt.Errorf("unknown slot %q", key)
}

type Store struct {
	mu    sync.RWMutex
	slots storage.Slots
	log   *zap.Logger
	st    state
}

// Open loads every collection from slots. A slot that is missing, unreadable
// or undecodable starts from its default state instead of failing.
func Open(ctx context.Context, slots storage.Slots, log *zap.Logger) *Store {
	s := &Store{slots: slots, log: log}

	var auth authSnapshot
	if s.load(ctx, storage.SlotAuth, &auth) {
		s.st.users = auth.Users
	}
	var journal journalSnapshot
	if s.load(ctx, storage.SlotJournal, &journal) {
		s.st.entries = journal.Entries
	}
	var rewards rewardsSnapshot
	if s.load(ctx, storage.SlotRewards, &rewards) {
		s.st.rewards = rewards.AvailableRewards
		s.st.redemptions = rewards.RedeemedRewards
	}
	if len(s.st.rewards) == 0 {
		s.st.rewards = slices.Clone(DefaultRewards)
	}
	var settings settingsSnapshot
	if s.load(ctx, storage.SlotSettings, &settings) {
		s.st.settings = settings.Settings
	}
	return s
}

func (s *Store) load(ctx context.Context, key string, dst any) bool {
	data, err := s.slots.Load(ctx, key)
	if errors.Is(err, storage.ErrSlotNotFound) {
		s.log.Debug("slot empty, using defaults", zap.String("slot", key))
		return false
	}
	if err != nil {
		s.log.Warn("slot load failed, using defaults", zap.String("slot", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.log.Warn("slot decode failed, using defaults", zap.String("slot", key), zap.Error(err))
		return false
	}
	return true
}

// commit persists the given slots from next in order. If any write fails, the
// slots already written are rewritten from the current state and the store
// keeps its current state, so a multi-slot change lands fully or not at all.
func (s *Store) commit(ctx context.Context, next state, keys ...string) error {
	for i, key := range keys {
		data, err := next.encode(key)
		if err == nil {
			err = s.slots.Save(ctx, key, data)
		}
		if err != nil {
			s.rollback(ctx, keys[:i])
			return fmt.Errorf("persist %s: %w", key, err)
		}
	}
	s.st = next
	return nil
}

func (s *Store) rollback(ctx context.Context, keys []string) {
	for _, key := range keys {
		data, err := s.st.encode(key)
		if err == nil {
			err = s.slots.Save(ctx, key, data)
		}
		if err != nil {
			s.log.Error("slot rollback failed", zap.String("slot", key), zap.Error(err))
		}
	}
}

func (s *Store) userIndex(id string) int {
	return slices.IndexFunc(s.st.users, func(u models.User) bool { return u.ID == id })
}

func (s *Store) entryIndex(id string) int {
	return slices.IndexFunc(s.st.entries, func(e models.JournalEntry) bool { return e.ID == id })
}

// Users

func (s *Store) User(id string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.userIndex(id); i >= 0 {
		return s.st.users[i], true
	}
	return models.User{}, false
}

func (s *Store) UserByEmail(email string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.st.users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return models.User{}, false
}

func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.st.users)
}

// InsertUser adds u unless another user already holds the same email,
// compared case-insensitively.
func (s *Store) InsertUser(ctx context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.st.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicateEmail
		}
	}
	next := s.st
	next.users = append(slices.Clone(s.st.users), u)
	return s.commit(ctx, next, storage.SlotAuth)
}

// UpdateUser applies fn to a copy of the user and persists the result. When fn
// returns an error nothing is written and the error is returned unchanged.
func (s *Store) UpdateUser(ctx context.Context, id string, fn func(*models.User) error) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(id)
	if i < 0 {
		return models.User{}, ErrUserNotFound
	}
	u := s.st.users[i]
	if err := fn(&u); err != nil {
		return s.st.users[i], err
	}
	next := s.st
	next.users = slices.Clone(s.st.users)
	next.users[i] = u
	if err := s.commit(ctx, next, storage.SlotAuth); err != nil {
		return s.st.users[i], err
	}
	return u, nil
}

// DeleteUser removes the user together with their journal entries.
// Redemptions are permanent records and stay.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(id)
	if i < 0 {
		return ErrUserNotFound
	}
	next := s.st
	next.users = slices.Delete(slices.Clone(s.st.users), i, i+1)
	next.entries = slices.DeleteFunc(slices.Clone(s.st.entries), func(e models.JournalEntry) bool {
		return e.UserID == id
	})
	return s.commit(ctx, next, storage.SlotJournal, storage.SlotAuth)
}

// Journal entries

func cloneEntry(e models.JournalEntry) models.JournalEntry {
	e.Tags = slices.Clone(e.Tags)
	return e
}

func (s *Store) Entry(id string) (models.JournalEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.entryIndex(id); i >= 0 {
		return cloneEntry(s.st.entries[i]), true
	}
	return models.JournalEntry{}, false
}

func (s *Store) Entries() []models.JournalEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.JournalEntry, 0, len(s.st.entries))
	for _, e := range s.st.entries {
		out = append(out, cloneEntry(e))
	}
	return out
}

func (s *Store) EntriesByUser(userID string) []models.JournalEntry {
	return s.filterEntries(func(e models.JournalEntry) bool { return e.UserID == userID })
}

// EntriesByDate returns the user's entries whose UTC timestamp starts with
// date, so "2026-03-01" matches a day and "2026-03" a month.
func (s *Store) EntriesByDate(userID, date string) []models.JournalEntry {
	return s.filterEntries(func(e models.JournalEntry) bool {
		return e.UserID == userID && strings.HasPrefix(e.Date.UTC().Format(time.RFC3339), date)
	})
}

func (s *Store) filterEntries(keep func(models.JournalEntry) bool) []models.JournalEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.JournalEntry
	for _, e := range s.st.entries {
		if keep(e) {
			out = append(out, cloneEntry(e))
		}
	}
	return out
}

// InsertEntry stores e ahead of older entries.
func (s *Store) InsertEntry(ctx context.Context, e models.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st
	next.entries = append([]models.JournalEntry{cloneEntry(e)}, s.st.entries...)
	return s.commit(ctx, next, storage.SlotJournal)
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.entryIndex(id)
	if i < 0 {
		return ErrEntryNotFound
	}
	next := s.st
	next.entries = slices.Delete(slices.Clone(s.st.entries), i, i+1)
	return s.commit(ctx, next, storage.SlotJournal)
}

// AttachAnalysis sets the analysis of an existing entry exactly once.
func (s *Store) AttachAnalysis(ctx context.Context, id string, a models.Analysis) (models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.entryIndex(id)
	if i < 0 {
		return models.JournalEntry{}, ErrEntryNotFound
	}
	if s.st.entries[i].Analysis != nil {
		return cloneEntry(s.st.entries[i]), ErrAnalysisAttached
	}
	next := s.st
	next.entries = slices.Clone(s.st.entries)
	next.entries[i].Analysis = &a
	if err := s.commit(ctx, next, storage.SlotJournal); err != nil {
		return models.JournalEntry{}, err
	}
	return cloneEntry(s.st.entries[i]), nil
}

// Rewards

func (s *Store) Rewards() []models.Reward {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.st.rewards)
}

func (s *Store) Reward(id string) (models.Reward, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.st.rewards {
		if r.ID == id {
			return r, true
		}
	}
	return models.Reward{}, false
}

func (s *Store) RedemptionsByUser(userID string) []models.RedeemedReward {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.RedeemedReward
	for _, r := range s.st.redemptions {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) CodeExists(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.codeExists(code)
}

func (s *Store) codeExists(code string) bool {
	return slices.ContainsFunc(s.st.redemptions, func(r models.RedeemedReward) bool { return r.Code == code })
}

// Redeem debits cost from the redeeming user and records rec as one change:
// the redemption slot and the user slot are both written or neither is.
func (s *Store) Redeem(ctx context.Context, rec models.RedeemedReward, cost int) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(rec.UserID)
	if i < 0 {
		return models.User{}, ErrUserNotFound
	}
	if s.st.users[i].Points < cost {
		return s.st.users[i], ErrInsufficientPoints
	}
	if s.codeExists(rec.Code) {
		return s.st.users[i], ErrDuplicateCode
	}
	next := s.st
	next.users = slices.Clone(s.st.users)
	next.users[i].Points -= cost
	next.redemptions = append([]models.RedeemedReward{rec}, s.st.redemptions...)
	if err := s.commit(ctx, next, storage.SlotRewards, storage.SlotAuth); err != nil {
		return s.st.users[i], err
	}
	return s.st.users[i], nil
}

// Settings

func (s *Store) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.settings
}

func (s *Store) SetSettings(ctx context.Context, settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st
	next.settings = settings
	return s.commit(ctx, next, storage.SlotSettings)
}
