package queue

import (
	"sync"

	"coldreach/models"
)

// Store owns all per-session outreach state: the prospect list, queue
// membership, saved draft edits and the global template configuration.
// It replaces the ambient globals of a browser session with a single owned
// object whose lifecycle is tied to session start/reset.
//
// Invariants maintained here:
//   - available, sent and removed are pairwise disjoint
//   - available preserves original discovery order
//   - a saved draft exists for an id iff it differs from the derived default
//     at the time it was saved
type Store struct {
	mu sync.RWMutex

	prospects map[int]models.Prospect
	order     []int       // all prospect ids in discovery order
	orderPos  map[int]int // id -> index in order
	available []int       // still-contactable ids, subset of order
	sent      map[int]struct{}
	removed   map[int]struct{}
	saved     map[int]models.Draft

	template string // global HTML template; empty means blank template
	subject  string // global subject line for derived drafts
	sender   models.SenderInfo

	globalAttachments []models.Attachment

	// current queue position, owned by the Navigator
	current    int
	hasCurrent bool
}

// NewStore creates a session store seeded with the given prospect list.
func NewStore(prospects []models.Prospect, sender models.SenderInfo, subject string) *Store {
	s := &Store{
		sender:  sender,
		subject: subject,
	}
	s.importLocked(prospects)
	return s
}

// Import replaces the entire prospect list and resets all derived state.
// Importing is all-or-nothing; partial imports never reach the store.
func (s *Store) Import(prospects []models.Prospect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.importLocked(prospects)
}

func (s *Store) importLocked(prospects []models.Prospect) {
	s.prospects = make(map[int]models.Prospect, len(prospects))
	s.order = make([]int, 0, len(prospects))
	s.orderPos = make(map[int]int, len(prospects))
	for _, p := range prospects {
		if _, dup := s.prospects[p.ID]; dup {
			continue
		}
		s.prospects[p.ID] = p
		s.orderPos[p.ID] = len(s.order)
		s.order = append(s.order, p.ID)
	}
	s.resetLocked()
}

// Reset repopulates the available sequence from the full prospect list and
// clears the sent/removed sets and all saved drafts. This is the only way
// back from the exhausted state: a full restart, not a partial undo.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Store) resetLocked() {
	s.available = append([]int(nil), s.order...)
	s.sent = make(map[int]struct{})
	s.removed = make(map[int]struct{})
	s.saved = make(map[int]models.Draft)
	if len(s.available) > 0 {
		s.current = s.available[0]
		s.hasCurrent = true
	} else {
		s.hasCurrent = false
	}
}

// Prospect returns the prospect record for an id.
func (s *Store) Prospect(id int) (models.Prospect, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prospects[id]
	return p, ok
}

// Prospects returns all prospects in discovery order, sent or not.
func (s *Store) Prospects() []models.Prospect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Prospect, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.prospects[id])
	}
	return out
}

// Available returns a copy of the still-contactable id sequence.
func (s *Store) Available() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int(nil), s.available...)
}

// IsAvailable reports whether the id is still in the queue.
func (s *Store) IsAvailable(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOfLocked(id) >= 0
}

// Exhausted reports whether every prospect has been sent or removed.
func (s *Store) Exhausted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.available) == 0
}

// SentCount returns how many prospects have been contacted this session.
func (s *Store) SentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sent)
}

// DefaultDraft derives the displayed draft for a prospect under the current
// template configuration, without consulting saved edits.
func (s *Store) DefaultDraft(id int) (models.Draft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultDraftLocked(id)
}

func (s *Store) defaultDraftLocked(id int) (models.Draft, bool) {
	p, ok := s.prospects[id]
	if !ok {
		return models.Draft{}, false
	}
	body := s.template
	if body == "" {
		body = BlankBodyTemplate
	}
	return models.Draft{
		To:      p.ContactEmail,
		Subject: s.subject,
		Body:    Render(body, p, s.sender),
	}, true
}

// GetDisplayed returns the saved draft for a prospect if one exists, else
// the derived default.
func (s *Store) GetDisplayed(id int) (models.Draft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.saved[id]; ok {
		return d, true
	}
	return s.defaultDraftLocked(id)
}

// Save stores an edited draft for a prospect. A draft equal to the derived
// default on all three fields is not stored; any previously saved draft for
// the id is deleted instead, reverting the prospect to derived display.
// Saving is a no-op for ids no longer in the available sequence.
func (s *Store) Save(id int, draft models.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOfLocked(id) < 0 {
		return
	}
	def, ok := s.defaultDraftLocked(id)
	if !ok {
		return
	}
	if draft.Equal(def) {
		delete(s.saved, id)
		return
	}
	s.saved[id] = draft
}

// IsCustomized reports whether a saved draft currently exists for the id.
func (s *Store) IsCustomized(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.saved[id]
	return ok
}

// MarkSent moves the id from available to the sent set and discards its
// saved draft. Returns false if the id was not available.
func (s *Store) MarkSent(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dropLocked(id) {
		return false
	}
	s.sent[id] = struct{}{}
	return true
}

// Remove drops the id from available without marking it sent (manual
// deletion from the queue). A removed prospect cannot come back within the
// session except through a full Reset.
func (s *Store) Remove(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dropLocked(id) {
		return false
	}
	s.removed[id] = struct{}{}
	return true
}

func (s *Store) dropLocked(id int) bool {
	idx := s.indexOfLocked(id)
	if idx < 0 {
		return false
	}
	s.available = append(s.available[:idx], s.available[idx+1:]...)
	delete(s.saved, id)
	return true
}

func (s *Store) indexOfLocked(id int) int {
	for i, v := range s.available {
		if v == id {
			return i
		}
	}
	return -1
}

// slotOfLocked returns the position the id holds (or held, immediately after
// removal) in the available sequence: the count of still-available ids that
// precede it in discovery order.
func (s *Store) slotOfLocked(id int) int {
	pos, ok := s.orderPos[id]
	if !ok {
		return 0
	}
	slot := 0
	for _, v := range s.available {
		if s.orderPos[v] < pos {
			slot++
		}
	}
	return slot
}

// SetTemplate saves the global email template. Saved drafts are left alone:
// they stay pinned to what was true for them, only derived defaults change.
func (s *Store) SetTemplate(template string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.template = template
}

// ClearTemplate reverts derived drafts to the blank template.
func (s *Store) ClearTemplate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.template = ""
}

// Template returns the current global template, empty if none is saved.
func (s *Store) Template() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.template
}

// SetSubject updates the global subject line used for derived drafts.
func (s *Store) SetSubject(subject string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subject = subject
}

// Subject returns the global subject line.
func (s *Store) Subject() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subject
}

// Sender returns the sender info used for token substitution.
func (s *Store) Sender() models.SenderInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sender
}

// SetSender updates the sender info (e.g. when the user fills in a phone
// number after login).
func (s *Store) SetSender(sender models.SenderInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sender = sender
}

// AddGlobalAttachment registers a file to be attached to every outgoing
// email for the rest of the session.
func (s *Store) AddGlobalAttachment(a models.Attachment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.globalAttachments = append(s.globalAttachments, a)
}

// RemoveGlobalAttachment removes the attachment at the given index.
func (s *Store) RemoveGlobalAttachment(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.globalAttachments) {
		return false
	}
	s.globalAttachments = append(s.globalAttachments[:index], s.globalAttachments[index+1:]...)
	return true
}

// GlobalAttachments returns a copy of the session-wide attachment list.
func (s *Store) GlobalAttachments() []models.Attachment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Attachment(nil), s.globalAttachments...)
}

// MissingEmailCompanies lists company names of prospects that have no
// contact address, for the pre-flight warning panel.
func (s *Store) MissingEmailCompanies() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var companies []string
	for _, id := range s.order {
		if p := s.prospects[id]; !p.HasEmail() {
			companies = append(companies, p.CompanyName)
		}
	}
	return companies
}
