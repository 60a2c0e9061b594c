package service

import (
	"context"
	"sort"
	"sync"

	"github.com/mahamedadballa/circlechat-server/internal/apperr"
	"github.com/mahamedadballa/circlechat-server/internal/models"
	"github.com/mahamedadballa/circlechat-server/internal/presence"
)

// In-memory stores mirroring the Mongo repositories' contracts, including
// their error mapping and atomicity guarantees.

type memUsers struct {
	mu      sync.Mutex
	byUID   map[string]*models.User
	byShort map[string]string
}

func newMemUsers() *memUsers {
	return &memUsers{byUID: map[string]*models.User{}, byShort: map[string]string{}}
}

func (m *memUsers) Insert(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byUID[u.UID]; ok {
		return apperr.ErrAlreadyRegistered
	}
	if _, ok := m.byShort[u.ShortID]; ok {
		return apperr.ErrAlreadyRegistered
	}
	cp := *u
	m.byUID[u.UID] = &cp
	m.byShort[u.ShortID] = u.UID
	return nil
}

func (m *memUsers) GetByUID(_ context.Context, uid string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byUID[uid]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByShortID(_ context.Context, shortID string) (*models.User, error) {
	m.mu.Lock()
	uid, ok := m.byShort[shortID]
	m.mu.Unlock()
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return m.GetByUID(context.Background(), uid)
}

func (m *memUsers) ShortIDExists(_ context.Context, shortID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byShort[shortID]
	return ok, nil
}

func (m *memUsers) ListOthers(_ context.Context, uid string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for id, u := range m.byUID {
		if id != uid {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out, nil
}

func (m *memUsers) UpdateFields(_ context.Context, uid string, set map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byUID[uid]
	if !ok {
		return apperr.ErrNotFound
	}
	for k, v := range set {
		s, _ := v.(string)
		switch k {
		case "first_name":
			u.FirstName = s
		case "last_name":
			u.LastName = s
		case "name":
			u.Name = s
		case "phone":
			u.Phone = s
		case "avatar":
			u.Avatar = s
		case "status":
			u.Status = s
		}
	}
	return nil
}

type memConvs struct {
	mu    sync.Mutex
	byID  map[string]*models.Conversation
	clock int64
}

func newMemConvs() *memConvs {
	return &memConvs{byID: map[string]*models.Conversation{}}
}

func (m *memConvs) Upsert(_ context.Context, userA, userB string) (*models.Conversation, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := models.CanonicalConversationID(userA, userB)
	if c, ok := m.byID[id]; ok {
		cp := *c
		return &cp, false, nil
	}
	a, b := userA, userB
	if b < a {
		a, b = b, a
	}
	c := &models.Conversation{ID: id, Participants: []string{a, b}}
	m.byID[id] = c
	cp := *c
	return &cp, true, nil
}

func (m *memConvs) Get(_ context.Context, id string) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return nil, apperr.ErrConversationNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memConvs) ListForUser(_ context.Context, uid string) ([]models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Conversation
	for _, c := range m.byID {
		if c.HasParticipant(uid) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *memConvs) ClaimSeq(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return 0, apperr.ErrConversationNotFound
	}
	c.LastSeq++
	return c.LastSeq, nil
}

func (m *memConvs) RefreshLastMessage(_ context.Context, id string, last *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return apperr.ErrConversationNotFound
	}
	// Seq-guarded like the Mongo repo: a stale refresh loses.
	if c.LastMessage != nil && c.LastMessage.Seq >= last.Seq {
		return nil
	}
	cp := *last
	c.LastMessage = &cp
	c.UpdatedAt = last.Timestamp
	return nil
}

type memMsgs struct {
	mu   sync.Mutex
	byID map[string]*models.Message
	seq  []string // insertion order
}

func newMemMsgs() *memMsgs {
	return &memMsgs{byID: map[string]*models.Message{}}
}

func (m *memMsgs) Insert(_ context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	m.byID[msg.ID] = &cp
	m.seq = append(m.seq, msg.ID)
	return nil
}

func (m *memMsgs) Get(_ context.Context, id string) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *msg
	return &cp, nil
}

func (m *memMsgs) ListOrdered(_ context.Context, conversationID string) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Message
	for _, id := range m.seq {
		if msg := m.byID[id]; msg.ConversationID == conversationID {
			out = append(out, *msg)
		}
	}
	models.SortMessages(out)
	return out, nil
}

func (m *memMsgs) AdvanceStatus(_ context.Context, id, target string) (*models.Message, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.byID[id]
	if !ok {
		return nil, false, apperr.ErrNotFound
	}
	if models.StatusRank(target) > models.StatusRank(msg.Status) {
		msg.Status = target
		cp := *msg
		return &cp, true, nil
	}
	cp := *msg
	return &cp, false, nil
}

func (m *memMsgs) AdvanceConversationRead(_ context.Context, conversationID, reader string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, id := range m.seq {
		msg := m.byID[id]
		if msg.ConversationID != conversationID || msg.SenderID == reader {
			continue
		}
		if models.StatusRank(msg.Status) < models.StatusRank(models.StatusRead) {
			msg.Status = models.StatusRead
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *memMsgs) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

type memUnread struct {
	mu     sync.Mutex
	counts map[string]map[string]int64
	err    error // injected failure for every call
}

func newMemUnread() *memUnread {
	return &memUnread{counts: map[string]map[string]int64{}}
}

func (m *memUnread) IncrUnread(_ context.Context, uid, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.counts[uid] == nil {
		m.counts[uid] = map[string]int64{}
	}
	m.counts[uid][conversationID]++
	return nil
}

func (m *memUnread) ClearUnread(_ context.Context, uid, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.counts[uid], conversationID)
	return nil
}

func (m *memUnread) UnreadCounts(_ context.Context, uid string) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]int64, len(m.counts[uid]))
	for k, v := range m.counts[uid] {
		out[k] = v
	}
	return out, nil
}

type memPresence struct {
	mu   sync.Mutex
	info map[string]presence.Info
}

func newMemPresence() *memPresence {
	return &memPresence{info: map[string]presence.Info{}}
}

func (m *memPresence) Set(_ context.Context, uid, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.info[uid] = presence.Info{Status: status}
	return nil
}

func (m *memPresence) Get(_ context.Context, uid string) (*presence.Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if info, ok := m.info[uid]; ok {
		return &info, nil
	}
	return &presence.Info{Status: models.StatusOffline}, nil
}
