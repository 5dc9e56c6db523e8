package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Windi-Fikriyansyah/joki-chat/models"
)

// TranscriptSource is the slice of the API client the store depends on.
type TranscriptSource interface {
	ListConversations(ctx context.Context) ([]models.Conversation, error)
	ListMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error)
	SendMessage(ctx context.Context, conversationID, text string) (models.Message, error)
	UnreadCount(ctx context.Context) (int, error)
}

// Store owns the client-side conversation state: the per-conversation
// message sequences, the active conversation, and the unread badge count.
// Components read snapshots and request mutations; they never touch the
// underlying slices.
type Store struct {
	api TranscriptSource
	bus *UnreadBus
	log *logrus.Entry

	pageSize int

	mu            sync.Mutex
	selfID        string
	activeID      string
	conversations []models.Conversation
	cache         map[string][]models.Message
	unread        int

	// Fetch-start sequence numbers. Overlapping refreshes resolve by
	// sequence comparison: a response from an older fetch never overwrites
	// state a newer fetch already applied.
	nextSeq    uint64
	appliedSeq map[string]uint64
}

// NewStore creates a Store backed by the given API source, publishing unread
// counts on the given bus.
func NewStore(api TranscriptSource, bus *UnreadBus) *Store {
	return &Store{
		api:        api,
		bus:        bus,
		log:        logrus.WithField("component", "chat-store"),
		pageSize:   50,
		cache:      make(map[string][]models.Message),
		appliedSeq: make(map[string]uint64),
	}
}

// SetIdentity records the session user's id, used to stamp optimistic sends.
func (s *Store) SetIdentity(userID string) {
	s.mu.Lock()
	s.selfID = userID
	s.mu.Unlock()
}

// IsOwn reports whether the message was sent by the session user.
func (s *Store) IsOwn(m models.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selfID != "" && m.SenderID == s.selfID
}

// RefreshConversations replaces the conversation list from the server.
// Failures (including timeouts) leave the previous list intact.
func (s *Store) RefreshConversations(ctx context.Context) error {
	conversations, err := s.api.ListConversations(ctx)
	if err != nil {
		s.log.WithError(err).Debug("Conversation list refresh failed, keeping cache")
		return err
	}

	s.mu.Lock()
	s.conversations = conversations
	s.mu.Unlock()
	return nil
}

// Conversations returns a snapshot of the conversation list.
func (s *Store) Conversations() []models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// Select makes the conversation active and refetches its transcript. There
// is no staleness policy: a selection change always refetches, so a reopened
// conversation never shows a stale transcript.
func (s *Store) Select(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	s.activeID = conversationID
	s.mu.Unlock()

	return s.Load(ctx, conversationID)
}

// Deselect clears the active conversation (detail view unmounted).
func (s *Store) Deselect() {
	s.mu.Lock()
	s.activeID = ""
	s.mu.Unlock()
}

// ActiveID returns the id of the active conversation, or "" when no detail
// view is open.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Load fetches the conversation's newest message page and reconciles it with
// the cached transcript, preserving still-pending optimistic sends. Any
// fetch failure leaves the previous cache intact; callers that degrade
// silently just ignore the returned error.
func (s *Store) Load(ctx context.Context, conversationID string) error {
	seq := s.beginFetch()

	page, err := s.api.ListMessages(ctx, conversationID, s.pageSize)
	if err != nil {
		s.log.WithError(err).WithField("conversation", conversationID).
			Debug("Message refresh failed, keeping cache")
		return err
	}

	s.applyServerPage(conversationID, seq, page)
	return nil
}

// RefreshActive reloads the transcript of the active conversation. The
// response is discarded if the user has navigated to another conversation
// (or closed the view) while the request was in flight.
func (s *Store) RefreshActive(ctx context.Context) error {
	s.mu.Lock()
	conversationID := s.activeID
	s.mu.Unlock()
	if conversationID == "" {
		return nil
	}

	seq := s.beginFetch()
	page, err := s.api.ListMessages(ctx, conversationID, s.pageSize)
	if err != nil {
		return err
	}

	s.mu.Lock()
	stillActive := s.activeID == conversationID
	s.mu.Unlock()
	if !stillActive {
		s.log.WithField("conversation", conversationID).
			Debug("Discarding refresh for no longer active conversation")
		return nil
	}

	s.applyServerPage(conversationID, seq, page)
	return nil
}

// AppendOptimistic inserts a locally stamped message into the transcript
// before server confirmation, so the sender sees it immediately. The entry
// carries a temporary id and the pending marker until a reconcile replaces
// it with the server copy.
func (s *Store) AppendOptimistic(conversationID, text string) models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	message := models.Message{
		ID:             "tmp-" + uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       s.selfID,
		Kind:           models.KindText,
		Text:           text,
		CreatedAt:      time.Now(),
		ClientTemp:     true,
	}
	s.cache[conversationID] = append(s.cache[conversationID], message)
	return message
}

// Send appends an optimistic message and posts it. On success the pending
// entry is replaced by the server-confirmed copy. On failure the pending
// entry is left in place until the next reconcile removes or confirms it;
// the error is returned for the caller's notification surface.
func (s *Store) Send(ctx context.Context, conversationID, text string) (models.Message, error) {
	pending := s.AppendOptimistic(conversationID, text)

	seq := s.beginFetch()
	confirmed, err := s.api.SendMessage(ctx, conversationID, text)
	if err != nil {
		s.log.WithError(err).WithField("conversation", conversationID).Warn("Message send failed")
		return pending, err
	}

	s.mu.Lock()
	// The confirmation is server state newer than any refresh that started
	// before the POST; mark the sequence applied so such a refresh's late
	// page cannot wipe the confirmed entry.
	s.supersedes("conv:"+conversationID, seq)

	// Swap the pending entry for the server copy in place. Other pending
	// sends stay untouched until their own confirmations land.
	transcript := s.cache[conversationID]
	replaced := transcript[:0:0]
	for _, m := range transcript {
		if m.ID == pending.ID || m.ID == confirmed.ID {
			continue
		}
		replaced = append(replaced, m)
	}
	replaced = append(replaced, confirmed)
	sort.SliceStable(replaced, func(i, j int) bool {
		return replaced[i].Before(replaced[j])
	})
	s.cache[conversationID] = replaced
	s.mu.Unlock()

	return confirmed, nil
}

// Transcript returns a snapshot of the reconciled transcript for the given
// conversation.
func (s *Store) Transcript(conversationID string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	transcript := s.cache[conversationID]
	out := make([]models.Message, len(transcript))
	copy(out, transcript)
	return out
}

// Unread returns the current badge count.
func (s *Store) Unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// ReconcileUnread overwrites the badge count and broadcasts it so every
// mounted surface stays consistent.
func (s *Store) ReconcileUnread(count int) {
	s.mu.Lock()
	s.unread = count
	s.mu.Unlock()
	s.bus.Publish(count)
}

// RefreshUnread fetches the unread count and reconciles it. A timeout or
// network failure changes nothing.
func (s *Store) RefreshUnread(ctx context.Context) error {
	seq := s.beginFetch()

	count, err := s.api.UnreadCount(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if !s.supersedes("unread", seq) {
		s.mu.Unlock()
		return nil
	}
	s.unread = count
	s.mu.Unlock()

	s.bus.Publish(count)
	return nil
}

// beginFetch hands out the next fetch-start sequence number.
func (s *Store) beginFetch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	return s.nextSeq
}

// supersedes reports whether a fetch with the given start sequence may apply
// its response to the keyed state, recording it as applied when it may.
// Caller holds s.mu.
func (s *Store) supersedes(key string, seq uint64) bool {
	if seq <= s.appliedSeq[key] {
		return false
	}
	s.appliedSeq[key] = seq
	return true
}

// applyServerPage reconciles a fetched page into the cache unless a
// later-started fetch already applied a newer one.
func (s *Store) applyServerPage(conversationID string, seq uint64, page []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.supersedes("conv:"+conversationID, seq) {
		s.log.WithFields(logrus.Fields{
			"conversation": conversationID,
			"seq":          seq,
		}).Debug("Discarding superseded message page")
		return
	}

	s.cache[conversationID] = MergeTranscript(s.cache[conversationID], page)
}
