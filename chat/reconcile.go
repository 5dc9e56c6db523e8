package chat

import (
	"sort"
	"time"

	"github.com/Windi-Fikriyansyah/joki-chat/models"
)

// DedupWindow is the timestamp tolerance inside which a pending optimistic
// message and a confirmed server message with the same sender and text are
// considered the same send. Without an explicit window the duplicate shows
// up as two bubbles until the next refresh.
const DedupWindow = 30 * time.Second

// MergeTranscript reconciles the locally cached transcript with a freshly
// fetched server page into one ordered, deduplicated list:
//
//  1. confirmed local entries are replaced wholesale by the server page
//     (the server is authoritative for confirmed content and order);
//  2. pending optimistic entries survive only if they are newer than the
//     server page's latest timestamp, keeping their relative order;
//  3. a surviving pending entry that matches a server entry on sender and
//     text within DedupWindow is dropped in favor of the server copy;
//  4. the union is stable-sorted by (CreatedAt, ID) ascending.
func MergeTranscript(local, server []models.Message) []models.Message {
	confirmed := dedupByID(server)

	var latest time.Time
	for _, m := range confirmed {
		if m.CreatedAt.After(latest) {
			latest = m.CreatedAt
		}
	}

	merged := make([]models.Message, len(confirmed), len(confirmed)+8)
	copy(merged, confirmed)

	for _, m := range local {
		if m.Confirmed() {
			continue
		}
		if !m.CreatedAt.After(latest) {
			// The server has caught up past this send; if its confirmed
			// copy is not in the page the send was lost, and keeping the
			// pending entry would freeze a ghost message in place.
			continue
		}
		if matchesConfirmed(m, confirmed) {
			continue
		}
		merged = append(merged, m)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Before(merged[j])
	})
	return merged
}

// dedupByID drops repeated confirmed ids, keeping the first occurrence.
func dedupByID(messages []models.Message) []models.Message {
	seen := make(map[string]bool, len(messages))
	out := messages[:0:0]
	for _, m := range messages {
		if m.ID != "" && seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		out = append(out, m)
	}
	return out
}

// matchesConfirmed reports whether the pending message looks like one of the
// confirmed ones: same sender, same text, timestamps within DedupWindow.
func matchesConfirmed(pending models.Message, confirmed []models.Message) bool {
	for _, m := range confirmed {
		if m.SenderID != pending.SenderID || m.Text != pending.Text {
			continue
		}
		delta := pending.CreatedAt.Sub(m.CreatedAt)
		if delta < 0 {
			delta = -delta
		}
		if delta <= DedupWindow {
			return true
		}
	}
	return false
}
