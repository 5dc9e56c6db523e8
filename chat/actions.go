package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Windi-Fikriyansyah/joki-chat/models"
)

// User-facing copy for the specialized message variants. The delivery notice
// is rendered from a fixed template; the 7-day revision window is business
// copy only, no client-side timer exists.
const (
	DeliveryNoticeText = "Pekerjaan telah dikirim. Anda memiliki waktu 7 hari untuk meminta revisi sebelum pesanan dianggap selesai."
	ReviewPromptText   = "Pesanan selesai. Berikan rating dan ulasan untuk joki ini."
	UnsupportedText    = "[Pesan tidak didukung]"
)

var (
	// ErrRatingRequired is returned when a review is submitted without
	// choosing a rating; no request is issued.
	ErrRatingRequired = errors.New("Pilih rating terlebih dahulu")

	// ErrSubmitInFlight is returned when a review submission is already in
	// flight; the submit control is disabled until it resolves.
	ErrSubmitInFlight = errors.New("pengiriman ulasan sedang diproses")
)

// RenderPreview produces the transcript-cell text for a message. Every kind
// renders; unrecognized kinds fall back to a minimal placeholder.
func RenderPreview(m models.Message) string {
	switch m.Kind {
	case models.KindText:
		return m.Text
	case models.KindDelivery:
		return DeliveryNoticeText
	case models.KindRevisionRequest:
		return fmt.Sprintf("Permintaan revisi: %s", m.Reason)
	case models.KindReviewPrompt:
		return ReviewPromptText
	default:
		return UnsupportedText
	}
}

// ReviewSubmitter is the slice of the API client the review flow depends on.
type ReviewSubmitter interface {
	SubmitReview(ctx context.Context, offerID string, rating int, comment string) (models.Review, error)
}

// ReviewFlow is the submission state behind the review modal. The modal owns
// nothing else: success is reported only through OnSuccess, errors surface
// as transient notifications and leave the modal open for retry.
type ReviewFlow struct {
	api ReviewSubmitter

	// OnSuccess is the only channel back into conversation state.
	OnSuccess func(models.Review)

	mu       sync.Mutex
	inFlight bool
}

// NewReviewFlow creates a flow backed by the given submitter.
func NewReviewFlow(api ReviewSubmitter, onSuccess func(models.Review)) *ReviewFlow {
	return &ReviewFlow{api: api, OnSuccess: onSuccess}
}

// InFlight reports whether a submission is currently being processed (the
// submit control renders disabled while true).
func (f *ReviewFlow) InFlight() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight
}

// Submit validates and posts the review. A rating outside 1..5 is rejected
// locally with ErrRatingRequired and nothing is sent. Submissions are
// at-most-once from the UI's perspective: a second Submit while one is in
// flight returns ErrSubmitInFlight. A server failure re-enables submission.
func (f *ReviewFlow) Submit(ctx context.Context, offerID string, rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return ErrRatingRequired
	}

	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	f.inFlight = true
	f.mu.Unlock()

	review, err := f.api.SubmitReview(ctx, offerID, rating, comment)

	f.mu.Lock()
	f.inFlight = false
	f.mu.Unlock()

	if err != nil {
		return err
	}
	if f.OnSuccess != nil {
		f.OnSuccess(review)
	}
	return nil
}

// RevisionDetail is the read-only content of the revision detail modal,
// derived from a revision_request message.
type RevisionDetail struct {
	Reason      string
	RequestedAt time.Time
}

// RevisionDetailFromMessage extracts the detail view content. It fails only
// when the message is not a revision request.
func RevisionDetailFromMessage(m models.Message) (RevisionDetail, error) {
	if m.Kind != models.KindRevisionRequest {
		return RevisionDetail{}, fmt.Errorf("message %s is not a revision request", m.ID)
	}
	return RevisionDetail{Reason: m.Reason, RequestedAt: m.CreatedAt}, nil
}
