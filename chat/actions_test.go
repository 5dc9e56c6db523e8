package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Windi-Fikriyansyah/joki-chat/models"
)

// mockReviewSubmitter counts submissions and returns a scripted result.
type mockReviewSubmitter struct {
	mu      sync.Mutex
	calls   int
	block   chan struct{}
	failErr error
}

func (m *mockReviewSubmitter) SubmitReview(ctx context.Context, offerID string, rating int, comment string) (models.Review, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.block != nil {
		<-m.block
	}
	if m.failErr != nil {
		return models.Review{}, m.failErr
	}
	return models.Review{ID: "rev-1", JobOfferID: offerID, Rating: rating, Comment: comment}, nil
}

func (m *mockReviewSubmitter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestReviewFlowRejectsMissingRatingLocally(t *testing.T) {
	api := &mockReviewSubmitter{}
	flow := NewReviewFlow(api, nil)

	err := flow.Submit(context.Background(), "offer-1", 0, "bagus")

	assert.ErrorIs(t, err, ErrRatingRequired)
	assert.Equal(t, "Pilih rating terlebih dahulu", err.Error())
	assert.Zero(t, api.Calls(), "no request may be issued for a missing rating")
}

func TestReviewFlowRejectsOutOfRangeRating(t *testing.T) {
	api := &mockReviewSubmitter{}
	flow := NewReviewFlow(api, nil)

	assert.ErrorIs(t, flow.Submit(context.Background(), "offer-1", 6, ""), ErrRatingRequired)
	assert.Zero(t, api.Calls())
}

func TestReviewFlowSubmitReportsThroughOnSuccess(t *testing.T) {
	api := &mockReviewSubmitter{}
	var got models.Review
	flow := NewReviewFlow(api, func(r models.Review) { got = r })

	err := flow.Submit(context.Background(), "offer-1", 5, "kerja bagus")

	assert.NoError(t, err)
	assert.Equal(t, "offer-1", got.JobOfferID)
	assert.Equal(t, 5, got.Rating)
	assert.False(t, flow.InFlight())
}

func TestReviewFlowAtMostOnceWhileInFlight(t *testing.T) {
	api := &mockReviewSubmitter{block: make(chan struct{})}
	flow := NewReviewFlow(api, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = flow.Submit(context.Background(), "offer-1", 4, "")
	}()

	assert.Eventually(t, func() bool { return flow.InFlight() }, time.Second, time.Millisecond)

	err := flow.Submit(context.Background(), "offer-1", 4, "")
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(api.block)
	wg.Wait()
	assert.Equal(t, 1, api.Calls())
}

func TestReviewFlowFailureReenablesSubmission(t *testing.T) {
	api := &mockReviewSubmitter{failErr: errors.New("server error")}
	successes := 0
	flow := NewReviewFlow(api, func(models.Review) { successes++ })

	err := flow.Submit(context.Background(), "offer-1", 3, "")
	assert.Error(t, err)
	assert.False(t, flow.InFlight(), "a failed submission re-enables the submit control")
	assert.Zero(t, successes)

	// Retry succeeds once the server recovers
	api.failErr = nil
	assert.NoError(t, flow.Submit(context.Background(), "offer-1", 3, ""))
	assert.Equal(t, 1, successes)
}

func TestRenderPreviewByKind(t *testing.T) {
	tests := []struct {
		name     string
		message  models.Message
		expected string
	}{
		{
			name:     "text renders its body",
			message:  models.Message{Kind: models.KindText, Text: "halo kak"},
			expected: "halo kak",
		},
		{
			name:     "delivery renders the fixed template",
			message:  models.Message{Kind: models.KindDelivery},
			expected: DeliveryNoticeText,
		},
		{
			name:     "revision request includes its reason",
			message:  models.Message{Kind: models.KindRevisionRequest, Reason: "bab 2 kurang lengkap"},
			expected: "Permintaan revisi: bab 2 kurang lengkap",
		},
		{
			name:     "review prompt renders its copy",
			message:  models.Message{Kind: models.KindReviewPrompt},
			expected: ReviewPromptText,
		},
		{
			name:     "unknown kind falls back to the placeholder",
			message:  models.Message{Kind: models.MessageKind("voice_note"), Text: "ignored"},
			expected: UnsupportedText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RenderPreview(tt.message))
		})
	}
}

func TestRevisionDetailFromMessage(t *testing.T) {
	requestedAt := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	m := models.Message{
		ID:        "m1",
		Kind:      models.KindRevisionRequest,
		Reason:    "tolong rapikan format",
		CreatedAt: requestedAt,
	}

	detail, err := RevisionDetailFromMessage(m)
	assert.NoError(t, err)
	assert.Equal(t, "tolong rapikan format", detail.Reason)
	assert.Equal(t, requestedAt, detail.RequestedAt)

	_, err = RevisionDetailFromMessage(models.Message{ID: "m2", Kind: models.KindText})
	assert.Error(t, err)
}
