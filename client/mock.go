package client

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// MockFeedbackServerClient is a mock implementation for testing and the
// --test CLI mode. It records calls instead of talking to a backend.
type MockFeedbackServerClient struct {
	mu       sync.Mutex
	uploads  []UploadRecord
	consents []ConsentRecord

	// UploadErr, when set, is returned by every UploadVideo call
	UploadErr error
	// NextVideoID is handed back as the stored video ID on success
	NextVideoID string
}

// UploadRecord tracks uploaded videos for testing
type UploadRecord struct {
	FilePath  string
	MimeType  string
	Duration  time.Duration
	Timestamp time.Time
}

// ConsentRecord tracks submitted consent answers for testing
type ConsentRecord struct {
	VideoID string
	Allow   bool
}

// NewMockFeedbackServerClient creates a new mock client
func NewMockFeedbackServerClient() *MockFeedbackServerClient {
	return &MockFeedbackServerClient{NextVideoID: "mock-video-id"}
}

// UploadVideo records the upload request
func (m *MockFeedbackServerClient) UploadVideo(ctx context.Context, request UploadVideoRequest) (*UploadVideoResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UploadErr != nil {
		log.Printf("[MOCK] Upload of %s failed: %v", request.FilePath, m.UploadErr)
		return nil, m.UploadErr
	}

	m.uploads = append(m.uploads, UploadRecord{
		FilePath:  request.FilePath,
		MimeType:  request.MimeType,
		Duration:  request.Duration,
		Timestamp: request.RecordingTimestamp,
	})
	log.Printf("[MOCK] Uploaded %s (%d uploads total)", request.FilePath, len(m.uploads))

	return &UploadVideoResponse{VideoID: m.NextVideoID}, nil
}

// SubmitConsent records the consent answer
func (m *MockFeedbackServerClient) SubmitConsent(ctx context.Context, videoID string, allow bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if videoID == "" {
		return fmt.Errorf("missing video ID")
	}
	m.consents = append(m.consents, ConsentRecord{VideoID: videoID, Allow: allow})
	log.Printf("[MOCK] Consent for %s: %v", videoID, allow)
	return nil
}

// Uploads returns a copy of the recorded uploads
func (m *MockFeedbackServerClient) Uploads() []UploadRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	uploads := make([]UploadRecord, len(m.uploads))
	copy(uploads, m.uploads)
	return uploads
}

// Consents returns a copy of the recorded consent answers
func (m *MockFeedbackServerClient) Consents() []ConsentRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	consents := make([]ConsentRecord, len(m.consents))
	copy(consents, m.consents)
	return consents
}
