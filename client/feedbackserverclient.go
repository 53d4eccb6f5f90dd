package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"time"
)

const (
	uploadFieldName = "feedback_video"
	uploadFileName  = "compressed_video.mp4"
	uploadMimeType  = "video/mp4"
	uploadPath      = "/api/save-feedback-video"
	consentPathTmpl = "/api/social-media-permission/%s"
	consentAllowYes = "yes"
	consentAllowNo  = "no"
)

// FeedbackServerClient handles communication with the feedback backend
type FeedbackServerClient interface {
	// UploadVideo sends a delivery-ready video as a multipart submission
	UploadVideo(ctx context.Context, request UploadVideoRequest) (*UploadVideoResponse, error)

	// SubmitConsent records the social-media sharing answer for an uploaded video
	SubmitConsent(ctx context.Context, videoID string, allow bool) error
}

// feedbackServerClient implements FeedbackServerClient using HTTP
type feedbackServerClient struct {
	serverURL  string
	httpClient *http.Client
}

// NewFeedbackServerClient creates a new HTTP client service
func NewFeedbackServerClient(serverURL string, timeout time.Duration) FeedbackServerClient {
	return &feedbackServerClient{
		serverURL: serverURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// UploadVideo uploads a compressed video to the backend
func (s *feedbackServerClient) UploadVideo(ctx context.Context, request UploadVideoRequest) (*UploadVideoResponse, error) {
	url := s.serverURL + uploadPath

	videoData, err := os.ReadFile(request.FilePath)
	if err != nil {
		return nil, NewNonRecoverableUploadError(fmt.Errorf("failed to read video file: %w", err))
	}

	// Create multipart form with the single fixed file field
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadFieldName, uploadFileName))
	header.Set("Content-Type", uploadMimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, NewNonRecoverableUploadError(fmt.Errorf("failed to create form file: %w", err))
	}
	if _, err := part.Write(videoData); err != nil {
		return nil, NewNonRecoverableUploadError(fmt.Errorf("failed to write video data: %w", err))
	}
	if err := writer.Close(); err != nil {
		return nil, NewNonRecoverableUploadError(fmt.Errorf("failed to close writer: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, &buf)
	if err != nil {
		return nil, NewNonRecoverableUploadError(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// Network errors are worth retrying later
		return nil, NewRecoverableUploadError(fmt.Errorf("failed to make request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		inner := fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, NewRecoverableUploadError(inner)
		}
		return nil, NewNonRecoverableUploadError(inner)
	}

	// The body is JSON; an empty or unexpected body still counts as success,
	// just without a video ID for the consent call.
	var uploadResp UploadVideoResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil && err != io.EOF {
		return &UploadVideoResponse{}, nil
	}

	return &uploadResp, nil
}

// SubmitConsent posts the social-media sharing answer for a stored video
func (s *feedbackServerClient) SubmitConsent(ctx context.Context, videoID string, allow bool) error {
	url := s.serverURL + fmt.Sprintf(consentPathTmpl, videoID)

	permission := consentAllowNo
	if allow {
		permission = consentAllowYes
	}

	payload, err := json.Marshal(ConsentRequest{SocialMediaPermission: permission})
	if err != nil {
		return fmt.Errorf("failed to marshal consent payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
