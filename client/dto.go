package client

import "time"

// UploadVideoRequest describes one delivery-ready video to upload
type UploadVideoRequest struct {
	FilePath           string
	MimeType           string
	Duration           time.Duration
	RecordingTimestamp time.Time
}

// UploadVideoResponse is the backend's answer to a successful upload. The
// video ID keys the follow-up consent call; it may be empty when the backend
// omits it.
type UploadVideoResponse struct {
	VideoID string `json:"video_id"`
	Message string `json:"message"`
}

// ConsentRequest is the JSON body of the social-media-permission call
type ConsentRequest struct {
	SocialMediaPermission string `json:"social_media_permission"`
}
