package handler

// sendMessageRequest carries a new message. Image, when present, is a
// base64 data URL.
type sendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}
