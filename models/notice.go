package models

// Notice levels mirror the storefront toast kinds
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
	NoticeInfo    = "info"
	NoticeWarning = "warning"
)

// Notice is a user-facing notification attached to a response
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}
