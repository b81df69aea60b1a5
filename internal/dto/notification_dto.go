package dto

const (
	DefaultNotificationTitle = "Test Notification"
	DefaultNotificationBody  = "This is a test notification!"

	DeliveryResultSent   = "sent"
	DeliveryResultFailed = "failed"
	DeliveryResultError  = "error"
)

type SendNotificationRequest struct {
	Title string                 `json:"title" validate:"max=200"`
	Body  string                 `json:"body" validate:"max=2000"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// WithDefaults fills the test title and body when the caller sent none.
func (r *SendNotificationRequest) WithDefaults() *SendNotificationRequest {
	out := SendNotificationRequest{}
	if r != nil {
		out = *r
	}
	if out.Title == "" {
		out.Title = DefaultNotificationTitle
	}
	if out.Body == "" {
		out.Body = DefaultNotificationBody
	}
	return &out
}

type NotificationResult struct {
	UserId    string `json:"user_id"`
	ExpoToken string `json:"expo_token"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

type SendNotificationResponse struct {
	Success     bool                 `json:"success"`
	TotalTokens int                  `json:"total_tokens"`
	Sent        int                  `json:"sent"`
	Failed      int                  `json:"failed"`
	Results     []NotificationResult `json:"results"`
}

type SendTestNotificationResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	TotalTokens int    `json:"total_tokens"`
	Sent        int    `json:"sent"`
	Failed      int    `json:"failed"`
}

type SendToUserResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Result  NotificationResult `json:"result"`
}
