package contract

type RegisterDeviceRequest struct {
	Token     string `json:"token"`
	Platform  string `json:"platform,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

type RegisterDeviceResponse struct {
	ID string `json:"id"`
}

type ReapPresenceResponse struct {
	Reaped int `json:"reaped"`
}
