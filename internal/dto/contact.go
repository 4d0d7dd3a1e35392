package dto

type ContactRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email,omitempty"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
	OrderNumber string `json:"orderNumber,omitempty"`
	Timestamp   string `json:"timestamp"`
	Honeypot    string `json:"honeypot,omitempty"`
}

type ContactResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	MessageID         string `json:"messageId"`
	EstimatedResponse string `json:"estimatedResponse"`
}
