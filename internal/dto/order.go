package dto

type OrderRequest struct {
	FullName       string `json:"fullName"`
	PhoneNumber    string `json:"phoneNumber"`
	WhatsappNumber string `json:"whatsappNumber"`
	City           string `json:"city"`
	Area           string `json:"area"`
	Address        string `json:"address"`
	Quantity       int    `json:"quantity"`
	ProductName    string `json:"productName"`
	Price          string `json:"price"`
	Notes          string `json:"notes,omitempty"`
	Timestamp      string `json:"timestamp"`
	Honeypot       string `json:"honeypot,omitempty"`
}

type OrderResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	OrderID           string `json:"orderId"`
	EstimatedDelivery string `json:"estimatedDelivery"`
}
