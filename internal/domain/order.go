package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	OrderStatusPending = "pending"

	PaymentCashOnDelivery = "cash_on_delivery"

	SourceWebsite = "website"
)

type Address struct {
	City    string `json:"city"`
	Area    string `json:"area"`
	Details string `json:"details"`
}

type Customer struct {
	FullName       string  `json:"fullName"`
	PhoneNumber    string  `json:"phoneNumber"`
	WhatsappNumber string  `json:"whatsappNumber"`
	Address        Address `json:"address"`
}

type OrderProduct struct {
	Name       string `json:"name"`
	UnitPrice  Money  `json:"unitPrice"`
	Quantity   int    `json:"quantity"`
	TotalPrice Money  `json:"totalPrice"`
}

// Order is a cash-on-delivery order as accepted from the storefront.
// It lives for the duration of one request.
type Order struct {
	ID            string       `json:"id"`
	Timestamp     time.Time    `json:"timestamp"`
	Customer      Customer     `json:"customer"`
	Product       OrderProduct `json:"product"`
	PaymentMethod string       `json:"paymentMethod"`
	Notes         string       `json:"notes"`
	Status        string       `json:"status"`
	Source        string       `json:"source"`
	IP            string       `json:"ip"`
}

func NewOrder(now time.Time, customer Customer, productName string, unitPrice Money, quantity int) *Order {
	return &Order{
		ID:        NewRecordID("ORDER", now),
		Timestamp: now,
		Customer:  customer,
		Product: OrderProduct{
			Name:       productName,
			UnitPrice:  unitPrice,
			Quantity:   quantity,
			TotalPrice: unitPrice.Mul(quantity),
		},
		PaymentMethod: PaymentCashOnDelivery,
		Status:        OrderStatusPending,
		Source:        SourceWebsite,
	}
}

// NewRecordID builds "<PREFIX>_<unix ms>_<9 char random suffix>".
func NewRecordID(prefix string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s_%d_%s", prefix, now.UnixMilli(), suffix)
}
