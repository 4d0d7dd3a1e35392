// Package event builds the outbound payloads for accepted records: spreadsheet
// rows for the automation platform and conversion events for ad platforms.
// Builders never modify the record they read.
package event

import (
	"strings"
	"time"

	"dorebell/internal/domain"
)

const (
	currencyWordEGP = "جنيه"
	whatsappLabel   = "واتساب"
	answerYes       = "نعم"
	answerNo        = "لا"
	complaintWord   = "شكوى"

	UrgencyHigh   = "عالي"
	UrgencyNormal = "عادي"
)

// OrderRow is the flattened order the automation platform appends to the
// orders spreadsheet.
type OrderRow struct {
	OrderID             string       `json:"orderId"`
	Timestamp           time.Time    `json:"timestamp"`
	CustomerName        string       `json:"customerName"`
	CustomerPhone       string       `json:"customerPhone"`
	CustomerWhatsapp    string       `json:"customerWhatsapp"`
	CustomerCity        string       `json:"customerCity"`
	CustomerArea        string       `json:"customerArea"`
	CustomerAddress     string       `json:"customerAddress"`
	ProductName         string       `json:"productName"`
	ProductUnitPrice    domain.Money `json:"productUnitPrice"`
	ProductQuantity     int          `json:"productQuantity"`
	ProductTotalPrice   domain.Money `json:"productTotalPrice"`
	PaymentMethod       string       `json:"paymentMethod"`
	Notes               string       `json:"notes"`
	Status              string       `json:"status"`
	Source              string       `json:"source"`
	OrderDate           string       `json:"orderDate"`
	OrderTime           string       `json:"orderTime"`
	TotalPriceFormatted string       `json:"totalPriceFormatted"`
	CustomerInfo        string       `json:"customerInfo"`
	DeliveryAddress     string       `json:"deliveryAddress"`
}

func NewOrderRow(o *domain.Order, l Locale) OrderRow {
	c := o.Customer
	return OrderRow{
		OrderID:             o.ID,
		Timestamp:           o.Timestamp,
		CustomerName:        c.FullName,
		CustomerPhone:       c.PhoneNumber,
		CustomerWhatsapp:    c.WhatsappNumber,
		CustomerCity:        c.Address.City,
		CustomerArea:        c.Address.Area,
		CustomerAddress:     c.Address.Details,
		ProductName:         o.Product.Name,
		ProductUnitPrice:    o.Product.UnitPrice,
		ProductQuantity:     o.Product.Quantity,
		ProductTotalPrice:   o.Product.TotalPrice,
		PaymentMethod:       o.PaymentMethod,
		Notes:               o.Notes,
		Status:              o.Status,
		Source:              o.Source,
		OrderDate:           l.Date(o.Timestamp),
		OrderTime:           l.Time(o.Timestamp),
		TotalPriceFormatted: o.Product.TotalPrice.String() + " " + currencyWordEGP,
		CustomerInfo:        c.FullName + " - " + c.PhoneNumber + " - " + whatsappLabel + ": " + c.WhatsappNumber,
		DeliveryAddress:     c.Address.City + " - " + c.Address.Area + " - " + c.Address.Details,
	}
}

// ContactRow is the flattened inquiry for the contact spreadsheet.
type ContactRow struct {
	MessageID      string    `json:"messageId"`
	Timestamp      time.Time `json:"timestamp"`
	CustomerName   string    `json:"customerName"`
	CustomerPhone  string    `json:"customerPhone"`
	CustomerEmail  string    `json:"customerEmail"`
	Subject        string    `json:"subject"`
	Message        string    `json:"message"`
	OrderNumber    string    `json:"orderNumber"`
	Status         string    `json:"status"`
	Source         string    `json:"source"`
	ContactDate    string    `json:"contactDate"`
	ContactTime    string    `json:"contactTime"`
	CustomerInfo   string    `json:"customerInfo"`
	HasOrderNumber string    `json:"hasOrderNumber"`
	UrgencyLevel   string    `json:"urgencyLevel"`
}

func NewContactRow(c *domain.Contact, l Locale) ContactRow {
	hasOrder := answerNo
	if c.HasOrderNumber() {
		hasOrder = answerYes
	}

	return ContactRow{
		MessageID:      c.ID,
		Timestamp:      c.Timestamp,
		CustomerName:   c.Customer.Name,
		CustomerPhone:  c.Customer.Phone,
		CustomerEmail:  c.Customer.Email,
		Subject:        c.Inquiry.Subject,
		Message:        c.Inquiry.Message,
		OrderNumber:    c.Inquiry.OrderNumber,
		Status:         c.Status,
		Source:         c.Source,
		ContactDate:    l.Date(c.Timestamp),
		ContactTime:    l.Time(c.Timestamp),
		CustomerInfo:   c.Customer.Name + " - " + c.Customer.Phone,
		HasOrderNumber: hasOrder,
		UrgencyLevel:   Urgency(c.Inquiry.Subject),
	}
}

func Urgency(subject string) string {
	if strings.Contains(subject, complaintWord) {
		return UrgencyHigh
	}
	return UrgencyNormal
}

// TestPing is the payload sent by the connectivity check.
type TestPing struct {
	Test      bool      `json:"test"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

func NewTestPing(now time.Time) TestPing {
	return TestPing{
		Test:      true,
		Timestamp: now,
		Message:   "Connection test from Dorebell website",
	}
}
