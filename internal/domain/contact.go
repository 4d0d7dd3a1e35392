package domain

import "time"

const ContactStatusNew = "new"

type ContactCustomer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type Inquiry struct {
	Subject     string `json:"subject"`
	Message     string `json:"message"`
	OrderNumber string `json:"orderNumber"`
}

type Contact struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Customer  ContactCustomer `json:"customer"`
	Inquiry   Inquiry         `json:"inquiry"`
	Status    string          `json:"status"`
	Source    string          `json:"source"`
	IP        string          `json:"ip"`
}

func NewContact(now time.Time, customer ContactCustomer, inquiry Inquiry) *Contact {
	return &Contact{
		ID:        NewRecordID("CONTACT", now),
		Timestamp: now,
		Customer:  customer,
		Inquiry:   inquiry,
		Status:    ContactStatusNew,
		Source:    SourceWebsite,
	}
}

func (c *Contact) HasOrderNumber() bool {
	return c.Inquiry.OrderNumber != ""
}
