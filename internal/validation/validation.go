// Package validation checks storefront submissions before any record is built.
// Validators are pure: they only inspect their input.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"dorebell/internal/domain"
	"dorebell/internal/dto"
	apperrors "dorebell/internal/errors"
)

const (
	MaxMessageLength = 1000
	MaxQuantity      = 1000
	MaxSearchLength  = 200
	MaxButtonLength  = 200

	MsgSpamDetected = "Spam detected"
)

var egyptianMobile = regexp.MustCompile(`^01[0125][0-9]{8}$`)

// Result accumulates every problem found in a submission.
type Result struct {
	IsValid bool
	Errors  []string
	Details []apperrors.ValidationDetail
}

func (r *Result) add(field, message string) {
	r.Details = append(r.Details, apperrors.ValidationDetail{Field: field, Message: message})
	r.Errors = append(r.Errors, message)
}

func (r Result) finish() Result {
	r.IsValid = len(r.Errors) == 0
	return r
}

// Err converts an invalid result into a *ValidationError, nil otherwise.
func (r Result) Err() error {
	if r.IsValid {
		return nil
	}
	return apperrors.NewValidationError("Validation failed", r.Details...)
}

// IsSpam reports whether the result is the honeypot rejection.
func (r Result) IsSpam() bool {
	return len(r.Errors) == 1 && r.Errors[0] == MsgSpamDetected
}

func IsEgyptianMobile(phone string) bool {
	return egyptianMobile.MatchString(phone)
}

func spam() Result {
	var r Result
	r.add("honeypot", MsgSpamDetected)
	return r.finish()
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func ValidateOrder(req dto.OrderRequest) Result {
	if req.Honeypot != "" {
		return spam()
	}

	var r Result

	if blank(req.FullName) {
		r.add("fullName", "Full name is required")
	}

	if blank(req.PhoneNumber) {
		r.add("phoneNumber", "Phone number is required")
	} else if !IsEgyptianMobile(req.PhoneNumber) {
		r.add("phoneNumber", "Invalid Egyptian phone number")
	}

	if blank(req.WhatsappNumber) {
		r.add("whatsappNumber", "WhatsApp number is required")
	} else if !IsEgyptianMobile(req.WhatsappNumber) {
		r.add("whatsappNumber", "Invalid WhatsApp number")
	}

	if blank(req.City) {
		r.add("city", "City is required")
	}

	if blank(req.Area) {
		r.add("area", "Area is required")
	}

	if blank(req.Address) {
		r.add("address", "Address is required")
	}

	if req.Quantity < 1 || req.Quantity > MaxQuantity {
		r.add("quantity", "Valid quantity is required")
	}

	if blank(req.ProductName) {
		r.add("productName", "Product name is required")
	}

	if blank(req.Price) {
		r.add("price", "Price is required")
	} else if price, err := domain.ParseMoney(req.Price); err != nil || !price.IsPositive() {
		r.add("price", "Invalid price")
	}

	return r.finish()
}

func ValidateContact(req dto.ContactRequest) Result {
	if req.Honeypot != "" {
		return spam()
	}

	var r Result

	if blank(req.Name) {
		r.add("name", "Name is required")
	}

	if blank(req.Phone) {
		r.add("phone", "Phone number is required")
	} else if !IsEgyptianMobile(req.Phone) {
		r.add("phone", "Invalid Egyptian phone number")
	}

	if req.Email != "" && !strings.Contains(req.Email, "@") {
		r.add("email", "Invalid email format")
	}

	if blank(req.Subject) {
		r.add("subject", "Subject is required")
	}

	if blank(req.Message) {
		r.add("message", "Message is required")
	}

	if utf8.RuneCountInString(req.Message) > MaxMessageLength {
		r.add("message", "Message too long (max 1000 characters)")
	}

	return r.finish()
}

func ValidateButtonClick(req dto.ButtonClickRequest) Result {
	var r Result
	if blank(req.ButtonText) {
		r.add("button_text", "button_text is required")
	} else if utf8.RuneCountInString(req.ButtonText) > MaxButtonLength {
		r.add("button_text", "button_text is too long")
	}
	return r.finish()
}

func ValidateSearch(req dto.SearchRequest) Result {
	var r Result
	if blank(req.SearchString) {
		r.add("search_string", "search_string is required")
	} else if utf8.RuneCountInString(req.SearchString) > MaxSearchLength {
		r.add("search_string", "search_string is too long")
	}
	return r.finish()
}
