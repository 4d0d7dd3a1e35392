package event

import (
	"fmt"

	"dorebell/internal/domain"
	"dorebell/internal/privacy"
)

var tiktokEventNames = map[Action]string{
	ActionViewContent:          "ViewContent",
	ActionAddToCart:            "AddToCart",
	ActionInitiateCheckout:     "InitiateCheckout",
	ActionPlaceAnOrder:         "PlaceAnOrder",
	ActionPurchase:             "CompletePayment",
	ActionLead:                 "SubmitForm",
	ActionContact:              "Contact",
	ActionSearch:               "Search",
	ActionClickButton:          "ClickButton",
	ActionCompleteRegistration: "CompleteRegistration",
	ActionAddToWishlist:        "AddToWishlist",
}

type TikTokEvent struct {
	PixelCode  string           `json:"pixel_code"`
	Event      string           `json:"event"`
	EventID    string           `json:"event_id"`
	Timestamp  int64            `json:"timestamp"`
	Properties TikTokProperties `json:"properties"`
	Context    TikTokContext    `json:"context"`
}

type TikTokProperties struct {
	Value        *domain.Money `json:"value,omitempty"`
	Currency     string        `json:"currency,omitempty"`
	ContentID    string        `json:"content_id,omitempty"`
	ContentType  string        `json:"content_type,omitempty"`
	ContentName  string        `json:"content_name,omitempty"`
	SearchString string        `json:"search_string,omitempty"`
	ButtonText   string        `json:"button_text,omitempty"`
	Description  string        `json:"description,omitempty"`
}

type TikTokContext struct {
	UserAgent string      `json:"user_agent"`
	IP        string      `json:"ip"`
	URL       string      `json:"url"`
	User      *TikTokUser `json:"user,omitempty"`
}

// TikTokUser carries SHA-256 digests only.
type TikTokUser struct {
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}

func TikTokEventName(a Action) (string, bool) {
	name, ok := tiktokEventNames[a]
	return name, ok
}

func NewTikTokEvent(c Conversion, pixelCode string) (TikTokEvent, error) {
	name, ok := TikTokEventName(c.Action)
	if !ok {
		return TikTokEvent{}, fmt.Errorf("tiktok %s: %w", c.Action, ErrUnsupportedAction)
	}

	return TikTokEvent{
		PixelCode: pixelCode,
		Event:     name,
		EventID:   c.EventID,
		Timestamp: c.Time.Unix(),
		Properties: TikTokProperties{
			Value:        c.Value,
			Currency:     c.Currency,
			ContentID:    c.ContentID,
			ContentType:  c.ContentType,
			ContentName:  c.ContentName,
			SearchString: c.SearchString,
			ButtonText:   c.ButtonText,
			Description:  c.Description,
		},
		Context: TikTokContext{
			UserAgent: c.Client.UserAgent,
			IP:        c.Client.IP,
			URL:       c.Client.URL,
			User:      hashTikTokUser(c.User),
		},
	}, nil
}

func hashTikTokUser(u UserData) *TikTokUser {
	if u.IsZero() {
		return nil
	}
	user := &TikTokUser{
		Email:      privacy.HashEmail(u.Email),
		Phone:      privacy.HashPhone(u.Phone),
		ExternalID: privacy.HashExternalID(u.ExternalID),
	}
	if *user == (TikTokUser{}) {
		return nil
	}
	return user
}
