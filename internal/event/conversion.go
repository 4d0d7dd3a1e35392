package event

import (
	"errors"
	"fmt"
	"time"

	"dorebell/internal/domain"
)

// Action is a platform-neutral conversion name. Each ad platform maps it to
// its own vocabulary.
type Action string

const (
	ActionViewContent          Action = "ViewContent"
	ActionAddToCart            Action = "AddToCart"
	ActionInitiateCheckout     Action = "InitiateCheckout"
	ActionPlaceAnOrder         Action = "PlaceAnOrder"
	ActionPurchase             Action = "Purchase"
	ActionLead                 Action = "Lead"
	ActionContact              Action = "Contact"
	ActionSearch               Action = "Search"
	ActionClickButton          Action = "ClickButton"
	ActionCompleteRegistration Action = "CompleteRegistration"
	ActionAddToWishlist        Action = "AddToWishlist"
)

// ProductContentID identifies the single product in ad catalogues.
const ProductContentID = "doorbell-smart-camera"

var ErrUnsupportedAction = errors.New("action not supported by platform")

// UserData holds raw identifiers. Platform projections hash them.
type UserData struct {
	Email      string
	Phone      string
	ExternalID string
}

func (u UserData) IsZero() bool {
	return u.Email == "" && u.Phone == "" && u.ExternalID == ""
}

type Conversion struct {
	Action       Action
	EventID      string
	Time         time.Time
	Value        *domain.Money
	Currency     string
	ContentID    string
	ContentName  string
	ContentType  string
	Description  string
	SearchString string
	ButtonText   string
	NumItems     int
	User         UserData
	Client       domain.ClientInfo
}

// NewEventID returns "<prefix>_<unix ms>_<random>" for events that have no
// business record to derive an id from.
func NewEventID(prefix string, now time.Time) string {
	return domain.NewRecordID(prefix, now)
}

func PurchaseFromOrder(o *domain.Order, client domain.ClientInfo) Conversion {
	total := o.Product.TotalPrice
	return Conversion{
		Action:      ActionPurchase,
		EventID:     "purchase_" + o.ID,
		Time:        o.Timestamp,
		Value:       &total,
		Currency:    domain.Currency,
		ContentID:   ProductContentID,
		ContentName: o.Product.Name,
		ContentType: "product",
		Description: fmt.Sprintf("Purchase completed: %s", o.ID),
		NumItems:    o.Product.Quantity,
		User: UserData{
			Phone:      o.Customer.PhoneNumber,
			ExternalID: o.ID,
		},
		Client: client,
	}
}

func LeadFromContact(c *domain.Contact, client domain.ClientInfo) Conversion {
	return Conversion{
		Action:      ActionLead,
		EventID:     "lead_" + c.ID,
		Time:        c.Timestamp,
		Currency:    domain.Currency,
		ContentID:   "contact-form",
		ContentName: c.Inquiry.Subject,
		ContentType: "form",
		Description: "Form submitted - Lead generated",
		User:        contactUser(c),
		Client:      client,
	}
}

func ContactFromContact(c *domain.Contact, client domain.ClientInfo) Conversion {
	return Conversion{
		Action:      ActionContact,
		EventID:     "contact_" + c.ID,
		Time:        c.Timestamp,
		ContentID:   "contact-form",
		ContentName: "Contact Form Submission",
		ContentType: "contact",
		Description: "Contact form submitted",
		User:        contactUser(c),
		Client:      client,
	}
}

func contactUser(c *domain.Contact) UserData {
	return UserData{
		Email:      c.Customer.Email,
		Phone:      c.Customer.Phone,
		ExternalID: c.ID,
	}
}

// ConversionsFor lists the conversions an accepted record produces:
// a purchase for an order, a lead and a contact for an inquiry.
func ConversionsFor(evt domain.Event) []Conversion {
	switch {
	case evt.Order != nil:
		return []Conversion{PurchaseFromOrder(evt.Order, evt.Client)}
	case evt.Contact != nil:
		return []Conversion{
			LeadFromContact(evt.Contact, evt.Client),
			ContactFromContact(evt.Contact, evt.Client),
		}
	}
	return nil
}

// Content ids reported when the page does not name one.
const (
	DefaultButtonContentID = "website-button"
	DefaultSearchContentID = "website-search"
)

func NewSearch(now time.Time, searchString, contentID, contentName string, user UserData, client domain.ClientInfo) Conversion {
	if contentID == "" {
		contentID = DefaultSearchContentID
	}
	if contentName == "" {
		contentName = "Search: " + searchString
	}
	return Conversion{
		Action:       ActionSearch,
		EventID:      NewEventID("evt", now),
		Time:         now,
		ContentID:    contentID,
		ContentName:  contentName,
		ContentType:  "search",
		Description:  "User searched for: " + searchString,
		SearchString: searchString,
		User:         user,
		Client:       client,
	}
}

func NewButtonClick(now time.Time, buttonText, contentID, contentName string, user UserData, client domain.ClientInfo) Conversion {
	if contentID == "" {
		contentID = DefaultButtonContentID
	}
	if contentName == "" {
		contentName = "Button: " + buttonText
	}
	return Conversion{
		Action:      ActionClickButton,
		EventID:     NewEventID("evt", now),
		Time:        now,
		ContentID:   contentID,
		ContentName: contentName,
		ContentType: "button",
		Description: "Button clicked: " + buttonText,
		ButtonText:  buttonText,
		User:        user,
		Client:      client,
	}
}
