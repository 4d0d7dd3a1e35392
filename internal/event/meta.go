package event

import (
	"fmt"

	"dorebell/internal/domain"
	"dorebell/internal/privacy"
)

const metaActionSource = "website"

var metaEventNames = map[Action]string{
	ActionViewContent:          "ViewContent",
	ActionAddToCart:            "AddToCart",
	ActionInitiateCheckout:     "InitiateCheckout",
	ActionPurchase:             "Purchase",
	ActionLead:                 "Lead",
	ActionContact:              "Contact",
	ActionSearch:               "Search",
	ActionCompleteRegistration: "CompleteRegistration",
	ActionAddToWishlist:        "AddToWishlist",
}

// MetaRequest is the body of a Conversions API events call.
type MetaRequest struct {
	Data          []MetaEvent `json:"data"`
	TestEventCode string      `json:"test_event_code,omitempty"`
}

type MetaEvent struct {
	EventName      string         `json:"event_name"`
	EventTime      int64          `json:"event_time"`
	EventID        string         `json:"event_id"`
	EventSourceURL string         `json:"event_source_url,omitempty"`
	ActionSource   string         `json:"action_source"`
	UserData       MetaUserData   `json:"user_data"`
	CustomData     MetaCustomData `json:"custom_data"`
}

type MetaUserData struct {
	Em              []string `json:"em,omitempty"`
	Ph              []string `json:"ph,omitempty"`
	ExternalID      []string `json:"external_id,omitempty"`
	ClientIPAddress string   `json:"client_ip_address,omitempty"`
	ClientUserAgent string   `json:"client_user_agent,omitempty"`
}

type MetaCustomData struct {
	Value        *domain.Money `json:"value,omitempty"`
	Currency     string        `json:"currency,omitempty"`
	ContentIDs   []string      `json:"content_ids,omitempty"`
	ContentType  string        `json:"content_type,omitempty"`
	ContentName  string        `json:"content_name,omitempty"`
	SearchString string        `json:"search_string,omitempty"`
	NumItems     int           `json:"num_items,omitempty"`
}

func MetaEventName(a Action) (string, bool) {
	name, ok := metaEventNames[a]
	return name, ok
}

func NewMetaEvent(c Conversion) (MetaEvent, error) {
	name, ok := MetaEventName(c.Action)
	if !ok {
		return MetaEvent{}, fmt.Errorf("meta %s: %w", c.Action, ErrUnsupportedAction)
	}

	var contentIDs []string
	if c.ContentID != "" {
		contentIDs = []string{c.ContentID}
	}

	return MetaEvent{
		EventName:      name,
		EventTime:      c.Time.Unix(),
		EventID:        c.EventID,
		EventSourceURL: c.Client.URL,
		ActionSource:   metaActionSource,
		UserData: MetaUserData{
			Em:              single(privacy.HashEmail(c.User.Email)),
			Ph:              single(privacy.HashPhone(c.User.Phone)),
			ExternalID:      single(privacy.HashExternalID(c.User.ExternalID)),
			ClientIPAddress: c.Client.IP,
			ClientUserAgent: c.Client.UserAgent,
		},
		CustomData: MetaCustomData{
			Value:        c.Value,
			Currency:     c.Currency,
			ContentIDs:   contentIDs,
			ContentType:  c.ContentType,
			ContentName:  c.ContentName,
			SearchString: c.SearchString,
			NumItems:     c.NumItems,
		},
	}, nil
}

// NewMetaRequest wraps one conversion in a request body. testCode routes
// the event to the Events Manager test tab when set.
func NewMetaRequest(c Conversion, testCode string) (MetaRequest, error) {
	evt, err := NewMetaEvent(c)
	if err != nil {
		return MetaRequest{}, err
	}
	return MetaRequest{Data: []MetaEvent{evt}, TestEventCode: testCode}, nil
}

func single(digest string) []string {
	if digest == "" {
		return nil
	}
	return []string{digest}
}
