package dto

// UserData carries optional raw identifiers sent by the page; they are
// hashed before leaving the service.
type UserData struct {
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}

type ButtonClickRequest struct {
	ButtonText  string    `json:"button_text"`
	ContentID   string    `json:"content_id,omitempty"`
	ContentName string    `json:"content_name,omitempty"`
	UserData    *UserData `json:"user_data,omitempty"`
}

type SearchRequest struct {
	SearchString string    `json:"search_string"`
	ContentID    string    `json:"content_id,omitempty"`
	ContentName  string    `json:"content_name,omitempty"`
	UserData     *UserData `json:"user_data,omitempty"`
}

type TrackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Tracked bool   `json:"tracked"`
}
