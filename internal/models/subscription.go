package models

import "encoding/json"

// Subscription is the push platform's subscription descriptor (endpoint + keys).
// dayglow never looks inside it; the bytes go to the backend as-is.
type Subscription json.RawMessage

// MarshalJSON implements json.Marshaler.
func (s Subscription) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return s, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Subscription) UnmarshalJSON(data []byte) error {
	*s = append((*s)[0:0], data...)
	return nil
}

// SubscribeRequest is the body posted to the subscribe endpoint.
type SubscribeRequest struct {
	Subscription Subscription `json:"subscription"`
	ReminderTime string       `json:"reminderTime"`
	Timezone     string       `json:"timezone"`
}
