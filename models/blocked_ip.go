package models

import "time"

// BlockedIP is an address barred from submitting requests.
type BlockedIP struct {
	IP      string    `json:"ip"`
	Reason  string    `json:"reason,omitempty"`
	AddedBy string    `json:"addedBy,omitempty"`
	AddedAt time.Time `json:"addedAt"`
}
