package models

import "time"

type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusProcessing RequestStatus = "processing"
	StatusHeld       RequestStatus = "held"
	StatusProcessed  RequestStatus = "processed"
	StatusDeleted    RequestStatus = "deleted"
)

// Request is a single listener song request.
type Request struct {
	ID            string        `json:"id"`
	TrackGuid     string        `json:"trackGuid"`
	RequestedBy   string        `json:"requestedBy"`
	Message       string        `json:"message,omitempty"`
	IPAddress     string        `json:"ipAddress,omitempty"`
	RequestedAt   time.Time     `json:"requestedAt"`
	ProcessedAt   *time.Time    `json:"processedAt,omitempty"`
	Status        RequestStatus `json:"status"`
	AutoProcessAt time.Time     `json:"autoProcessAt"`
	HoldExpiresAt *time.Time    `json:"holdExpiresAt,omitempty"`
}

// RequestBuckets groups requests the way the admin page consumes them.
type RequestBuckets struct {
	Pending    []Request `json:"pending"`
	Held       []Request `json:"held"`
	Processing []Request `json:"processing"`
	Processed  []Request `json:"processed"`
}
