package models

import "time"

// DispatchKind identifies which form produced an email
type DispatchKind string

const (
	DispatchKindContact    DispatchKind = "contact"
	DispatchKindSubmission DispatchKind = "submission"
)

// DispatchStatus is the outcome of a single delivery attempt
type DispatchStatus string

const (
	DispatchStatusSent   DispatchStatus = "sent"
	DispatchStatusFailed DispatchStatus = "failed"
)

// DispatchRecord is one row of the delivery audit log
type DispatchRecord struct {
	ID        string         `json:"id" db:"id"`
	Kind      DispatchKind   `json:"kind" db:"kind"`
	Recipient string         `json:"recipient" db:"recipient"`
	Provider  string         `json:"provider" db:"provider"`
	Subject   string         `json:"subject" db:"subject"`
	Status    DispatchStatus `json:"status" db:"status"`
	Error     string         `json:"error,omitempty" db:"error"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}
