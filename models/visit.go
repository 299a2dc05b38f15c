package models

import "time"

// VisitDateLayout is the wire format for booking dates.
const VisitDateLayout = "2006-01-02"

// VisitLogEntry is one committed visit. The log is append-only; entries for a
// client form a gapless 1..k prefix of visit numbers. Manual entries carry
// visit number 0 and record the acting admin instead of a client identity.
type VisitLogEntry struct {
	ID          string    `bson:"id" json:"id"`
	ClientID    string    `bson:"clientId" json:"clientId"`
	VisitNumber int       `bson:"visitNumber" json:"visitNumber"`
	Date        string    `bson:"date" json:"date"`
	Period      string    `bson:"period" json:"period"`
	Children    int       `bson:"children,omitempty" json:"children,omitempty"`
	Manual      bool      `bson:"manual,omitempty" json:"manual,omitempty"`
	BookedBy    string    `bson:"bookedBy,omitempty" json:"bookedBy,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// PeriodStatus is the advisory availability snapshot for one period on one
// day. It does not reserve anything; a booking may still fail with a full
// period after this was rendered.
type PeriodStatus struct {
	Period    string `json:"period"`
	Booked    int    `json:"booked"`
	Available int    `json:"available"`
	Elapsed   bool   `json:"elapsed"`
}
