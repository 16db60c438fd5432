package models

import (
	"encoding/json"
	"time"
)

// Venue is where an event takes place
type Venue struct {
	Name        string       `json:"name"`
	Address     string       `json:"address,omitempty"`
	City        string       `json:"city,omitempty"`
	State       string       `json:"state,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Coordinates of a venue
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Organizer of an event
type Organizer struct {
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
}

// TicketInfo describes admission
type TicketInfo struct {
	IsFree     bool    `json:"isFree"`
	Price      float64 `json:"price,omitempty"`
	BookingURL string  `json:"bookingUrl,omitempty"`
	Seats      int     `json:"availableSeats,omitempty"`
}

// Event is a calendar entry
type Event struct {
	ID                  string          `json:"_id"`
	Title               string          `json:"title"`
	Slug                string          `json:"slug"`
	Description         string          `json:"description,omitempty"`
	DetailedDescription json.RawMessage `json:"detailedDescription,omitempty"`
	Image               *Image          `json:"image,omitempty"`
	Category            string          `json:"category,omitempty"`
	Venue               *Venue          `json:"venue,omitempty"`
	Organizer           *Organizer      `json:"organizer,omitempty"`
	Ticket              *TicketInfo     `json:"ticketInfo,omitempty"`
	StartDate           time.Time       `json:"startDate"`
	EndDate             *time.Time      `json:"endDate,omitempty"`
	Priority            int             `json:"priority,omitempty"`
	Featured            bool            `json:"isFeatured,omitempty"`
}

// MultiDay reports whether the event ends on a later calendar day than it starts
func (e Event) MultiDay() bool {
	if e.EndDate == nil {
		return false
	}
	sy, sm, sd := e.StartDate.Date()
	ey, em, ed := e.EndDate.Date()
	return sy != ey || sm != em || sd != ed
}
