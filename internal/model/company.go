// Package model defines the data structures used throughout the application.
package model

import (
	"strings"
	"time"
)

// DateLayout is the human-readable format of Company.Date, e.g. "Oct 18 2026".
const DateLayout = "Jan 02 2006"

// Company is one job application: a company the user applied to.
//
// Date is set once when the record is created and never edited afterwards.
// CreatedAt is the ordering key for "newest first" listings and is not part
// of the wire format.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	Rejected  bool      `json:"rejected"`
	Comments  string    `json:"comments"`
	CreatedAt time.Time `json:"-"`
}

// Status is the label shown next to a record.
func (c Company) Status() string {
	if c.Rejected {
		return "Rejected"
	}
	return "Pending"
}

// Matches reports whether the company name contains query, ignoring case.
// An empty query matches everything.
func (c Company) Matches(query string) bool {
	return strings.Contains(strings.ToLower(c.Name), strings.ToLower(query))
}
