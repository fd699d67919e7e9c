package domain

import "fmt"

// Status is the reading status of a Book. It is a closed enumeration;
// unknown values are rejected by ParseStatus.
type Status string

// Valid statuses. Only the new → viewed transition happens
// automatically (as a search side effect); every other transition is
// operator-driven.
const (
	// StatusNew marks a book that has been indexed but never shown.
	StatusNew Status = "new"

	// StatusViewed marks a book that has appeared in search results.
	StatusViewed Status = "viewed"

	// StatusInterested marks a book the operator wants to read.
	StatusInterested Status = "interested"

	// StatusReading marks a book currently being read.
	StatusReading Status = "reading"

	// StatusFinished marks a completed book.
	StatusFinished Status = "finished"

	// StatusDropped marks a book abandoned mid-read.
	StatusDropped Status = "dropped"

	// StatusDeleted marks a soft-deleted book. Deleted books never
	// appear in search results regardless of vector similarity.
	StatusDeleted Status = "deleted"
)

// AllStatuses lists every valid status in display order.
var AllStatuses = []Status{
	StatusNew,
	StatusViewed,
	StatusInterested,
	StatusReading,
	StatusFinished,
	StatusDropped,
	StatusDeleted,
}

// ParseStatus validates a status string against the closed enumeration.
func ParseStatus(s string) (Status, error) {
	for _, status := range AllStatuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
}

// Valid reports whether the status is a member of the enumeration.
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// String returns the status as its wire representation.
func (s Status) String() string {
	return string(s)
}
