package models

import "time"

// InstructorStatus is the listing state of an instructor.
type InstructorStatus int

const (
	InstructorStatusPending InstructorStatus = iota
	InstructorStatusActive
	InstructorStatusDisabled
	InstructorStatusSuspended
	InstructorStatusDelisted
)

var instructorStatusNames = map[InstructorStatus]string{
	InstructorStatusPending:   "PENDING",
	InstructorStatusActive:    "ACTIVE",
	InstructorStatusDisabled:  "DISABLED",
	InstructorStatusSuspended: "SUSPENDED",
	InstructorStatusDelisted:  "DELISTED",
}

// String returns the upper-case status name.
func (s InstructorStatus) String() string {
	if name, ok := instructorStatusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Valid reports whether s is a known status code.
func (s InstructorStatus) Valid() bool {
	_, ok := instructorStatusNames[s]
	return ok
}

// Instructor is a driving instructor listed in the directory.
type Instructor struct {
	Fino           int64            `db:"fino" json:"fino"`
	Name           string           `db:"name" json:"name"`
	Gender         string           `db:"gender" json:"gender"`
	Email          string           `db:"email" json:"email"`
	Website        *string          `db:"website" json:"website,omitempty"`
	PasswordHash   string           `db:"password" json:"-"`
	PasswordLegacy *string          `db:"password_legacy" json:"-"`
	Postcodes      *string          `db:"postcodes" json:"postcodes,omitempty"`
	Lat            *float64         `db:"lat" json:"lat,omitempty"`
	Lng            *float64         `db:"lng" json:"lng,omitempty"`
	Active         bool             `db:"active" json:"active"`
	Status         InstructorStatus `db:"status" json:"status"`
	Priority       bool             `db:"priority" json:"priority"`
	PriorityStart  *time.Time       `db:"priority_start" json:"priority_start,omitempty"`
	Offer          bool             `db:"offer" json:"offer"`
	Notes          *string          `db:"notes" json:"notes,omitempty"`
	About          *string          `db:"about" json:"about,omitempty"`
	Offers         *string          `db:"offers" json:"offers,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`

	// Only populated by proximity search.
	Distance *float64 `db:"distance" json:"distance,omitempty"`

	PostcodesDisplay string        `db:"-" json:"postcodes_display"`
	FirstName        string        `db:"-" json:"first_name"`
	Testimonials     []Testimonial `db:"-" json:"testimonials"`
}

// NearbyQuery describes a haversine search around a point.
type NearbyQuery struct {
	Lat        float64
	Lng        float64
	MaxMiles   float64
	Area       string
	MatchArea  bool
	OfferFirst bool
	Limit      int
}

// AreaQuery describes a coverage-list search.
type AreaQuery struct {
	Area       string
	OfferFirst bool
	Limit      int
}

// InstructorFilter is an equality filter over instructor columns.
type InstructorFilter struct {
	Where      map[string]interface{}
	ActiveOnly bool
	Limit      int
}

// Testimonial is a customer quote attached to an instructor.
type Testimonial struct {
	ID        int64     `db:"id" json:"id"`
	Fino      int64     `db:"fino" json:"fino"`
	Content   string    `db:"testimonial" json:"testimonial"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
