package accounts

import "time"

// Domain is a hosted mail domain.
type Domain struct {
	ID        int64
	Name      string
	Package   string
	Quota     int64
	CreatedAt time.Time
}

// User is a mailbox owner within a domain.
type User struct {
	ID        int64
	DomainID  int64
	Email     string
	Name      string
	Password  string
	Quota     int64
	Enabled   bool
	CreatedAt time.Time
}

// NewUser describes a user to create. Password is the clear text password;
// it is stored as a bcrypt hash.
type NewUser struct {
	DomainID int64
	Email    string
	Name     string
	Password string
	Quota    int64
}

// Usage is the quota consumption recorded for a user.
type Usage struct {
	Email    string
	Bytes    int64
	Messages int64
}

// Forward redirects mail for Source to Destination.
type Forward struct {
	ID          int64
	DomainID    int64
	Source      string
	Destination string
}

// Vacation is a user's out of office message.
type Vacation struct {
	ID        int64
	Email     string
	Subject   string
	Body      string
	Active    bool
	CreatedAt time.Time
}

// Notification records that Notified was sent OnVacation's autoreply.
type Notification struct {
	OnVacation string
	Notified   string
	NotifiedAt time.Time
}
