package domain

import "time"

// MemberStatus represents the membership tier of a user.
type MemberStatus string

const (
	MemberStatusNonMember MemberStatus = "nonmember"
	MemberStatusMember    MemberStatus = "member"
)

// User is the domain model for registered accounts. PasswordHash is always a
// bcrypt digest; the plaintext password never leaves the registration flow.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Username     string
	PasswordHash string
	MemberStatus MemberStatus
	Admin        bool
	CreatedAt    time.Time
}

// FullName returns the display name used in the feed.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsMember reports whether the user has passed the upgrade gate.
func (u *User) IsMember() bool {
	return u.MemberStatus == MemberStatusMember
}
