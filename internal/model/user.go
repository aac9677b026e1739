package model

import "time"

// UserAccount represents a row in the `user_accounts` table.
//
// Fields:
//  ID           – primary key identifier.
//  FirstName    – user_accounts.fname
//  LastName     – user_accounts.lname
//  Username     – unique login name (user_accounts.user_name).
//  PasswordHash – bcrypt hash (user_accounts.password).
//  Phone        – unique 10 digit mobile number (user_accounts.phno).
//  Gender       – m, f or n.
//  DOB          – date of birth.
//  Age          – age as entered at sign-up.
type UserAccount struct {
	ID           uint64
	FirstName    string
	LastName     string
	Username     string
	PasswordHash string
	Phone        string
	Gender       string
	DOB          time.Time
	Age          int
	CreatedAt    time.Time
}

// FullName joins first and last name for greetings.
func (u UserAccount) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
