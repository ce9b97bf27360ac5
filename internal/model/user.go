// Package model defines the data structures used throughout the application.
//
// Go field names are English; JSON tags keep the wire names the API has
// always exposed, which for the catalog are Spanish.
package model

// User is a registered account.
//
// PasswordHash is tagged `json:"-"` so a User can be encoded directly without
// ever leaking the digest. FullName is a pointer because the column is
// nullable and clients expect `"full_name": null` when it was never set.
type User struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	FullName     *string `json:"full_name"`
	PasswordHash string  `json:"-"`
}

// NewUser carries the fields needed to create a User. PasswordHash must
// already be a digest.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	FullName     *string
}

// UserUpdate is a partial update as clients send it. A nil field is left
// unchanged; a non-nil field is written, even when it points at "".
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string // plaintext
	FullName *string
}

// Empty reports whether u would change nothing.
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.Password == nil && u.FullName == nil
}

// UserPatch is what the repository writes: a UserUpdate whose password has
// been replaced by its digest.
type UserPatch struct {
	Username     *string
	Email        *string
	PasswordHash *string
	FullName     *string
}
