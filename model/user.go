package model

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// User is the identity carried in a session token. In demo mode it is
// derived entirely from the login form.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewDemoUser derives a display name from the local part of the email.
func NewDemoUser(email string) User {
	email = strings.TrimSpace(email)
	name := email
	if at := strings.Index(email, "@"); at > 0 {
		name = email[:at]
	}
	name = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(name)
	words := strings.Fields(name)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	if len(words) == 0 {
		return User{Name: "User", Email: email}
	}
	return User{Name: strings.Join(words, " "), Email: email}
}
