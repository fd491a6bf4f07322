package auth

import (
	"strconv"
	"strings"

	"github.com/ict4events/eventsite/internal/db"
)

// User is the account snapshot carried inside the session ticket.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
	RFID     string `json:"rfid,omitempty"`

	passwordHash string
}

// userFromRecord maps a GET_USER_BY_EMAIL / AUTHENTICATE_USER row. Column
// names are matched case-insensitively since Oracle reports them upper case.
func userFromRecord(rec db.Record) *User {
	// aliases are tried in order so the first one present wins
	get := func(keys ...string) string {
		for _, key := range keys {
			if v, ok := rec[key]; ok {
				return v
			}
			for k, v := range rec {
				if strings.EqualFold(k, key) {
					return v
				}
			}
		}
		return ""
	}

	id, _ := strconv.Atoi(get("id", "user_id"))
	return &User{
		ID:           id,
		Username:     get("username", "gebruikersnaam"),
		Email:        get("email"),
		Name:         get("name", "naam"),
		Role:         get("role", "rol"),
		RFID:         get("rfid"),
		passwordHash: get("password", "wachtwoord"),
	}
}
