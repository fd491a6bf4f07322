// Package locale holds the user-facing text of the site.
package locale

import (
	"embed"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed locales/*.toml
var files embed.FS

const Default = "nl"

type LoginSection struct {
	Title              string `toml:"title"`
	Email              string `toml:"email"`
	Password           string `toml:"password"`
	RememberMe         string `toml:"remember_me"`
	Submit             string `toml:"submit"`
	InvalidEmail       string `toml:"invalid_email"`
	UnknownCredentials string `toml:"unknown_credentials"`
	AlreadyLoggedIn    string `toml:"already_logged_in"`
	GenericError       string `toml:"generic_error"`
}

type TimelineSection struct {
	Title      string `toml:"title"`
	PostCount  string `toml:"post_count"`
	NewPost    string `toml:"new_post"`
	Submit     string `toml:"submit"`
	Logout     string `toml:"logout"`
	Empty      string `toml:"empty"`
	PostFailed string `toml:"post_failed"`
}

type Locale struct {
	Name     string          `toml:"-"`
	Login    LoginSection    `toml:"login"`
	Timeline TimelineSection `toml:"timeline"`
}

// Load decodes the named catalogue. Region suffixes are ignored ("nl_NL"
// loads "nl") and unknown names fall back to Dutch.
func Load(name string) (*Locale, error) {
	name = strings.ToLower(name)
	if i := strings.IndexAny(name, "_-."); i >= 0 {
		name = name[:i]
	}

	data, err := files.ReadFile("locales/" + name + ".toml")
	if err != nil {
		name = Default
		data, err = files.ReadFile("locales/" + name + ".toml")
		if err != nil {
			return nil, fmt.Errorf("failed to load locale %s: %w", name, err)
		}
	}

	var l Locale
	if _, err := toml.Decode(string(data), &l); err != nil {
		return nil, fmt.Errorf("failed to decode locale %s: %w", name, err)
	}
	l.Name = name
	return &l, nil
}
