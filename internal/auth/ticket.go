package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrTicketInvalid = errors.New("session ticket is invalid")
	ErrTicketExpired = errors.New("session ticket has expired")
)

const ticketVersion = 1

// Ticket is the session payload stored, encrypted, in the auth cookie.
type Ticket struct {
	Version    int       `json:"v"`
	Name       string    `json:"name"`
	IssuedAt   time.Time `json:"iat"`
	Expiration time.Time `json:"exp"`
	Persistent bool      `json:"persistent"`
	// UserData is the JSON account snapshot; this package does not interpret it
	// beyond CurrentUser.
	UserData string `json:"data"`
}

func (t *Ticket) Expired(now time.Time) bool {
	return !now.Before(t.Expiration)
}

// TicketCodec seals tickets with AES-256-GCM under a key derived from the
// configured secret.
type TicketCodec struct {
	aead cipher.AEAD
	now  func() time.Time
}

func NewTicketCodec(secret string) (*TicketCodec, error) {
	if secret == "" {
		return nil, errors.New("ticket secret is empty")
	}
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &TicketCodec{aead: aead, now: time.Now}, nil
}

func (c *TicketCodec) Seal(t *Ticket) (string, error) {
	plain, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encoding ticket: %w", err)
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, plain, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a cookie value. Tampered input gives ErrTicketInvalid, an
// intact but outdated ticket gives ErrTicketExpired.
func (c *TicketCodec) Open(value string) (*Ticket, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, ErrTicketInvalid
	}
	ns := c.aead.NonceSize()
	if len(sealed) < ns {
		return nil, ErrTicketInvalid
	}
	plain, err := c.aead.Open(nil, sealed[:ns], sealed[ns:], nil)
	if err != nil {
		return nil, ErrTicketInvalid
	}

	var t Ticket
	if err := json.Unmarshal(plain, &t); err != nil || t.Version != ticketVersion {
		return nil, ErrTicketInvalid
	}
	if t.Expired(c.now()) {
		return nil, ErrTicketExpired
	}
	return &t, nil
}
