package notify

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Status drives the toast colour
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusWarning Status = "warning"
	StatusInfo    Status = "info"
)

// Default display durations
const (
	ErrorDuration   = 3 * time.Second
	DefaultDuration = 2 * time.Second
)

// MaxFlashAge drops notifications that were never rendered
const MaxFlashAge = 30 * time.Second

// Notification is a transient, dismissible toast message
type Notification struct {
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      Status        `json:"status"`
	Duration    time.Duration `json:"duration"`
	Closable    bool          `json:"closable"`
	CreatedAt   time.Time     `json:"created_at"`
}

// DurationMillis is used by the page script to auto-dismiss the toast
func (n Notification) DurationMillis() int64 {
	return n.Duration.Milliseconds()
}

// Expired reports whether the notification is too old to show
func (n Notification) Expired(now time.Time) bool {
	return now.Sub(n.CreatedAt) > MaxFlashAge+n.Duration
}

// Builder provides basic notification creation
type Builder interface {
	Success(title, description string) Notification
	Error(title, description string) Notification
	Info(title, description string) Notification
	Warning(title, description string) Notification
}

// CatalogBuilder adds the catalog's fixed messages
type CatalogBuilder interface {
	Builder
	FetchFailed() Notification
	FavoriteAdded(name string) Notification
	FavoriteRemoved(name string) Notification
	FavoritesReset() Notification
	DetailFailed() Notification
}

// Notifications implements CatalogBuilder
type Notifications struct {
	now func() time.Time
}

// NewBuilder creates a new Notifications instance
func NewBuilder() CatalogBuilder {
	return &Notifications{now: time.Now}
}

func (b *Notifications) build(status Status, title, description string, d time.Duration) Notification {
	return Notification{
		Title:       title,
		Description: description,
		Status:      status,
		Duration:    d,
		Closable:    true,
		CreatedAt:   b.now(),
	}
}

// Success creates a success notification
func (b *Notifications) Success(title, description string) Notification {
	return b.build(StatusSuccess, title, description, DefaultDuration)
}

// Error creates an error notification
func (b *Notifications) Error(title, description string) Notification {
	return b.build(StatusError, title, description, ErrorDuration)
}

// Info creates an info notification
func (b *Notifications) Info(title, description string) Notification {
	return b.build(StatusInfo, title, description, DefaultDuration)
}

// Warning creates a warning notification
func (b *Notifications) Warning(title, description string) Notification {
	return b.build(StatusWarning, title, description, DefaultDuration)
}

// FetchFailed is shown when the character listing could not be loaded
func (b *Notifications) FetchFailed() Notification {
	return b.Error("Error fetching characters", "")
}

func (b *Notifications) FavoriteAdded(name string) Notification {
	return b.Success("Added to favorites", name)
}

func (b *Notifications) FavoriteRemoved(name string) Notification {
	return b.Warning("Removed from favorites", name)
}

// FavoritesReset is shown when stored favorites could not be read
func (b *Notifications) FavoritesReset() Notification {
	return b.Warning("Favorites could not be read", "Your saved favorites were reset.")
}

// DetailFailed carries a fixed description; the cause is only logged
func (b *Notifications) DetailFailed() Notification {
	return b.Error("Error fetching character", "The character could not be loaded. Try again.")
}

var globalBuilder = NewBuilder()

// Default returns the shared builder
func Default() CatalogBuilder {
	return globalBuilder
}

// Encode serializes notifications for a flash cookie value
func Encode(list []Notification) (string, error) {
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("notify: encode: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode parses a flash cookie value and drops expired notifications
func Decode(value string, now time.Time) ([]Notification, error) {
	if value == "" {
		return []Notification{}, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("notify: decode: %w", err)
	}
	var list []Notification
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("notify: decode: %w", err)
	}
	active := make([]Notification, 0, len(list))
	for _, n := range list {
		if n.Title == "" || n.Expired(now) {
			continue
		}
		active = append(active, n)
	}
	return active, nil
}
