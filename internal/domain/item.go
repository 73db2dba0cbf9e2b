package domain

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Scheduling bounds shared by every item.
const (
	// MinEaseFactor is the floor applied to every ease factor update.
	MinEaseFactor = 1.3

	// DefaultEaseFactor is the ease a never-reviewed item starts with.
	DefaultEaseFactor = 2.5

	// MinIntervalDays is the shortest interval an item can be scheduled for.
	MinIntervalDays = 1

	// NewItemGracePeriod is how long a never-reviewed item waits before it
	// becomes due for the first time.
	NewItemGracePeriod = 24 * time.Hour
)

// ItemState is the lifecycle state of a reviewable item.
type ItemState string

// Possible item states
const (
	ItemStateActive  ItemState = "active"
	ItemStateDraft   ItemState = "draft"
	ItemStateDeleted ItemState = "deleted"
)

// Item validation errors
var (
	ErrItemIDEmpty       = errors.New("item ID cannot be empty")
	ErrItemUserIDEmpty   = errors.New("item user ID cannot be empty")
	ErrInvalidItemState  = errors.New("invalid item state")
	ErrInvalidInterval   = errors.New("interval must be at least 1 day")
	ErrInvalidEaseFactor = errors.New("ease factor must be at least 1.3")
	ErrInvalidCounter    = errors.New("review and lapse counts cannot be negative")
)

// Item is a captured memory together with its spaced repetition schedule.
// Items are created by the ingestion subsystem; the scheduler only ever
// changes the schedule fields, and only through a review.
type Item struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	ImageURL string    `json:"image_url,omitempty"`
	State    ItemState `json:"state"`

	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	NextReviewAt   *time.Time `json:"next_review_at,omitempty"`
	IntervalDays   int        `json:"interval_days"`
	EaseFactor     float64    `json:"ease_factor"`
	ReviewCount    int        `json:"review_count"`
	LapseCount     int        `json:"lapse_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewItem creates an active, never-reviewed item owned by userID.
func NewItem(userID uuid.UUID, title, body string, now time.Time) (*Item, error) {
	item := &Item{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        title,
		Body:         body,
		State:        ItemStateActive,
		IntervalDays: MinIntervalDays,
		EaseFactor:   DefaultEaseFactor,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the Item has valid data.
// Returns an error if any field fails validation.
func (i *Item) Validate() error {
	if i.ID == uuid.Nil {
		return ErrItemIDEmpty
	}

	if i.UserID == uuid.Nil {
		return ErrItemUserIDEmpty
	}

	switch i.State {
	case ItemStateActive, ItemStateDraft, ItemStateDeleted:
	default:
		return ErrInvalidItemState
	}

	if i.IntervalDays < MinIntervalDays {
		return ErrInvalidInterval
	}

	if i.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}

	if i.ReviewCount < 0 || i.LapseCount < 0 {
		return ErrInvalidCounter
	}

	return nil
}

// HasImage reports whether the item carries an attached image.
func (i *Item) HasImage() bool {
	return i.ImageURL != ""
}

// ContentLength is the combined title and body length in characters.
func (i *Item) ContentLength() int {
	return utf8.RuneCountInString(i.Title) + utf8.RuneCountInString(i.Body)
}

// IsDueCandidate reports whether the item belongs in a due set at now:
// it must be active and either scheduled at or before now, or never reviewed
// and older than NewItemGracePeriod.
func (i *Item) IsDueCandidate(now time.Time) bool {
	if i.State != ItemStateActive {
		return false
	}

	if i.LastReviewedAt == nil && i.ReviewCount == 0 && !i.CreatedAt.After(now.Add(-NewItemGracePeriod)) {
		return true
	}

	return i.NextReviewAt != nil && !i.NextReviewAt.After(now)
}

// Clone returns a deep copy of the item.
func (i *Item) Clone() *Item {
	c := *i
	if i.LastReviewedAt != nil {
		t := *i.LastReviewedAt
		c.LastReviewedAt = &t
	}
	if i.NextReviewAt != nil {
		t := *i.NextReviewAt
		c.NextReviewAt = &t
	}
	return &c
}
