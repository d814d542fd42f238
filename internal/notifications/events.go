package notifications

import (
	"encoding/json"
	"time"

	"foodgram/internal/models"
)

// Event types pushed to websocket clients.
const (
	EventRecipePublished = "recipe_published"
	EventNewSubscriber   = "new_subscriber"
	EventRecipeFavorited = "recipe_favorited"
)

// Event is the envelope written to a user's channel and forwarded verbatim to
// their websocket connections.
type Event struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// RecipePublishedPayload announces a new recipe from a followed author.
type RecipePublishedPayload struct {
	Recipe models.RecipeShort `json:"recipe"`
	Author AuthorRef          `json:"author"`
}

// AuthorRef identifies the user who triggered an event.
type AuthorRef struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// RecipeRef identifies the recipe an event is about.
type RecipeRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// NewSubscriberPayload tells an author who started following them.
type NewSubscriberPayload struct {
	Subscriber AuthorRef `json:"subscriber"`
}

// RecipeFavoritedPayload tells an author that one of their recipes was favorited.
type RecipeFavoritedPayload struct {
	Recipe RecipeRef `json:"recipe"`
	User   AuthorRef `json:"user"`
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType string, payload any) Event {
	return Event{Type: eventType, Payload: payload, Timestamp: time.Now().UTC()}
}

// Encode returns the JSON wire form of e.
func (e Event) Encode() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
