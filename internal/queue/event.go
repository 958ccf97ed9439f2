// Package queue defines message payloads exchanged over the message broker.
package queue

// NotificationEvent is published whenever the engine decides an outcome
// asynchronously, after the user's request already returned: a lottery
// draw resolved, or a waitlist entry was promoted into a freed spot.
// It carries enough information for downstream consumers to log or
// deliver the message without querying the primary database.
type NotificationEvent struct {
    UserID      uint64 `json:"user_id"`
    DisplayName string `json:"display_name"`
    Date        string `json:"date"` // civil date, YYYY-MM-DD
    Kind        string `json:"kind"` // CONFIRMED, WAITLISTED, ...
    Spot        string `json:"spot,omitempty"`
    Position    int    `json:"position,omitempty"`
    Reason      string `json:"reason,omitempty"`
    Text        string `json:"text"`
    SentAt      string `json:"sent_at"`
}
