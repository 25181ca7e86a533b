// Package models holds the wire payloads and database records.
package models

import (
	"encoding/json"
	"time"
)

// FindGameRequest asks for a quick match.
type FindGameRequest struct {
	Nickname string `json:"nickname"`
}

// JoinRoomRequest creates or joins a private room by code.
type JoinRoomRequest struct {
	RoomID   string `json:"roomId"`
	Nickname string `json:"nickname"`
}

// RejoinRequest reclaims a seat during the grace period.
type RejoinRequest struct {
	RoomID   string `json:"roomId"`
	Nickname string `json:"nickname"`
}

// GameStart tells each player who they face and which seat is theirs. Also
// the payload of a successful rejoin.
type GameStart struct {
	RoomID  string   `json:"roomId"`
	Players []string `json:"players"`
	MyIndex int      `json:"myIndex"`
}

// Move is one scoresheet write, relayed verbatim to the opponent. Row and
// column index the sender's sheet; points is the value they scored.
type Move struct {
	RoomID string `json:"roomId"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Points int    `json:"points"`
}

// GameAction carries everything that is not a write: dice rolls, holds,
// announcements, undo. The relay does not interpret Data.
type GameAction struct {
	RoomID string          `json:"roomId"`
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// ChatMessage is an in-game chat line.
type ChatMessage struct {
	RoomID string `json:"roomId"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// ScoreSubmission reports a finished game's total for the leaderboard.
type ScoreSubmission struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// ScoreEntry is one leaderboard row.
type ScoreEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// OpponentNotice names the player who left or came back.
type OpponentNotice struct {
	Nickname string `json:"nickname"`
}

// ErrorMessage is sent on any rejected request.
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MatchPlayer is one side of a finished match.
type MatchPlayer struct {
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Outcome string `json:"outcome"` // win/lose/draw
}

// MatchRecord is stored when a room's game finishes.
type MatchRecord struct {
	RoomID    string        `json:"room_id"`
	Players   []MatchPlayer `json:"players"`
	CreatedAt time.Time     `json:"created_at"`
}
