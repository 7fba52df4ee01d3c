package models

import "time"

type MessageSender string

const (
	SenderUser      MessageSender = "user"
	SenderAssistant MessageSender = "ai"
)

type ChatMessage struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Sender    MessageSender `json:"sender"`
	CreatedAt time.Time     `json:"created_at"`
}

// ChatDocument is a library document as seen from the chat sidebar.
type ChatDocument struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Type   string `json:"type"`
	Active bool   `json:"active"`
}
