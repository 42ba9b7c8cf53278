package dto

import (
	"gopkg.in/telebot.v3"
)

type RequestUserTelegram struct {
	ID        int64  `json:"id"`
	ChatID    int64  `json:"chat_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsBot     bool   `json:"is_bot"`
}

func ToRequestUserTelegram(c telebot.Context) *RequestUserTelegram {
	req := &RequestUserTelegram{}
	if user := c.Sender(); user != nil {
		req.ID = user.ID
		req.Username = user.Username
		req.FirstName = user.FirstName
		req.LastName = user.LastName
		req.IsBot = user.IsBot
	}
	if chat := c.Chat(); chat != nil {
		req.ChatID = chat.ID
	}
	return req
}

// DisplayName prefers the first name and falls back to the username.
func (r *RequestUserTelegram) DisplayName() string {
	if r.FirstName != "" {
		return r.FirstName
	}
	if r.Username != "" {
		return "@" + r.Username
	}
	return "trader"
}
