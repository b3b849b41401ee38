package telegram

import (
	"fmt"
	"log"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var adminChatID string = os.Getenv("TG_OPS_CHAT_ID")

func EscapeMessage(message string) string {
	r := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return r.Replace(message)
}

// NotifyOps pushes an alert to the ops chat. Failures here only get logged,
// alerting must never take a worker down.
func NotifyOps(message string) {
	if adminChatID == "" {
		log.Println("TG_OPS_CHAT_ID not set, skipping ops alert:", message)
		return
	}
	bot, err := tgbotapi.NewBotAPI(os.Getenv("TG_TOKEN"))
	if err != nil {
		log.Println("Error tg bot init", err)
		return
	}

	var chatID int64
	if _, err := fmt.Sscan(adminChatID, &chatID); err != nil {
		log.Println("Invalid TG_OPS_CHAT_ID", adminChatID, err)
		return
	}
	msg := tgbotapi.NewMessage(chatID, EscapeMessage(message))
	msg.ParseMode = "markdown"
	if _, err := bot.Send(msg); err != nil {
		log.Println("Error sending ops alert", err)
	}
}
