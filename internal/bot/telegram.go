package bot

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"coinsage/internal/service"

	tele "gopkg.in/telebot.v3"
)

// StartTelegramBot exposes the chat and prediction pipeline over Telegram.
// Without a token the bot is skipped; the HTTP surface is unaffected.
func StartTelegramBot(token string, chatService *service.ChatService, predictService *service.PredictService) {
	if token == "" {
		log.Println("Telegram bot token not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Printf("failed to create Telegram bot, continuing without it: %v", err)
		return
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/news", func(c tele.Context) error {
		reply := chatService.Reply(context.Background(), sessionFor(c), "bitcoin latest news")
		return c.Send(reply)
	})

	b.Handle("/predict", func(c tele.Context) error {
		message := strings.Join(c.Args(), " ")
		if strings.TrimSpace(message) == "" {
			message = "predict bitcoin price"
		}
		reply := predictService.Reply(context.Background(), message)
		return c.Send(reply)
	})

	// Plain text goes through the same intent routing as POST /api/chat,
	// keyed by the Telegram chat id so history follows the conversation.
	b.Handle(tele.OnText, func(c tele.Context) error {
		message := strings.TrimSpace(c.Text())
		if message == "" {
			return nil
		}
		reply := chatService.Reply(context.Background(), sessionFor(c), message)
		return c.Send(reply)
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func sessionFor(c tele.Context) string {
	if chat := c.Chat(); chat != nil {
		return "tg:" + strconv.FormatInt(chat.ID, 10)
	}
	return ""
}
