package handlers

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// notReadyReply is what the bot says when the pipeline errors; the detail
// stays in the logs, not in the chat.
const notReadyReply = "Not ready to provide gyana yet but I will be soon! Hold your \U0001F434 \U0001F434"

const answerTimeout = 2 * time.Minute

// StartTelegramBot runs the long-poll update loop. Plain messages and the
// /ask command both go through the QA pipeline; answers are sent as replies
// to the originating message.
func (h *Handlers) StartTelegramBot() {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN is not set, bot disabled")
		return
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Panic(err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	for update := range bot.GetUpdatesChan(u) {
		if update.Message == nil { // ignore any non-Message updates
			continue
		}

		if !update.Message.IsCommand() {
			h.answerTelegramMessage(bot, update.Message, update.Message.Text)
			continue
		}

		switch update.Message.Command() {
		case "ask":
			h.answerTelegramMessage(bot, update.Message, update.Message.CommandArguments())
		default:
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, "I don't know that command")
			bot.Send(msg)
		}
	}
}

func (h *Handlers) answerTelegramMessage(bot *tgbotapi.BotAPI, message *tgbotapi.Message, question string) {
	log.Printf("[%s] %s", message.From.UserName, question)

	if strings.TrimSpace(question) == "" {
		reply(bot, message, "Ask me something about the indexed videos")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), answerTimeout)
	defer cancel()

	answer, err := h.answerer.Answer(ctx, question)
	if err != nil {
		log.Printf("Error answering telegram question: %v", err)
		reply(bot, message, notReadyReply)
		return
	}

	reply(bot, message, answer)
}

func reply(bot *tgbotapi.BotAPI, message *tgbotapi.Message, text string) {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyToMessageID = message.MessageID
	if _, err := bot.Send(msg); err != nil {
		log.Printf("Error sending telegram reply: %v", err)
	}
}
