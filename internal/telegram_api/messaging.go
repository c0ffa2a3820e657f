package telegram_api

import (
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
)

// SendOrEditMessage пытается отредактировать существующее сообщение или
// отправляет новое. Возвращает ID актуального сообщения.
// "message is not modified" не считается ошибкой.
func SendOrEditMessage(
	botClient *BotClient,
	chatID int64,
	messageIDToTryEdit int,
	text string,
	keyboard *tgbotapi.InlineKeyboardMarkup,
) (int, error) {
	if botClient == nil || botClient.api == nil {
		return 0, fmt.Errorf("BotClient не инициализирован")
	}

	if messageIDToTryEdit != 0 {
		var editMsgConfig tgbotapi.EditMessageTextConfig
		if keyboard != nil {
			editMsgConfig = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageIDToTryEdit, text, *keyboard)
		} else {
			editMsgConfig = tgbotapi.NewEditMessageText(chatID, messageIDToTryEdit, text)
		}

		_, err := botClient.Request(editMsgConfig)
		if err == nil {
			return messageIDToTryEdit, nil
		}
		if strings.Contains(err.Error(), "message is not modified") {
			return messageIDToTryEdit, nil
		}
		// Сообщение могло быть удалено — отправляем новое.
		log.Printf("SendOrEditMessage: Ошибка редактирования сообщения chatID=%d, MessageID=%d: %v. Будет отправлено новое.", chatID, messageIDToTryEdit, err)
	}

	newMsg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		newMsg.ReplyMarkup = *keyboard
	}
	sent, err := botClient.Send(newMsg)
	if err != nil {
		return 0, fmt.Errorf("ошибка отправки сообщения chatID=%d: %w", chatID, err)
	}
	return sent.MessageID, nil
}

// SendMessage отправляет простое текстовое сообщение.
func SendMessage(botClient *BotClient, chatID int64, text string) {
	if _, err := botClient.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("SendMessage: Ошибка отправки сообщения chatID=%d: %v", chatID, err)
	}
}

// AnswerCallback отвечает на callback query, чтобы убрать «часики» у кнопки.
func AnswerCallback(botClient *BotClient, queryID, text string) {
	callbackAns := tgbotapi.NewCallback(queryID, text)
	if _, err := botClient.Request(callbackAns); err != nil {
		log.Printf("AnswerCallback: Ошибка ответа на CallbackQuery ID %s: %v", queryID, err)
	}
}

// RelayPhoto пересылает фото по FileID в другой чат с подписью.
func RelayPhoto(botClient *BotClient, chatID int64, fileID, caption string) error {
	photoMsg := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	photoMsg.Caption = caption
	if _, err := botClient.Send(photoMsg); err != nil {
		return fmt.Errorf("ошибка пересылки фото в чат %d: %w", chatID, err)
	}
	return nil
}

// SendDocumentBytes отправляет документ из памяти (например, xlsx-итог).
func SendDocumentBytes(botClient *BotClient, chatID int64, fileName string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: fileName, Bytes: data})
	doc.Caption = caption
	if _, err := botClient.Send(doc); err != nil {
		return fmt.Errorf("ошибка отправки документа в чат %d: %w", chatID, err)
	}
	return nil
}
