package telegram

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// chatQueues runs work for one chat at a time, in the order it was queued.
// Different chats run concurrently.
type chatQueues struct {
	mu    sync.Mutex
	chats map[int64][]func()
}

// run queues fn for chatID. The first job queued for an idle chat starts a
// goroutine that drains the chat's queue.
func (q *chatQueues) run(chatID int64, fn func()) {
	q.mu.Lock()
	if q.chats == nil {
		q.chats = make(map[int64][]func())
	}
	pending, busy := q.chats[chatID]
	q.chats[chatID] = append(pending, fn)
	q.mu.Unlock()

	if !busy {
		go q.drain(chatID)
	}
}

func (q *chatQueues) drain(chatID int64) {
	for {
		q.mu.Lock()
		pending := q.chats[chatID]
		if len(pending) == 0 {
			delete(q.chats, chatID)
			q.mu.Unlock()
			return
		}
		fn := pending[0]
		q.chats[chatID] = pending[1:]
		q.mu.Unlock()

		fn()
	}
}

// busy is the number of chats with queued or running work.
func (q *chatQueues) busy() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.chats)
}

// updateChatID returns the chat an update belongs to.
func updateChatID(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID, true
	}
	return 0, false
}
