package telegram

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatQueuesSerializeOneChat(t *testing.T) {
	var q chatQueues
	var wg sync.WaitGroup
	var running, overlap int32
	var mu sync.Mutex
	var order []int

	for i := 0; i < 20; i++ {
		wg.Add(1)
		q.run(10, func() {
			defer wg.Done()
			if atomic.AddInt32(&running, 1) > 1 {
				atomic.StoreInt32(&overlap, 1)
			}
			time.Sleep(time.Millisecond)
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			atomic.AddInt32(&running, -1)
		})
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&overlap), "two updates of one chat ran at once")
	require.Len(t, order, 20)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
	assert.Eventually(t, func() bool { return q.busy() == 0 }, time.Second, time.Millisecond)
}

func TestChatQueuesRunChatsConcurrently(t *testing.T) {
	var q chatQueues
	release := make(chan struct{})
	other := make(chan struct{})

	q.run(1, func() { <-release })
	q.run(2, func() { close(other) })

	select {
	case <-other:
	case <-time.After(time.Second):
		t.Fatal("a blocked chat held up another chat")
	}
	close(release)
}

func TestUpdateChatID(t *testing.T) {
	id, ok := updateChatID(tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: -5}}})
	assert.True(t, ok)
	assert.Equal(t, int64(-5), id)

	id, ok = updateChatID(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 7}},
	}})
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	_, ok = updateChatID(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{ID: "inline"}})
	assert.False(t, ok)
}
