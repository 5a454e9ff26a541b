package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/futig/bms-rag/internal/config"
	"github.com/futig/bms-rag/internal/telegram/handlers"
	"github.com/futig/bms-rag/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	mu       sync.Mutex
	texts    []string
	updates  chan tgbotapi.Update
	stopOnce sync.Once
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.texts = append(f.texts, msg.Text)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.stopOnce.Do(func() { close(f.updates) })
}

func (f *fakeAPI) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

type recordingHandler struct {
	mu    sync.Mutex
	texts []string
	err   error
	panic bool
}

func (h *recordingHandler) Handle(_ context.Context, msg *handlers.Message) error {
	if h.panic {
		panic("handler exploded")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.texts = append(h.texts, msg.Text)
	return h.err
}

func testConfig() *config.TelegramConfig {
	return &config.TelegramConfig{
		UpdateTimeout:      1,
		RateLimitPerMinute: 60,
		RateLimitBurst:     20,
		ShutdownTimeout:    1,
	}
}

func textUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			MessageID: 5,
			From:      &tgbotapi.User{ID: 1},
			Chat:      &tgbotapi.Chat{ID: 10},
			Text:      text,
		},
	}
}

func commandUpdate(command string) tgbotapi.Update {
	u := textUpdate("/" + command)
	u.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command) + 1}}
	return u
}

func newTestBot(api *fakeAPI, text handlers.Handler) *Bot {
	b := New(testConfig(), api, text, zap.NewNop())
	b.rateLimitMW.Close()
	return b
}

func TestBot_RoutesTextAndCommands(t *testing.T) {
	api := newFakeAPI()
	text := &recordingHandler{}
	history := &recordingHandler{}

	b := newTestBot(api, text)
	b.RegisterCommand("history", history)

	b.handleUpdateWithMiddleware(context.Background(), textUpdate("which assets?"))
	b.handleUpdateWithMiddleware(context.Background(), commandUpdate("history"))

	assert.Equal(t, []string{"which assets?"}, text.texts)
	assert.Equal(t, []string{"/history"}, history.texts)
	assert.Empty(t, api.sent())
}

func TestBot_UnknownCommand(t *testing.T) {
	api := newFakeAPI()
	b := newTestBot(api, &recordingHandler{})

	b.handleUpdateWithMiddleware(context.Background(), commandUpdate("nope"))

	assert.Equal(t, []string{render.MsgUnknownCmd}, api.sent())
}

func TestBot_HandlerErrorIsClassified(t *testing.T) {
	api := newFakeAPI()
	b := newTestBot(api, &recordingHandler{err: context.DeadlineExceeded})

	b.handleUpdateWithMiddleware(context.Background(), textUpdate("q"))

	assert.Equal(t, []string{render.ErrTimeout}, api.sent())
}

func TestBot_PanicIsRecovered(t *testing.T) {
	api := newFakeAPI()
	b := newTestBot(api, &recordingHandler{panic: true})

	require.NotPanics(t, func() {
		b.handleUpdateWithMiddleware(context.Background(), textUpdate("q"))
	})
	require.Len(t, api.sent(), 1)
}

func TestBot_IgnoresNonMessageUpdates(t *testing.T) {
	api := newFakeAPI()
	text := &recordingHandler{}
	b := newTestBot(api, text)

	b.handleUpdateWithMiddleware(context.Background(), tgbotapi.Update{UpdateID: 9})

	assert.Empty(t, text.texts)
	assert.Empty(t, api.sent())
}

func TestBot_StartStop(t *testing.T) {
	api := newFakeAPI()
	text := &recordingHandler{err: errors.New("boom")}
	b := newTestBot(api, text)

	require.NoError(t, b.Start(context.Background()))
	api.updates <- textUpdate("q")

	assert.Eventually(t, func() bool { return len(api.sent()) == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, b.Stop())
	require.NoError(t, b.Stop())
	assert.Equal(t, []string{render.ErrGeneric}, api.sent())
}
