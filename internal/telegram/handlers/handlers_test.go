package handlers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/futig/bms-rag/internal/entity"
	"github.com/futig/bms-rag/internal/pkg/formatter"
	"github.com/futig/bms-rag/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	mu       sync.Mutex
	messages []tgbotapi.MessageConfig
	docs     []tgbotapi.DocumentConfig
	actions  int
	sendErr  error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		f.messages = append(f.messages, v)
	case tgbotapi.DocumentConfig:
		f.docs = append(f.docs, v)
	}
	return tgbotapi.Message{}, f.sendErr
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := c.(tgbotapi.ChatActionConfig); ok {
		f.actions++
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type fakeUsecase struct {
	answer  *entity.Answer
	err     error
	history []*entity.HistoryEntry
	query   string
	limit   int
}

func (f *fakeUsecase) Ask(_ context.Context, q string) (*entity.Answer, error) {
	f.query = q
	return f.answer, f.err
}

func (f *fakeUsecase) History(_ context.Context, limit int) ([]*entity.HistoryEntry, error) {
	f.limit = limit
	return f.history, f.err
}

func parsedAnswer() *entity.Answer {
	return &entity.Answer{
		Query:  "edges of cell",
		JSON:   []byte(`{"result":{"query_intent":"edges","edges":[{"id":"e1"}]}}`),
		Intent: "edges",
		Sections: []entity.SectionCount{
			{Name: entity.SectionEdges, Count: 1},
		},
	}
}

func newQueryHandler(api *fakeAPI, uc *fakeUsecase) *QueryHandler {
	h := NewQueryHandler(api, uc, formatter.NewJSONFormatter(), zap.NewNop())
	h.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }
	return h
}

func TestQueryHandler_SendsSummaryAndDocument(t *testing.T) {
	api := &fakeAPI{}
	uc := &fakeUsecase{answer: parsedAnswer()}
	h := newQueryHandler(api, uc)

	err := h.Handle(context.Background(), &Message{ChatID: 7, MessageID: 3, Text: "  edges of cell  "})
	require.NoError(t, err)

	assert.Equal(t, "edges of cell", uc.query)
	assert.GreaterOrEqual(t, api.actions, 1)

	require.Len(t, api.messages, 1)
	assert.Equal(t, int64(7), api.messages[0].ChatID)
	assert.Equal(t, 3, api.messages[0].ReplyToMessageID)
	assert.Equal(t, render.RenderSummary(uc.answer), api.messages[0].Text)

	require.Len(t, api.docs, 1)
	file, ok := api.docs[0].File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "result_20260304_050607.json", file.Name)
	assert.Contains(t, string(file.Bytes), `"query_intent": "edges"`)
	assert.Equal(t, render.MsgResultCaption, api.docs[0].Caption)
}

func TestQueryHandler_ParseFailure(t *testing.T) {
	api := &fakeAPI{}
	uc := &fakeUsecase{answer: &entity.Answer{Raw: "not json", ParseError: "invalid character"}}
	h := newQueryHandler(api, uc)

	require.NoError(t, h.Handle(context.Background(), &Message{ChatID: 7, Text: "q"}))

	require.Len(t, api.messages, 1)
	assert.Contains(t, api.messages[0].Text, "invalid character")
	assert.Empty(t, api.docs)
}

func TestQueryHandler_Errors(t *testing.T) {
	t.Run("empty query is rejected before asking", func(t *testing.T) {
		api := &fakeAPI{}
		uc := &fakeUsecase{answer: parsedAnswer()}
		err := newQueryHandler(api, uc).Handle(context.Background(), &Message{ChatID: 7, Text: "   "})

		assert.ErrorIs(t, err, entity.ErrMissingField)
		assert.Empty(t, uc.query)
		assert.Zero(t, api.actions)
	})

	t.Run("too long", func(t *testing.T) {
		uc := &fakeUsecase{answer: parsedAnswer()}
		err := newQueryHandler(&fakeAPI{}, uc).Handle(context.Background(), &Message{Text: strings.Repeat("a", 2001)})

		assert.ErrorIs(t, err, entity.ErrInvalidParameter)
	})

	t.Run("pipeline error is wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		api := &fakeAPI{}
		err := newQueryHandler(api, &fakeUsecase{err: boom}).Handle(context.Background(), &Message{Text: "q"})

		assert.ErrorIs(t, err, boom)
		assert.Empty(t, api.messages)
	})

	t.Run("send failure", func(t *testing.T) {
		api := &fakeAPI{sendErr: errors.New("forbidden")}
		err := newQueryHandler(api, &fakeUsecase{answer: parsedAnswer()}).Handle(context.Background(), &Message{Text: "q"})

		assert.Error(t, err)
		assert.Len(t, api.docs, 0)
	})
}

func TestHistoryHandler(t *testing.T) {
	api := &fakeAPI{}
	uc := &fakeUsecase{history: []*entity.HistoryEntry{{Query: "a"}, {Query: "b"}}}

	require.NoError(t, NewHistoryHandler(api, uc, zap.NewNop()).Handle(context.Background(), &Message{ChatID: 1}))

	assert.Equal(t, historyLimit, uc.limit)
	require.Len(t, api.messages, 1)
	assert.Equal(t, render.RenderHistory(uc.history), api.messages[0].Text)
}

func TestStaticHandler(t *testing.T) {
	api := &fakeAPI{}
	require.NoError(t, NewStaticHandler(api, render.MsgHelp, zap.NewNop()).Handle(context.Background(), &Message{ChatID: 1}))

	require.Len(t, api.messages, 1)
	assert.Equal(t, render.MsgHelp, api.messages[0].Text)
}

func TestTypingNotifier_StopIsIdempotent(t *testing.T) {
	api := &fakeAPI{}
	n := NewTypingNotifier(api, 1, zap.NewNop())
	n.Start(context.Background())
	n.Stop()
	n.Stop()

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, 1, api.actions)
}
