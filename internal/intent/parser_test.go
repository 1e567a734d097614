package intent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/hearth/internal/llm"
	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/pkg/logger"
)

type fakeBackend struct {
	resp  string
	err   error
	calls []llm.Request
}

func (f *fakeBackend) Parse(_ context.Context, req llm.Request) (json.RawMessage, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.resp), nil
}

func newTestParser(b llm.Client) *Parser {
	return NewParser(b, logger.Discard(), WithClock(func() time.Time { return fixedNow }))
}

func authed() context.Context {
	return models.WithUser(context.Background(), &models.User{ID: 7})
}

func TestParserUsesAIWhenAuthenticated(t *testing.T) {
	b := &fakeBackend{resp: `{"items":[{"type":"shopping","title":"Eggs","quantity":"12"}]}`}
	p := newTestParser(b)

	env := p.Parse(authed(), "we need a dozen eggs")
	assert.Equal(t, SourceAI, env.Source)
	require.Len(t, b.calls, 1)
	assert.Equal(t, "2024-05-01", b.calls[0].Today)
	assert.Equal(t, "we need a dozen eggs", b.calls[0].Transcript)

	s, ok := env.Single().(*Shopping)
	require.True(t, ok)
	assert.Equal(t, "Eggs", Title(s))
	require.NotNil(t, s.Quantity)
	assert.InDelta(t, 12, *s.Quantity, 1e-9)
	assert.Equal(t, "we need a dozen eggs", s.Raw())
}

func TestParserFallsBackToRules(t *testing.T) {
	t.Run("backend error", func(t *testing.T) {
		b := &fakeBackend{err: errors.New("boom")}
		env := newTestParser(b).Parse(authed(), "Dentist tomorrow at 3pm")
		assert.Equal(t, SourceRules, env.Source)
		assert.Len(t, b.calls, 1)
		assert.Equal(t, KindEvent, env.Single().Kind())
	})

	t.Run("anonymous caller", func(t *testing.T) {
		b := &fakeBackend{resp: `[]`}
		env := newTestParser(b).Parse(context.Background(), "buy milk")
		assert.Equal(t, SourceRules, env.Source)
		assert.Empty(t, b.calls)
	})

	t.Run("no backend", func(t *testing.T) {
		p := newTestParser(nil)
		_, err := p.ParseAI(authed(), llm.Request{Transcript: "buy milk"})
		assert.ErrorIs(t, err, ErrBackendUnavailable)
		assert.Equal(t, "Milk", Title(p.Parse(authed(), "buy milk").Single()))
	})

	t.Run("empty item list", func(t *testing.T) {
		b := &fakeBackend{resp: `{"items":[]}`}
		env := newTestParser(b).Parse(authed(), "buy milk")
		assert.Equal(t, SourceRules, env.Source)
	})
}

func TestParseDocumentFallback(t *testing.T) {
	env := newTestParser(nil).ParseDocument(context.Background(), "Field trip on Friday\n\nBake sale tomorrow at 3", "newsletter.txt")
	require.Len(t, env.Items, 2)
	assert.Nil(t, env.Single())
	assert.Equal(t, KindTask, env.Items[0].Kind())
	assert.Equal(t, KindEvent, env.Items[1].Kind())
}

func TestParseRecipe(t *testing.T) {
	text := "Toast\nIngredients\n2 slices bread\nSteps\nToast it."

	t.Run("ai", func(t *testing.T) {
		b := &fakeBackend{resp: `{"name":"AI Toast","ingredients":["2 slices bread"],"instructions":"Toast it."}`}
		r := newTestParser(b).ParseRecipe(authed(), text)
		assert.Equal(t, "AI Toast", r.Name)
		require.Len(t, b.calls, 1)
		assert.True(t, b.calls[0].IsRecipe)
	})

	t.Run("fallback", func(t *testing.T) {
		b := &fakeBackend{resp: `not json`}
		r := newTestParser(b).ParseRecipe(authed(), text)
		assert.Equal(t, "Toast", r.Name)
		require.Len(t, r.Ingredients, 1)
		assert.Equal(t, "bread", r.Ingredients[0].Name)
		assert.Equal(t, "Toast it.", r.Instructions)
	})
}

func TestDecodeShapes(t *testing.T) {
	loc := time.UTC

	t.Run("bare array", func(t *testing.T) {
		env, err := Decode([]byte(`[
			{"type":"shopping","title":"Eggs"},
			{"type":"reminder","title":"Call mom","date":"2024-05-02"}
		]`), "raw", loc)
		require.NoError(t, err)
		require.Len(t, env.Items, 2)
		assert.Nil(t, env.Single())

		task, ok := env.Items[1].(*Task)
		require.True(t, ok)
		assert.True(t, task.Todo)
		assert.True(t, task.NeedsNotification)
		assert.Equal(t, KindTodo, task.Kind())
		require.NotNil(t, task.DueTime)
		assert.Equal(t, civil.Time{Hour: 20}, *task.DueTime)
		assert.Equal(t, "raw", task.Raw())
	})

	t.Run("items envelope", func(t *testing.T) {
		env, err := Decode([]byte(`{"items":[{"type":"event","title":"Dentist","date":"2024-05-02","time":{"hours":15,"minutes":30},"location":"Smile Clinic"}]}`), "raw", loc)
		require.NoError(t, err)
		e, ok := env.Single().(*Event)
		require.True(t, ok)
		require.NotNil(t, e.Date)
		assert.Equal(t, time.Date(2024, time.May, 2, 15, 30, 0, 0, loc), *e.Date)
		assert.False(t, e.AllDay())
		assert.Equal(t, "Smile Clinic", e.Location)
	})

	t.Run("flat object with default time", func(t *testing.T) {
		env, err := Decode([]byte(`{"type":"todo","title":"Bins","date":"2024-05-02","default_time":"19:30","recurring":true,"frequency":"weekly"}`), "raw", loc)
		require.NoError(t, err)
		task := env.Single().(*Task)
		require.NotNil(t, task.DueTime)
		assert.Equal(t, civil.Time{Hour: 19, Minute: 30}, *task.DueTime)
		assert.True(t, task.Recurring)
		assert.Equal(t, models.FrequencyWeekly, task.Frequency)
	})

	t.Run("event date without time is all day", func(t *testing.T) {
		env, err := Decode([]byte(`{"type":"event","title":"Holiday","date":"2024-05-02"}`), "raw", loc)
		require.NoError(t, err)
		assert.True(t, env.Single().(*Event).AllDay())
	})

	t.Run("complete uses title as query", func(t *testing.T) {
		env, err := Decode([]byte(`{"type":"complete","title":"trash"}`), "raw", loc)
		require.NoError(t, err)
		assert.Equal(t, "trash", env.Single().(*Complete).Query)
	})

	t.Run("recurring without frequency", func(t *testing.T) {
		env, err := Decode([]byte(`{"type":"task","title":"x","recurring":true}`), "raw", loc)
		require.NoError(t, err)
		assert.False(t, env.Single().(*Task).Recurring)
	})

	t.Run("timestamp without offset keeps its date", func(t *testing.T) {
		berlin, err := time.LoadLocation("Europe/Berlin")
		require.NoError(t, err)

		for _, date := range []string{"2024-05-02T15:00:00", "2024-05-02T15:00", "2024-05-02 15:00"} {
			env, err := Decode([]byte(`{"type":"event","title":"Dentist","date":"`+date+`"}`), "raw", berlin)
			require.NoError(t, err)
			e, ok := env.Single().(*Event)
			require.True(t, ok, date)
			require.NotNil(t, e.Date, date)
			assert.Equal(t, time.Date(2024, time.May, 2, 15, 0, 0, 0, berlin), *e.Date, date)
			assert.False(t, e.AllDay(), date)
		}
	})

	t.Run("unreadable time part falls back to the date", func(t *testing.T) {
		env, err := Decode([]byte(`{"type":"task","title":"Taxes","date":"2024-05-02Tsoon"}`), "raw", loc)
		require.NoError(t, err)
		task := env.Single().(*Task)
		require.NotNil(t, task.DueDate)
		assert.Equal(t, civil.Date{Year: 2024, Month: time.May, Day: 2}, *task.DueDate)
	})

	t.Run("non-numeric quantity keeps the batch", func(t *testing.T) {
		env, err := Decode([]byte(`{"items":[
			{"type":"shopping","title":"Milk","quantity":2},
			{"type":"shopping","title":"Apples","quantity":"a few"},
			{"type":"shopping","title":"Beef","quantity":"2 lbs"}
		]}`), "raw", loc)
		require.NoError(t, err)
		require.Len(t, env.Items, 3)

		apples := env.Items[1].(*Shopping)
		require.NotNil(t, apples.Title)
		assert.Equal(t, "Apples", *apples.Title)
		assert.Nil(t, apples.Quantity)

		beef := env.Items[2].(*Shopping)
		require.NotNil(t, beef.Quantity)
		assert.Equal(t, 2.0, *beef.Quantity)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := Decode([]byte(`"hello"`), "raw", loc)
		assert.Error(t, err)
	})
}

func TestEnvelopeJSON(t *testing.T) {
	env := newTestParser(nil).ParseRules("Dentist tomorrow at 3pm")

	b, err := json.Marshal(env)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "event", out["type"])
	assert.Equal(t, "Dentist", out["title"])
	assert.Equal(t, false, out["all_day"])
	assert.Equal(t, "2024-05-02T15:00:00Z", out["date"])
	assert.Equal(t, "rules", out["source"])
	assert.Len(t, out["items"], 1)

	// Round trip through the wire form.
	var w Wire
	require.NoError(t, json.Unmarshal(b, &w))
	back := FromWire(w, time.UTC).(*Event)
	assert.Equal(t, *env.Single().(*Event).Date, *back.Date)
}
