package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("parses level", func(t *testing.T) {
		l := New("debug", "text")
		assert.Equal(t, logrus.DebugLevel, l.GetLevel())
		assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
	})

	t.Run("falls back to info", func(t *testing.T) {
		l := New("chatty", "json")
		assert.Equal(t, logrus.InfoLevel, l.GetLevel())
		assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)
	})
}

func TestWithFields(t *testing.T) {
	e := WithFields(Discard(), logrus.Fields{"household_id": 7})
	assert.Equal(t, 7, e.Data["household_id"])
}
