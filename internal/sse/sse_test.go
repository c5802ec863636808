package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishSubscribe(t *testing.T) {
	h := NewHub()
	a, cancelA := h.Subscribe("run")
	b, cancelB := h.Subscribe("run")
	other, cancelOther := h.Subscribe("other")
	defer cancelOther()

	h.Publish("run", "hello")

	require.Equal(t, "hello", <-a)
	require.Equal(t, "hello", <-b)
	assert.Empty(t, other)

	cancelA()
	assert.Equal(t, 1, h.Subscribers("run"))
	cancelB()
	assert.Equal(t, 0, h.Subscribers("run"))
}

func TestHub_DropsWhenFull(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("run")
	defer cancel()

	for i := 0; i < 100; i++ {
		h.Publish("run", "msg")
	}
	assert.Equal(t, cap(ch), len(ch))
}

func TestHub_PublishWithoutSubscribers(t *testing.T) {
	assert.NotPanics(t, func() { NewHub().Publish("nobody", "msg") })
}
