package process

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeak(t *testing.T) {
	t.Run("decodes_one_second", func(t *testing.T) {
		fb := &fakeBackend{speech: func(string) ([]byte, error) { return make([]byte, 48000), nil }}
		sp, err := newTestProcessor(fb).Speak(context.Background(), "Hola")
		require.NoError(t, err)
		assert.Equal(t, 24000, sp.Buffer.Frames())
		assert.Equal(t, 1, sp.Buffer.NumChannels())
		assert.Equal(t, time.Second, sp.Buffer.Duration())
		assert.Equal(t, []string{"Hola"}, fb.speechCalls)
	})

	t.Run("odd_tail_trimmed", func(t *testing.T) {
		fb := &fakeBackend{speech: func(string) ([]byte, error) { return []byte{1, 0, 2, 0, 9}, nil }}
		sp, err := newTestProcessor(fb).Speak(context.Background(), "x")
		require.NoError(t, err)
		assert.Len(t, sp.PCM, 4)
		assert.Equal(t, 2, sp.Buffer.Frames())
		assert.Equal(t, 1, sp.Buffer.TrailingBytes)
	})

	t.Run("backend_error_not_retried", func(t *testing.T) {
		fb := &fakeBackend{speech: func(string) ([]byte, error) { return nil, errors.New("tts down") }}
		sp, err := newTestProcessor(fb).Speak(context.Background(), "x")
		assert.Nil(t, sp)
		var rse *RemoteServiceError
		require.ErrorAs(t, err, &rse)
		assert.Equal(t, "speech", rse.Op)
		assert.Len(t, fb.speechCalls, 1)
	})

	t.Run("empty_audio", func(t *testing.T) {
		fb := &fakeBackend{speech: func(string) ([]byte, error) { return nil, nil }}
		_, err := newTestProcessor(fb).Speak(context.Background(), "x")
		var rse *RemoteServiceError
		assert.ErrorAs(t, err, &rse)
	})

	t.Run("blank_text", func(t *testing.T) {
		fb := &fakeBackend{}
		_, err := newTestProcessor(fb).Speak(context.Background(), " \n")
		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Empty(t, fb.speechCalls)
	})
}

func TestProcessor_SampleRateDefault(t *testing.T) {
	fb := &fakeBackend{speech: func(string) ([]byte, error) { return make([]byte, 4), nil }}

	sp, err := New(fb, Options{}).Speak(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, DefaultSampleRate, sp.Buffer.SampleRate)

	sp, err = New(fb, Options{SampleRate: 16000}).Speak(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 16000, sp.Buffer.SampleRate)
}
