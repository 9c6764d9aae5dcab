package kiosk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lavadero/internal/domain/models"
	"lavadero/internal/infrastructure/logger"
)

func TestSerialServiceEmitsLines(t *testing.T) {
	line := &MockLine{Lines: []string{"COIN:1", "", "BTN:2"}}
	ev := &MockEmitter{}
	s := NewSerialService(line, ev, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := s.Start(ctx)

	require.Eventually(t, func() bool { return len(ev.All()) == 3 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	events := ev.All()
	for i, want := range []string{"COIN:1", "", "BTN:2"} {
		assert.Equal(t, models.EventArduinoData, events[i].Name)
		assert.Equal(t, want, events[i].Payload)
	}
}

func TestSerialServiceReportsFatalReadError(t *testing.T) {
	readErr := errors.New("device unplugged")
	s := NewSerialService(&MockLine{RunErr: readErr}, &MockEmitter{}, logger.Nop())

	select {
	case err := <-s.Start(context.Background()):
		assert.ErrorIs(t, err, readErr)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestSerialServiceEmitFailureKeepsLoop(t *testing.T) {
	line := &MockLine{Lines: []string{"a", "b"}}
	ev := &MockEmitter{Err: errors.New("no UI")}
	s := NewSerialService(line, ev, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := s.Start(ctx)
	require.Eventually(t, func() bool { return len(ev.All()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestSerialServiceSend(t *testing.T) {
	line := &MockLine{}
	s := NewSerialService(line, &MockEmitter{}, logger.Nop())

	require.NoError(t, s.Send("START\n"))
	require.Len(t, line.Sent, 1)
	assert.Equal(t, "START\n", string(line.Sent[0]))
}

func TestSerialServiceSendError(t *testing.T) {
	writeErr := errors.New("write failed")
	line := &MockLine{OnSend: func([]byte) error { return writeErr }}
	s := NewSerialService(line, &MockEmitter{}, logger.Nop())

	err := s.Send("X")
	assert.ErrorIs(t, err, writeErr)
	assert.Contains(t, err.Error(), "Error escribiendo en el puerto serie")
}
