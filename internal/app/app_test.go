package app

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lavadero/internal/config"
	"lavadero/internal/events"
	"lavadero/internal/infrastructure/logger"
	"lavadero/pkg/pinpad"
	"lavadero/pkg/spooler"
)

type fakeLine struct {
	lines  chan string
	mu     sync.Mutex
	sent   bytes.Buffer
	closed atomic.Bool
}

func newFakeLine() *fakeLine {
	return &fakeLine{lines: make(chan string, 8)}
}

func (f *fakeLine) Send(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent.Write(p)
	return nil
}

func (f *fakeLine) Run(ctx context.Context, onLine func(string)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l := <-f.lines:
			onLine(l)
		}
	}
}

func (f *fakeLine) Close() error {
	f.closed.Store(true)
	return nil
}

type fakeSpooler struct {
	mu  sync.Mutex
	out bytes.Buffer
}

type fakeJob struct{ s *fakeSpooler }

func (s *fakeSpooler) Open(string) (spooler.Job, error) { return fakeJob{s}, nil }

func (j fakeJob) StartDocument(string, string) error { return nil }
func (j fakeJob) StartPage() error                   { return nil }
func (j fakeJob) EndPage() error                     { return nil }
func (j fakeJob) EndDocument() error                 { return nil }
func (j fakeJob) Close() error                       { return nil }
func (j fakeJob) Write(p []byte) (int, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	return j.s.out.Write(p)
}

type fakeRunner struct{}

func (fakeRunner) Run(context.Context, string, ...string) ([]byte, []byte, error) {
	return []byte("Codigo de Respuesta: 00\nAPROBADA TRANS.\nLote: 7\n"), nil, nil
}

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	return cfg
}

func TestNewPersistsDeviceID(t *testing.T) {
	cfg := testConfig(t)

	a, err := New(cfg, logger.Nop(), Devices{Line: newFakeLine(), Spooler: &fakeSpooler{}, Runner: fakeRunner{}})
	require.NoError(t, err)
	require.NotEmpty(t, a.DeviceID)
	_, err = os.Stat(filepath.Join(cfg.DataDir, "device.json"))
	require.NoError(t, err)

	b, err := New(cfg, logger.Nop(), Devices{Line: newFakeLine(), Spooler: &fakeSpooler{}, Runner: fakeRunner{}})
	require.NoError(t, err)
	assert.Equal(t, a.DeviceID, b.DeviceID)
}

func TestNewRejectsUnknownCodePage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Printer.CodePage = "klingon"
	line := newFakeLine()

	_, err := New(cfg, logger.Nop(), Devices{Line: line})
	assert.Error(t, err)
	assert.True(t, line.closed.Load())
}

func TestServeEndToEnd(t *testing.T) {
	line := newFakeLine()
	sp := &fakeSpooler{}
	a, err := New(testConfig(t), logger.Nop(), Devices{Line: line, Spooler: sp, Runner: fakeRunner{}})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- a.Serve(ctx, ln) }()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/events", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return a.Events.Clients() == 1 }, time.Second, 10*time.Millisecond)

	// микроконтроллер -> UI
	line.lines <- "COIN:1"
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg events.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "arduino-data", msg.Event)
	assert.JSONEq(t, `"COIN:1"`, string(msg.Payload))

	// UI -> микроконтроллер
	resp, err := http.Post(base+"/api/arduino/send", "application/json", strings.NewReader(`{"data":"START\n"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	line.mu.Lock()
	assert.Equal(t, "START\n", line.sent.String())
	line.mu.Unlock()

	// печать
	resp, err = http.Post(base+"/api/print", "application/json",
		strings.NewReader(`{"numero":"0991","card":"VISA","auth":"1","nombre":"Lavado","monto":5}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	sp.mu.Lock()
	assert.True(t, bytes.Contains(sp.out.Bytes(), []byte("Precio: $5.00")))
	sp.mu.Unlock()

	// оплата -> pagoInsertado
	resp, err = http.Post(base+"/api/payments", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "pagoInsertado", msg.Event)
	assert.Contains(t, string(msg.Payload), `"status":"success"`)
	assert.Contains(t, string(msg.Payload), `"Lote":"7"`)

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return")
	}
	assert.True(t, line.closed.Load())
}

var _ pinpad.Runner = fakeRunner{}
