package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/haukened/split-dns/internal/dns/common/log"
	"github.com/haukened/split-dns/internal/dns/domain"
	"github.com/haukened/split-dns/internal/dns/gateways/wire"
	"github.com/haukened/split-dns/internal/dns/services/router"
)

// UDPTransport implements router.ServerTransport for DNS over UDP. One
// goroutine reads datagrams; each datagram is handled on its own goroutine.
type UDPTransport struct {
	addr   string
	conn   *net.UDPConn
	codec  wire.DNSCodec
	logger log.Logger

	mu       sync.RWMutex
	running  bool
	stopCh   chan struct{}
	inflight sync.WaitGroup
}

// NewUDPTransport creates a new UDP transport instance.
func NewUDPTransport(addr string, codec wire.DNSCodec, logger log.Logger) *UDPTransport {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &UDPTransport{
		addr:   addr,
		codec:  codec,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start binds the UDP socket and starts the read loop. It returns once the
// socket is bound. Cancelling ctx stops the read loop but not requests that
// are already being handled; Stop drains them and releases the socket.
func (t *UDPTransport) Start(ctx context.Context, handler router.DNSResponder) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return fmt.Errorf("UDP transport already running")
	}
	if handler == nil {
		return fmt.Errorf("UDP transport requires a handler")
	}

	udpAddr, err := net.ResolveUDPAddr("udp", t.addr)
	if err != nil {
		return fmt.Errorf("failed to resolve UDP address %s: %w", t.addr, err)
	}

	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("failed to bind UDP socket on %s: %w", t.addr, err)
	}

	t.conn = conn
	t.running = true
	t.stopCh = make(chan struct{})

	t.logger.Info(map[string]any{
		"transport": "udp",
		"address":   conn.LocalAddr().String(),
	}, "DNS transport started")

	// The read loop holds one slot so per-packet Adds never race Stop's Wait.
	t.inflight.Add(1)
	go t.listenLoop(ctx, conn, handler)
	go t.watchContext(ctx, conn, t.stopCh)

	return nil
}

// Stop stops reading, waits for in-flight requests to send their replies,
// then closes the socket.
func (t *UDPTransport) Stop() error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return nil
	}
	close(t.stopCh)
	t.running = false
	conn := t.conn
	t.mu.Unlock()

	// Wake the read loop; handlers keep writing on the open socket.
	_ = conn.SetReadDeadline(time.Now())

	t.inflight.Wait()

	closeErr := conn.Close()
	if closeErr != nil {
		t.logger.Warn(map[string]any{
			"error": closeErr.Error(),
		}, "Error closing UDP connection")
	}

	t.logger.Info(map[string]any{
		"transport": "udp",
		"address":   t.addr,
	}, "DNS transport stopped")

	return closeErr
}

// Address returns the bound address while running, the configured one otherwise.
func (t *UDPTransport) Address() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.running && t.conn != nil {
		return t.conn.LocalAddr().String()
	}
	return t.addr
}

func (t *UDPTransport) isRunning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.running
}

// watchContext unblocks the read loop when ctx is cancelled. The socket
// stays open for replies until Stop.
func (t *UDPTransport) watchContext(ctx context.Context, conn *net.UDPConn, stopCh <-chan struct{}) {
	select {
	case <-ctx.Done():
		t.logger.Debug(nil, "UDP transport stopping due to context cancellation")
		_ = conn.SetReadDeadline(time.Now())
	case <-stopCh:
	}
}

func (t *UDPTransport) listenLoop(ctx context.Context, conn *net.UDPConn, handler router.DNSResponder) {
	defer t.inflight.Done()

	// Handlers outlive the listener's context so shutdown drains them.
	handlerCtx := context.WithoutCancel(ctx)
	buffer := make([]byte, wire.MaxUDPSize)

	for {
		n, clientAddr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			if ctx.Err() != nil || !t.isRunning() || errors.Is(err, net.ErrClosed) {
				return
			}
			t.logger.Warn(map[string]any{
				"error": err.Error(),
			}, "Failed to read UDP packet")
			continue
		}

		packet := make([]byte, n)
		copy(packet, buffer[:n])

		t.inflight.Add(1)
		go func() {
			defer t.inflight.Done()
			t.handlePacket(handlerCtx, conn, packet, clientAddr, handler)
		}()
	}
}

// handlePacket decodes one datagram and hands it to the router. Whatever
// happens, the listener keeps running.
func (t *UDPTransport) handlePacket(ctx context.Context, conn *net.UDPConn, data []byte, clientAddr *net.UDPAddr, handler router.DNSResponder) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error(map[string]any{
				"client": clientAddr.String(),
				"panic":  fmt.Sprint(r),
			}, "Recovered from panic while handling DNS request")
		}
	}()

	t.logger.Debug(map[string]any{
		"client": clientAddr.String(),
		"size":   len(data),
		"raw":    fmt.Sprintf("%x", data),
	}, "Received raw DNS query data")

	req, err := t.codec.DecodeRequest(data)
	if err != nil {
		t.logger.Warn(map[string]any{
			"client": clientAddr.String(),
			"error":  err.Error(),
			"size":   len(data),
		}, "Client sent an invalid request")
		return
	}

	send := func(resp domain.DNSResponse) error {
		return t.send(conn, clientAddr, resp)
	}

	if err := handler.HandleRequest(ctx, req, clientAddr, send); err != nil {
		t.logger.Debug(map[string]any{
			"client":   clientAddr.String(),
			"query_id": req.ID,
			"error":    err.Error(),
		}, "DNS request dropped")
	}
}

func (t *UDPTransport) send(conn *net.UDPConn, clientAddr *net.UDPAddr, resp domain.DNSResponse) error {
	responseData, err := t.codec.EncodeResponse(resp)
	if err != nil {
		return fmt.Errorf("%w: encode response: %w", domain.ErrSend, err)
	}

	t.logger.Debug(map[string]any{
		"client":   clientAddr.String(),
		"query_id": resp.ID,
		"size":     len(responseData),
		"raw":      fmt.Sprintf("%x", responseData),
	}, "Encoded DNS response data")

	if _, err := conn.WriteToUDP(responseData, clientAddr); err != nil {
		return fmt.Errorf("%w: write to %s: %w", domain.ErrSend, clientAddr, err)
	}
	return nil
}

var _ router.ServerTransport = (*UDPTransport)(nil)
