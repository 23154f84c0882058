package transport

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/haukened/split-dns/internal/dns/common/log"
	"github.com/haukened/split-dns/internal/dns/domain"
	"github.com/haukened/split-dns/internal/dns/gateways/wire"
	"github.com/haukened/split-dns/internal/dns/services/router"
)

// MockDNSCodec implements wire.DNSCodec for testing
type MockDNSCodec struct {
	mock.Mock
}

func (m *MockDNSCodec) EncodeQuery(id uint16, q domain.Question) ([]byte, error) {
	args := m.Called(id, q)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDNSCodec) DecodeResponse(data []byte, expectedID uint16) (domain.ResolutionResult, error) {
	args := m.Called(data, expectedID)
	return args.Get(0).(domain.ResolutionResult), args.Error(1)
}

func (m *MockDNSCodec) DecodeRequest(data []byte) (domain.DNSRequest, error) {
	args := m.Called(data)
	return args.Get(0).(domain.DNSRequest), args.Error(1)
}

func (m *MockDNSCodec) EncodeResponse(resp domain.DNSResponse) ([]byte, error) {
	args := m.Called(resp)
	return args.Get(0).([]byte), args.Error(1)
}

// MockLogger implements log.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Info(fields map[string]any, msg string)  { m.Called(fields, msg) }
func (m *MockLogger) Error(fields map[string]any, msg string) { m.Called(fields, msg) }
func (m *MockLogger) Debug(fields map[string]any, msg string) { m.Called(fields, msg) }
func (m *MockLogger) Warn(fields map[string]any, msg string)  { m.Called(fields, msg) }
func (m *MockLogger) Panic(fields map[string]any, msg string) { m.Called(fields, msg) }
func (m *MockLogger) Fatal(fields map[string]any, msg string) { m.Called(fields, msg) }

// responderFunc adapts a function to router.DNSResponder.
type responderFunc func(ctx context.Context, req domain.DNSRequest, clientAddr net.Addr, send router.SendFunc) error

func (f responderFunc) HandleRequest(ctx context.Context, req domain.DNSRequest, clientAddr net.Addr, send router.SendFunc) error {
	return f(ctx, req, clientAddr, send)
}

// echo answers every question with a fixed A record.
func echo(t testing.TB) responderFunc {
	return func(_ context.Context, req domain.DNSRequest, _ net.Addr, send router.SendFunc) error {
		q, err := req.FirstQuestion()
		if err != nil {
			return err
		}
		rr, err := domain.ParseResourceRecord(q.Name + " 60 IN A 192.0.2.1")
		if err != nil {
			t.Errorf("parse record: %v", err)
			return err
		}
		resp := domain.NewResponseFromRequest(req).WithResult(domain.ResolutionResult{Answers: []domain.ResourceRecord{rr}})
		return send(resp)
	}
}

func startTransport(t *testing.T, codec wire.DNSCodec, logger log.Logger, handler router.DNSResponder) *UDPTransport {
	t.Helper()
	transport := NewUDPTransport("127.0.0.1:0", codec, logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, transport.Start(ctx, handler))
	t.Cleanup(func() { _ = transport.Stop() })
	return transport
}

func exchange(t *testing.T, addr, name string, id uint16) *dns.Msg {
	t.Helper()
	m := new(dns.Msg)
	m.SetQuestion(name, dns.TypeA)
	m.Id = id
	c := &dns.Client{Net: "udp", Timeout: 2 * time.Second}
	reply, _, err := c.Exchange(m, addr)
	require.NoError(t, err)
	return reply
}

func TestNewUDPTransport(t *testing.T) {
	codec := &MockDNSCodec{}
	logger := log.NewNoopLogger()
	addr := "127.0.0.1:5053"

	transport := NewUDPTransport(addr, codec, logger)

	assert.Equal(t, addr, transport.addr)
	assert.Equal(t, codec, transport.codec)
	assert.Equal(t, logger, transport.logger)
	assert.False(t, transport.running)
	assert.Equal(t, addr, transport.Address())

	assert.NotNil(t, NewUDPTransport(addr, codec, nil).logger)
}

func TestUDPTransport_StartStop(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
		errMsg  string
	}{
		{name: "valid address", addr: "127.0.0.1:0"},
		{name: "invalid address format", addr: "invalid-address", wantErr: true, errMsg: "failed to resolve UDP address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := NewUDPTransport(tt.addr, &MockDNSCodec{}, log.NewNoopLogger())
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := transport.Start(ctx, echo(t))
			if tt.wantErr {
				assert.ErrorContains(t, err, tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.True(t, transport.running)
			assert.NotEqual(t, "127.0.0.1:0", transport.Address(), "address reports the bound port")

			err = transport.Start(ctx, echo(t))
			assert.ErrorContains(t, err, "already running")

			assert.NoError(t, transport.Stop())
			assert.False(t, transport.running)
			assert.NoError(t, transport.Stop())
		})
	}
}

func TestUDPTransport_StartRequiresHandler(t *testing.T) {
	transport := NewUDPTransport("127.0.0.1:0", &MockDNSCodec{}, nil)
	assert.ErrorContains(t, transport.Start(context.Background(), nil), "requires a handler")
}

func TestUDPTransport_EndToEnd(t *testing.T) {
	transport := startTransport(t, wire.NewUDPCodec(nil), nil, echo(t))

	reply := exchange(t, transport.Address(), "db1.corp.local.", 4242)

	assert.Equal(t, uint16(4242), reply.Id)
	assert.True(t, reply.Response)
	require.Len(t, reply.Question, 1)
	assert.Equal(t, "db1.corp.local.", reply.Question[0].Name)
	require.Len(t, reply.Answer, 1)
	a, ok := reply.Answer[0].(*dns.A)
	require.True(t, ok)
	assert.Equal(t, "192.0.2.1", a.A.String())
}

func TestUDPTransport_ConcurrentRequests(t *testing.T) {
	transport := startTransport(t, wire.NewUDPCodec(nil), nil, echo(t))

	const numRequests = 20
	var wg sync.WaitGroup
	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func(id uint16) {
			defer wg.Done()
			m := new(dns.Msg)
			m.SetQuestion("example.com.", dns.TypeA)
			m.Id = id
			c := &dns.Client{Net: "udp", Timeout: 2 * time.Second}
			reply, _, err := c.Exchange(m, transport.Address())
			if err != nil {
				t.Errorf("query %d: %v", id, err)
				return
			}
			if reply.Id != id {
				t.Errorf("query %d answered as %d", id, reply.Id)
			}
		}(uint16(1000 + i))
	}
	wg.Wait()
}

func TestUDPTransport_DecodeErrorIsLoggedAndDropped(t *testing.T) {
	codec := &MockDNSCodec{}
	logger := &MockLogger{}
	invalidData := []byte{0xFF, 0xFF, 0xFF}

	codec.On("DecodeRequest", invalidData).Return(domain.DNSRequest{}, domain.ErrMalformedRequest)

	warned := make(chan struct{}, 1)
	logger.On("Warn", mock.MatchedBy(func(fields map[string]any) bool {
		return fields["error"] != nil
	}), "Client sent an invalid request").Run(func(mock.Arguments) { warned <- struct{}{} }).Once()
	logger.On("Info", mock.Anything, mock.Anything).Maybe()
	logger.On("Debug", mock.Anything, mock.Anything).Maybe()

	called := false
	handler := responderFunc(func(context.Context, domain.DNSRequest, net.Addr, router.SendFunc) error {
		called = true
		return nil
	})
	transport := startTransport(t, codec, logger, handler)

	clientConn, err := net.Dial("udp", transport.Address())
	require.NoError(t, err)
	defer func() { require.NoError(t, clientConn.Close()) }()
	_, err = clientConn.Write(invalidData)
	require.NoError(t, err)

	select {
	case <-warned:
	case <-time.After(2 * time.Second):
		t.Fatal("decode failure was not logged")
	}
	require.NoError(t, transport.Stop())
	assert.False(t, called)
	codec.AssertExpectations(t)
	logger.AssertExpectations(t)
}

func TestUDPTransport_SendEncodeErrorIsErrSend(t *testing.T) {
	codec := &MockDNSCodec{}
	resp := domain.DNSResponse{ID: 12345}
	codec.On("EncodeResponse", resp).Return([]byte(nil), assert.AnError)

	transport := NewUDPTransport("127.0.0.1:0", codec, nil)
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer conn.Close()

	err = transport.send(conn, conn.LocalAddr().(*net.UDPAddr), resp)
	assert.True(t, errors.Is(err, domain.ErrSend))
	assert.True(t, errors.Is(err, assert.AnError))
}

func TestUDPTransport_SendWriteErrorIsErrSend(t *testing.T) {
	codec := &MockDNSCodec{}
	resp := domain.DNSResponse{ID: 1}
	codec.On("EncodeResponse", resp).Return([]byte{0x01}, nil)

	transport := NewUDPTransport("127.0.0.1:0", codec, nil)
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	addr := conn.LocalAddr().(*net.UDPAddr)
	require.NoError(t, conn.Close())

	err = transport.send(conn, addr, resp)
	assert.True(t, errors.Is(err, domain.ErrSend))
}

func TestUDPTransport_HandlerPanicIsRecovered(t *testing.T) {
	codec := wire.NewUDPCodec(nil)
	logger := &MockLogger{}
	recovered := make(chan struct{}, 1)
	logger.On("Error", mock.Anything, "Recovered from panic while handling DNS request").
		Run(func(mock.Arguments) { recovered <- struct{}{} }).Once()
	logger.On("Info", mock.Anything, mock.Anything).Maybe()
	logger.On("Debug", mock.Anything, mock.Anything).Maybe()

	var mu sync.Mutex
	calls := 0
	handler := responderFunc(func(ctx context.Context, req domain.DNSRequest, addr net.Addr, send router.SendFunc) error {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			panic("boom")
		}
		return echo(t)(ctx, req, addr, send)
	})
	transport := startTransport(t, codec, logger, handler)

	m := new(dns.Msg)
	m.SetQuestion("example.com.", dns.TypeA)
	packed, err := m.Pack()
	require.NoError(t, err)
	clientConn, err := net.Dial("udp", transport.Address())
	require.NoError(t, err)
	defer clientConn.Close()
	_, err = clientConn.Write(packed)
	require.NoError(t, err)

	select {
	case <-recovered:
	case <-time.After(2 * time.Second):
		t.Fatal("panic was not recovered")
	}

	// The listener keeps serving.
	reply := exchange(t, transport.Address(), "example.com.", 7)
	assert.Equal(t, uint16(7), reply.Id)
	logger.AssertExpectations(t)
}

func TestUDPTransport_StopWaitsForInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	sendErr := make(chan error, 1)

	handler := responderFunc(func(ctx context.Context, req domain.DNSRequest, addr net.Addr, send router.SendFunc) error {
		close(started)
		<-release
		assert.NoError(t, ctx.Err(), "handler context survives listener shutdown")
		err := echo(t)(ctx, req, addr, send)
		sendErr <- err
		return err
	})
	transport := NewUDPTransport("127.0.0.1:0", wire.NewUDPCodec(nil), nil)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, transport.Start(ctx, handler))

	m := new(dns.Msg)
	m.SetQuestion("db1.corp.local.", dns.TypeA)
	m.Id = 2024
	packed, err := m.Pack()
	require.NoError(t, err)
	clientConn, err := net.Dial("udp", transport.Address())
	require.NoError(t, err)
	defer clientConn.Close()
	_, err = clientConn.Write(packed)
	require.NoError(t, err)

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("request never reached the handler")
	}

	// Shut down the way the daemon does: cancel, then Stop.
	cancel()
	stopped := make(chan error, 1)
	go func() { stopped <- transport.Stop() }()

	select {
	case <-stopped:
		t.Fatal("Stop returned before the in-flight request finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-sendErr:
		require.NoError(t, err, "drained request must still be able to reply")
	case <-time.After(2 * time.Second):
		t.Fatal("handler never finished")
	}

	require.NoError(t, clientConn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 512)
	n, err := clientConn.Read(buf)
	require.NoError(t, err, "client must receive the drained reply")
	reply := new(dns.Msg)
	require.NoError(t, reply.Unpack(buf[:n]))
	assert.Equal(t, uint16(2024), reply.Id)
	require.Len(t, reply.Answer, 1)

	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestUDPTransport_ContextCancellationStopsListening(t *testing.T) {
	transport := NewUDPTransport("127.0.0.1:0", wire.NewUDPCodec(nil), nil)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, transport.Start(ctx, echo(t)))
	addr := transport.Address()

	cancel()

	assert.Eventually(t, func() bool {
		m := new(dns.Msg)
		m.SetQuestion("example.com.", dns.TypeA)
		c := &dns.Client{Net: "udp", Timeout: 100 * time.Millisecond}
		_, _, err := c.Exchange(m, addr)
		return err != nil
	}, 2*time.Second, 20*time.Millisecond)

	assert.NoError(t, transport.Stop())
}
