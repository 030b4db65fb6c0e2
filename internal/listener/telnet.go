package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"syscall"

	"github.com/iammegalith/telnet"
)

type TelnetListener struct {
	host string
	port uint16
	cm   *ConnectionManager
}

func NewTelnetListener(host string, port uint16, cm *ConnectionManager) *TelnetListener {
	return &TelnetListener{
		host: host,
		port: port,
		cm:   cm,
	}
}

func (l *TelnetListener) Start(ctx context.Context) error {
	// Connections outlive the accept loop until Stop cancels them together.
	connCtx, cancelConns := context.WithCancel(context.WithoutCancel(ctx))

	handler := &telnetHandler{
		cFunc:       l.cm.AcceptConnection,
		connCtx:     connCtx,
		cancelConns: cancelConns,
	}

	addr := net.JoinHostPort(l.host, fmt.Sprint(l.port))
	svr := telnet.NewServer(addr, handler)

	// done signals that Start is returning (either success or failure)
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			svr.Stop()
			handler.Stop()
		case <-done:
		}
	}()

	slog.InfoContext(ctx, "listening for telnet", "addr", addr)

	err := svr.ListenAndServe()
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("port %d is already in use (another server running?)", l.port)
		}
		return fmt.Errorf("serving telnet on %s: %w", addr, err)
	}

	return nil
}

type telnetHandler struct {
	wg          sync.WaitGroup
	cFunc       func(context.Context, io.ReadWriter)
	connCtx     context.Context
	cancelConns context.CancelFunc
}

func (h *telnetHandler) HandleTelnet(conn *telnet.Connection) {
	h.wg.Add(1)
	defer h.wg.Done()

	// A blocked read only returns once the connection is closed.
	stop := context.AfterFunc(h.connCtx, func() {
		_ = conn.Close()
	})
	defer func() {
		if stop() {
			if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				slog.ErrorContext(h.connCtx, "closing telnet connection", "error", err)
			}
		}
	}()

	h.cFunc(h.connCtx, newCRLFReadWriter(conn))
}

func (h *telnetHandler) Stop() {
	h.cancelConns()
	h.wg.Wait()
}
