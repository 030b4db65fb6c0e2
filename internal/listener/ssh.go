package listener

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"golang.org/x/crypto/ssh"
)

type SshListener struct {
	host    string
	port    uint16
	cm      *ConnectionManager
	hostKey ssh.Signer
}

func NewSshListener(host string, port uint16, cm *ConnectionManager, hostKey ssh.Signer) *SshListener {
	return &SshListener{
		host:    host,
		port:    port,
		cm:      cm,
		hostKey: hostKey,
	}
}

func (l *SshListener) Start(ctx context.Context) error {
	config := &ssh.ServerConfig{
		NoClientAuth: true,
	}
	config.AddHostKey(l.hostKey)

	addr := net.JoinHostPort(l.host, fmt.Sprint(l.port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	slog.InfoContext(ctx, "listening for ssh", "addr", addr)

	connCtx, cancelConns := context.WithCancel(context.WithoutCancel(ctx))
	var wg sync.WaitGroup

	// Close the listener when the parent context is canceled
	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			// Check if shutdown was requested
			select {
			case <-ctx.Done():
				cancelConns()
				wg.Wait()
				return nil
			default:
			}
			slog.ErrorContext(ctx, "accepting ssh connection", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.handleConnection(connCtx, conn, config)
		}()
	}
}

func (l *SshListener) handleConnection(ctx context.Context, conn net.Conn, config *ssh.ServerConfig) {
	defer conn.Close()

	sshConn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		slog.ErrorContext(ctx, "ssh handshake", "remote", conn.RemoteAddr(), "error", err)
		return
	}
	defer sshConn.Close()

	user := sshConn.User()
	slog.InfoContext(ctx, "ssh connection established", "remote", conn.RemoteAddr(), "user", user)

	// Close the SSH connection when the context is cancelled.
	// This unblocks the channel iteration loop below so handleConnection can return.
	go func() {
		<-ctx.Done()
		_ = sshConn.Close()
	}()

	go ssh.DiscardRequests(reqs)

	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			_ = newChan.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}

		ch, requests, err := newChan.Accept()
		if err != nil {
			slog.ErrorContext(ctx, "accepting ssh channel", "error", err)
			continue
		}

		if waitForShell(ctx, requests) {
			// The login name is the chat sender; clients that log in without
			// one are asked for a name.
			l.cm.AcceptUser(ctx, newCRLFReadWriter(ch), user)
		}
		_ = ch.Close()
	}
}

// waitForShell answers channel requests until the client asks for a shell.
// SSH clients won't forward input until they receive the shell reply.
func waitForShell(ctx context.Context, in <-chan *ssh.Request) bool {
	shellReady := make(chan struct{})
	go func() {
		var once sync.Once
		for req := range in {
			switch req.Type {
			case "shell":
				_ = req.Reply(true, nil)
				once.Do(func() { close(shellReady) })
			default:
				// Rejecting pty-req keeps local echo and line buffering on the client.
				_ = req.Reply(false, nil)
			}
		}
	}()

	select {
	case <-shellReady:
		return true
	case <-ctx.Done():
		return false
	}
}
