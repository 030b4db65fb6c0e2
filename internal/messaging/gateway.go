package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/pixil98/go-zbot/internal/chat"
)

// DefaultSubjectPrefix is the first token of every subject the gateway uses.
const DefaultSubjectPrefix = "zbot"

// Handler answers one chat message. A nil reply means the message was not
// addressed to it.
type Handler interface {
	Handle(ctx context.Context, msg chat.Message) *chat.Reply
}

type GatewayOpt func(*Gateway)

// WithSubjectPrefix sets the first token of the gateway subjects.
func WithSubjectPrefix(prefix string) GatewayOpt {
	return func(g *Gateway) {
		g.prefix = prefix
	}
}

// Gateway connects chat transports on the bus to the bot. Messages arrive
// on <prefix>.in and replies leave on <prefix>.out.<room>, and also on the
// reply subject of the request when it has one.
type Gateway struct {
	server  *NatsServer
	handler Handler
	prefix  string

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewGateway(server *NatsServer, handler Handler, opts ...GatewayOpt) *Gateway {
	g := &Gateway{
		server:  server,
		handler: handler,
		prefix:  DefaultSubjectPrefix,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// InboundSubject is where transports publish chat messages.
func (g *Gateway) InboundSubject() string {
	return g.prefix + ".in"
}

// OutboundSubject is where replies for room are published.
func (g *Gateway) OutboundSubject(room string) string {
	return g.prefix + ".out." + subjectToken(room)
}

func (g *Gateway) Start(ctx context.Context) error {
	select {
	case <-g.server.Ready():
	case <-ctx.Done():
		return nil
	}

	unsub, err := g.server.Subscribe(g.InboundSubject(), func(msg *nats.Msg) {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.closed {
			return
		}

		// Rooms are serialized by the handler, not here.
		g.wg.Add(1)
		go func() {
			defer g.wg.Done()
			g.handle(ctx, msg)
		}()
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "chat gateway listening", "subject", g.InboundSubject())

	<-ctx.Done()
	unsub()

	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	g.wg.Wait()

	return nil
}

func (g *Gateway) handle(ctx context.Context, msg *nats.Msg) {
	var in chat.Message
	if err := json.Unmarshal(msg.Data, &in); err != nil {
		slog.WarnContext(ctx, "dropping malformed chat message", "subject", msg.Subject, "error", err)
		return
	}

	reply := g.handler.Handle(ctx, in)
	if reply == nil {
		return
	}

	if err := g.publish(in.Room, msg.Reply, reply); err != nil {
		slog.ErrorContext(ctx, "publishing reply", "room", in.Room, "error", err)
	}
}

func (g *Gateway) publish(room, replyTo string, r *chat.Reply) error {
	data, err := json.Marshal(newEnvelope(room, r))
	if err != nil {
		return fmt.Errorf("marshalling reply: %w", err)
	}

	if err := g.server.Publish(g.OutboundSubject(room), data); err != nil {
		return err
	}
	if replyTo != "" {
		return g.server.Publish(replyTo, data)
	}
	return nil
}
