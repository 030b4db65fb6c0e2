package bot

import (
	"context"
	"sync"
)

// roomLocks serializes interactions per room. A room's lock is held from
// process spawn until the process has been killed.
type roomLocks struct {
	mu    sync.Mutex
	rooms map[string]*roomLock
}

type roomLock struct {
	sem  chan struct{}
	refs int
}

func newRoomLocks() *roomLocks {
	return &roomLocks{rooms: map[string]*roomLock{}}
}

// acquire blocks until room is free or ctx is done. The returned func
// releases the room.
func (l *roomLocks) acquire(ctx context.Context, room string) (func(), error) {
	l.mu.Lock()
	rl, ok := l.rooms[room]
	if !ok {
		rl = &roomLock{sem: make(chan struct{}, 1)}
		l.rooms[room] = rl
	}
	rl.refs++
	l.mu.Unlock()

	select {
	case rl.sem <- struct{}{}:
	case <-ctx.Done():
		l.unref(room, rl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-rl.sem
			l.unref(room, rl)
		})
	}, nil
}

func (l *roomLocks) unref(room string, rl *roomLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rl.refs--
	if rl.refs == 0 {
		delete(l.rooms, room)
	}
}

func (l *roomLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rooms)
}

// directModes tracks the senders of each room whose plain messages go
// straight to the game.
type directModes struct {
	mu    sync.Mutex
	rooms map[string]map[string]struct{}
}

func newDirectModes() *directModes {
	return &directModes{rooms: map[string]map[string]struct{}{}}
}

func (d *directModes) set(room, sender string, on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	senders := d.rooms[room]
	if on {
		if senders == nil {
			senders = map[string]struct{}{}
			d.rooms[room] = senders
		}
		senders[sender] = struct{}{}
		return
	}

	delete(senders, sender)
	if len(senders) == 0 {
		delete(d.rooms, room)
	}
}

func (d *directModes) enabled(room, sender string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.rooms[room][sender]
	return ok
}
