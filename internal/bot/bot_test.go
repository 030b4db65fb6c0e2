package bot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/go-zbot/internal/catalog"
	"github.com/pixil98/go-zbot/internal/chat"
	"github.com/pixil98/go-zbot/internal/interp"
	"github.com/pixil98/go-zbot/internal/interp/interptest"
	"github.com/pixil98/go-zbot/internal/saves"
	"github.com/pixil98/go-zbot/internal/session"
)

const room = "!room:example.org"

func TestMain(m *testing.M) {
	interptest.MainIfRequested()
	os.Exit(m.Run())
}

type fixture struct {
	bot      *Bot
	sessions *session.Store
	saves    *saves.Namer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	cat, err := catalog.New(map[string]*catalog.Game{
		"fixture": {Name: "Fixture", File: interptest.WriteStory(t, dir, "Fixture")},
		"begin":   {Name: "Begin Game", File: interptest.WriteStory(t, dir, "Begin"), CommandPrefix: `\n`},
		"broken":  {Name: "Broken", File: filepath.Join(dir, "missing.z5")},
	})
	if err != nil {
		t.Fatalf("building catalog: %v", err)
	}

	namer := saves.NewNamer(filepath.Join(dir, "saves"))
	sessions, err := session.NewStore(filepath.Join(dir, "sessions"), filepath.Join(dir, "sessions", ".tmp"), namer)
	if err != nil {
		t.Fatalf("creating session store: %v", err)
	}

	b, err := New(cat, interp.NewSupervisor(interptest.Options()...), sessions, namer)
	if err != nil {
		t.Fatalf("creating bot: %v", err)
	}

	return &fixture{bot: b, sessions: sessions, saves: namer}
}

func (f *fixture) handle(t *testing.T, sender, body string) *chat.Reply {
	t.Helper()
	return f.bot.Handle(context.Background(), chat.Message{Room: room, Sender: sender, Body: body})
}

func assertText(t *testing.T, r *chat.Reply, exp string) {
	t.Helper()
	if r == nil {
		t.Fatalf("expected reply %q, got none", exp)
	}
	testutil.AssertEqual(t, "kind", r.Kind, chat.KindText)
	testutil.AssertEqual(t, "text", r.Text, exp)
}

func assertHTMLContains(t *testing.T, r *chat.Reply, want ...string) {
	t.Helper()
	if r == nil {
		t.Fatalf("expected html reply, got none")
	}
	if r.Kind != chat.KindHTML {
		t.Fatalf("expected html reply, got %s %q", r.Kind, r.Text)
	}
	for _, w := range want {
		if !strings.Contains(r.HTML, w) {
			t.Errorf("expected html to contain %q, got %q", w, r.HTML)
		}
	}
}

func TestBot_ArgumentErrors(t *testing.T) {
	tests := map[string]struct {
		body string
		exp  string
	}{
		"missing game":      {body: "!zstart", exp: "Missing argument 'game-id'"},
		"unknown game":      {body: "!zstart foobar", exp: "Bad argument 'game-id': Unknown game-id 'foobar'"},
		"bad save name":     {body: "!zsave a/b", exp: "Bad argument 'name': Filename 'a/b' should only contain a-z, A-Z, 0-9 or - "},
		"bad overwrite":     {body: "!zs first please", exp: "Bad argument 'overwrite': invalid value 'please', only 'overwrite' is accepted"},
		"bad direct mode":   {body: "!zdirect maybe", exp: "Bad argument 'mode': invalid value 'maybe', only 'on' or 'off' are accepted"},
		"load missing name": {body: "!zl fixture", exp: "Missing argument 'name'"},
	}

	f := newFixture(t)
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assertText(t, f.handle(t, "alice", tt.body), tt.exp)
		})
	}
}

func TestBot_ListGames(t *testing.T) {
	f := newFixture(t)

	r := f.handle(t, "alice", "!zlist")

	testutil.AssertEqual(t, "kind", r.Kind, chat.KindHTML)
	testutil.AssertEqual(t, "html", r.HTML, `<table><tr><th>id</th><th>name</th></tr>`+
		`<tr><td>begin</td><td>Begin Game</td></tr>`+
		`<tr><td>broken</td><td>Broken</td></tr>`+
		`<tr><td>fixture</td><td>Fixture</td></tr></table>`)
}

func TestBot_Help(t *testing.T) {
	f := newFixture(t)

	r := f.handle(t, "alice", "!zh")

	assertHTMLContains(t, r,
		"<p>Command list:</p>",
		"<td>!zsave, !zs</td><td>&lt;name&gt; [overwrite]</td>",
		"save current session to &lt;name&gt;, if it already exists, then [overwrite] must be specified",
		`send commands to the game itself, e.g.: \look around`,
	)
}

func TestBot_CommandWithoutSession(t *testing.T) {
	f := newFixture(t)

	assertText(t, f.handle(t, "alice", `\look`), "No active session, use !zstart to start a game")
}

func TestBot_StartAndPlay(t *testing.T) {
	f := newFixture(t)

	r := f.handle(t, "alice", "!zstart fixture")
	assertHTMLContains(t, r, `<div class="location">Bedroom</div>`, "The bedroom is a mess.")

	game, ok := f.sessions.Active(room)
	testutil.AssertEqual(t, "active", ok, true)
	testutil.AssertEqual(t, "active game", game, "fixture")

	r = f.handle(t, "alice", `\north`)
	assertHTMLContains(t, r, `<div class="location">Kitchen</div>`, "The kitchen is a mess.")

	r = f.handle(t, "alice", `\inventory`)
	assertHTMLContains(t, r, "Moves: 2", "a splitting headache")
	if strings.Contains(r.HTML, `class="location"`) {
		t.Errorf("expected unchanged location to be suppressed, got %q", r.HTML)
	}
	if !strings.Contains(r.Plain, "a splitting headache") {
		t.Errorf("expected plain fallback, got %q", r.Plain)
	}
}

func TestBot_StartupInput(t *testing.T) {
	f := newFixture(t)

	r := f.handle(t, "alice", "!zstart begin")
	assertHTMLContains(t, r, `<div class="location">Bedroom</div>`)

	r = f.handle(t, "alice", `\north`)
	assertHTMLContains(t, r, "The kitchen is a mess.")
}

func TestBot_LaunchFailure(t *testing.T) {
	f := newFixture(t)

	assertText(t, f.handle(t, "alice", "!zstart broken"), "The game could not be started.")

	_, ok := f.sessions.Active(room)
	testutil.AssertEqual(t, "active", ok, false)
}

func TestBot_Continue(t *testing.T) {
	f := newFixture(t)

	assertText(t, f.handle(t, "alice", "!zc fixture"), "No session found for game-id 'fixture'")

	f.handle(t, "alice", "!zstart fixture")
	f.handle(t, "alice", `\north`)

	r := f.handle(t, "alice", "!zcontinue fixture")
	assertHTMLContains(t, r, "The kitchen is a mess.")
}

func TestBot_SaveLoadAndDownload(t *testing.T) {
	f := newFixture(t)

	assertText(t, f.handle(t, "alice", "!zsave first"), "No session to save")
	assertText(t, f.handle(t, "alice", "!zls fixture"), "No savegames for 'fixture' in this room")
	assertText(t, f.handle(t, "alice", "!zl fixture first"), "Save file 'first' doesn't exist")
	assertText(t, f.handle(t, "alice", "!zd fixture first"), "Save file 'first' doesn't exist")

	f.handle(t, "alice", "!zstart fixture")
	f.handle(t, "alice", `\north`)

	assertText(t, f.handle(t, "alice", "!zsave first"), "Saved to file 'first' for game 'fixture'")
	assertText(t, f.handle(t, "alice", "!zs first"), "Save file 'first' exists, pick another one or specify 'overwrite' as last argument")
	assertText(t, f.handle(t, "alice", "!zs first OVERWRITE"), "Saved to file 'first' for game 'fixture'")

	r := f.handle(t, "alice", "!zlistsaves fixture")
	assertHTMLContains(t, r, "<td>first</td>")

	r = f.handle(t, "alice", "!zdownload fixture first")
	testutil.AssertEqual(t, "kind", r.Kind, chat.KindFile)
	testutil.AssertEqual(t, "file name", r.FileName, "fixture-first")
	testutil.AssertEqual(t, "mime type", r.MimeType, "application/octet-stream")

	var st struct {
		Location string `json:"location"`
	}
	if err := json.Unmarshal(r.Data, &st); err != nil {
		t.Fatalf("decoding download: %v", err)
	}
	testutil.AssertEqual(t, "saved location", st.Location, "Kitchen")

	r = f.handle(t, "alice", "!zstart fixture")
	assertHTMLContains(t, r, "The bedroom is a mess.")

	r = f.handle(t, "alice", "!zload fixture first")
	assertHTMLContains(t, r, "The kitchen is a mess.")

	r = f.handle(t, "alice", `\look`)
	assertHTMLContains(t, r, "The kitchen is a mess.")
}

func TestBot_DirectMode(t *testing.T) {
	f := newFixture(t)
	f.handle(t, "alice", "!zstart fixture")

	testutil.AssertEqual(t, "plain chatter ignored", f.handle(t, "alice", "north") == nil, true)

	assertText(t, f.handle(t, "alice", "!zdirect on"), "Direct mode enabled")

	r := f.handle(t, "alice", "north")
	assertHTMLContains(t, r, "The kitchen is a mess.")

	testutil.AssertEqual(t, "other sender ignored", f.handle(t, "bob", "south") == nil, true)
	testutil.AssertEqual(t, "unknown bang command ignored", f.handle(t, "alice", "!other") == nil, true)

	assertText(t, f.handle(t, "alice", "!zdirect OFF"), `Direct mode disabled, '\' is required for commands`)
	testutil.AssertEqual(t, "direct mode off", f.handle(t, "alice", "south") == nil, true)
}

func TestBot_SerializesRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.bot.Start(ctx, room, "fixture"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const n = 4
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.bot.Command(ctx, room, "inventory"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	path, err := f.sessions.SnapshotPath(room, "fixture")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}

	var st struct {
		Moves int `json:"moves"`
	}
	if err := json.Unmarshal(data, &st); err != nil {
		t.Fatalf("decoding snapshot: %v", err)
	}
	testutil.AssertEqual(t, "moves", st.Moves, n)
	testutil.AssertEqual(t, "locks released", f.bot.locks.len(), 0)
}

func TestBot_GameResolvedUnderLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	release, err := f.bot.locks.acquire(ctx, room)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resolved := make(chan struct{})
	done := make(chan *chat.Reply, 1)
	go func() {
		r, err := f.bot.play(ctx, room, func() (*catalog.Game, *chat.Reply, error) {
			close(resolved)
			return nil, chat.Text("resolved"), nil
		}, nil)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		done <- r
	}()

	select {
	case <-resolved:
		t.Fatalf("game resolved while the room was locked")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	assertText(t, <-done, "resolved")
}

func TestBot_StatusKeptWhenSaveErrors(t *testing.T) {
	f := newFixture(t)

	path, err := f.sessions.SnapshotPath(room, "fixture")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	roomDir := filepath.Dir(path)
	if err := os.Remove(roomDir); err != nil {
		t.Fatalf("removing room dir: %v", err)
	}
	if err := os.WriteFile(roomDir, nil, 0644); err != nil {
		t.Fatalf("blocking room dir: %v", err)
	}

	assertText(t, f.handle(t, "alice", "!zstart fixture"), "There was an error.")

	_, ok := f.bot.tracker.Status(room)
	testutil.AssertEqual(t, "status cached", ok, false)

	if err := os.Remove(roomDir); err != nil {
		t.Fatalf("unblocking room dir: %v", err)
	}

	r := f.handle(t, "alice", "!zstart fixture")
	assertHTMLContains(t, r, `<div class="location">Bedroom</div>`)

	status, ok := f.bot.tracker.Status(room)
	testutil.AssertEqual(t, "status cached", ok, true)
	testutil.AssertEqual(t, "cached location", status.Location, "Bedroom")
}
