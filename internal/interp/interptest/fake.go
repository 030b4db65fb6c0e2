// Package interptest provides a deterministic stand-in for the interpreter.
//
// A test binary becomes the fake when it is launched with EnvVar set, so
// tests can exercise real process handling without an external binary:
//
//	func TestMain(m *testing.M) {
//		interptest.MainIfRequested()
//		os.Exit(m.Run())
//	}
package interptest

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-zbot/internal/interp"
)

const EnvVar = "ZBOT_FAKE_INTERPRETER"

// MainIfRequested runs the fake and exits when the process was launched as one.
func MainIfRequested() {
	if os.Getenv(EnvVar) != "1" {
		return
	}
	os.Exit(Serve(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// Options returns supervisor options that launch the fake with short delays.
func Options() []interp.SupervisorOpt {
	return []interp.SupervisorOpt{
		interp.WithExecutable(os.Args[0]),
		interp.WithEnv(EnvVar + "=1"),
		interp.WithStartupDelay(50 * time.Millisecond),
		interp.WithSettleDelay(30 * time.Millisecond),
		interp.WithResponseTimeout(2 * time.Second),
	}
}

// WriteStory writes a story file the fake can load. A story whose title is
// "Begin" asks for a key press before the game starts.
func WriteStory(t testing.TB, dir, title string) string {
	t.Helper()

	path := filepath.Join(dir, strings.ToLower(strings.ReplaceAll(title, " ", "-"))+".z5")
	if err := os.WriteFile(path, []byte(title+"\n"), 0644); err != nil {
		t.Fatalf("writing story: %v", err)
	}
	return path
}

type state struct {
	Location   string `json:"location"`
	Moves      int    `json:"moves"`
	BrokenSave bool   `json:"-"`
}

type fake struct {
	title string
	st    state
	in    *bufio.Reader
	out   *bufio.Writer
}

// Serve runs the fake interpreter and returns its exit code.
func Serve(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fake", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Int("w", 80, "width")
	fs.Int("h", 24, "height")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: fake [-w width] [-h height] storyfile")
		return 2
	}

	story, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: cannot open story file %s\n", fs.Arg(0))
		return 1
	}

	f := &fake{
		title: strings.TrimSpace(string(story)),
		st:    state{Location: "Bedroom"},
		in:    bufio.NewReader(stdin),
		out:   bufio.NewWriter(stdout),
	}
	return f.run()
}

func (f *fake) run() int {
	if f.title == "Begin" {
		f.printf("[Press any key to begin]\n")
		f.flush()
		if _, err := f.readLine(); err != nil {
			return 0
		}
	}

	f.status()
	f.printf("\n%s\nAn interactive fiction fixture\n\n", f.title)
	f.look()
	f.prompt()

	for {
		line, err := f.readLine()
		if err != nil {
			return 0
		}

		switch line {
		case "":
			f.status()
			f.printf("I beg your pardon?\n")
		case "#":
			f.printf("I don't understand that sentence.\n")
		case "look", "l":
			f.status()
			f.look()
		case "north", "n":
			f.move("Kitchen")
		case "south", "s":
			f.move("Bedroom")
		case "inventory", "i":
			f.st.Moves++
			f.status()
			f.printf("You have:\n  a splitting headache\n  no tea\n")
		case "break save":
			f.st.BrokenSave = true
			f.status()
			f.printf("Something feels off.\n")
		case "hang":
			f.flush()
			time.Sleep(time.Hour)
		case "save":
			f.save()
		case "restore":
			f.restore()
		case "quit":
			return 0
		default:
			f.st.Moves++
			f.status()
			f.printf("You can't see any such thing.\n")
		}
		f.prompt()
	}
}

func (f *fake) move(to string) {
	f.st.Moves++
	f.st.Location = to
	f.status()
	f.look()
}

func (f *fake) save() {
	f.printf("Please enter a filename [story.qzl]: ")
	f.flush()

	name, err := f.readLine()
	if err != nil || name == "" {
		f.printf("Failed.\n")
		return
	}

	var data []byte
	if !f.st.BrokenSave {
		data, _ = json.Marshal(f.st)
	}
	if err := os.WriteFile(name, data, 0644); err != nil {
		f.printf("Failed.\n")
		return
	}
	f.printf("Ok.\n")
}

func (f *fake) restore() {
	f.printf("Please enter a filename [story.qzl]: ")
	f.flush()

	name, err := f.readLine()
	if err != nil {
		return
	}

	data, err := os.ReadFile(name)
	if err != nil {
		f.printf("Failed.\n")
		return
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		f.printf("Failed.\n")
		return
	}
	f.st = st

	f.printf("Ok.\n\n")
	f.status()
	f.look()
}

func (f *fake) status() {
	f.printf(" %-40s    Score: 0   Moves: %d\n", f.st.Location, f.st.Moves)
}

func (f *fake) look() {
	switch f.st.Location {
	case "Kitchen":
		f.printf("\n%s\nThe kitchen is a mess.\n", f.st.Location)
	default:
		f.printf("\n%s\nThe bedroom is a mess. The door is north.\n", f.st.Location)
	}
}

func (f *fake) prompt() {
	f.printf("\n>")
	f.flush()
}

func (f *fake) readLine() (string, error) {
	line, err := f.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (f *fake) printf(format string, args ...any) {
	fmt.Fprintf(f.out, format, args...)
}

func (f *fake) flush() {
	_ = f.out.Flush()
}
