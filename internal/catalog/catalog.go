// Package catalog holds the set of installed games and how to launch them.
package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-zbot/internal/storage"
)

var prefixUnescaper = strings.NewReplacer(`\\`, `\`, `\n`, "\n")

// Game describes one installed story file. It is immutable once loaded.
type Game struct {
	ID            string `json:"-"`
	Name          string `json:"name"`
	File          string `json:"file"`
	Interpreter   string `json:"interpreter,omitempty"`
	CommandPrefix string `json:"command_prefix,omitempty"`
}

func (g *Game) Validate() error {
	el := errors.NewErrorList()

	if g.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	if g.File == "" {
		el.Add(fmt.Errorf("file is required"))
	}

	return el.Err()
}

// StartupInput returns the literal text sent before the first real command.
// Literal `\n` and `\\` sequences in the configured prefix are unescaped.
func (g *Game) StartupInput() string {
	return prefixUnescaper.Replace(g.CommandPrefix)
}

type Catalog struct {
	games map[string]*Game
}

// New builds a catalog from id -> game definitions.
func New(games map[string]*Game) (*Catalog, error) {
	c := &Catalog{games: make(map[string]*Game, len(games))}

	el := errors.NewErrorList()
	for id, g := range games {
		el.Add(c.add(id, g))
	}
	if err := el.Err(); err != nil {
		return nil, err
	}

	return c, nil
}

// Merge adds every game from an asset store. Ids already present are an error.
func (c *Catalog) Merge(st storage.Storer[*Game]) error {
	el := errors.NewErrorList()
	for id, g := range st.GetAll() {
		if _, ok := c.games[id]; ok {
			el.Add(fmt.Errorf("game %q defined twice", id))
			continue
		}
		el.Add(c.add(id, g))
	}
	return el.Err()
}

func (c *Catalog) add(id string, g *Game) error {
	if g == nil {
		return fmt.Errorf("game %q: definition is empty", id)
	}
	if !storage.Identifier(id).Valid() {
		return fmt.Errorf("game %q: id must be lowercase alphanumeric with hyphens", id)
	}
	if err := g.Validate(); err != nil {
		return fmt.Errorf("game %q: %w", id, err)
	}

	cp := *g
	cp.ID = id
	c.games[id] = &cp
	return nil
}

// Get resolves a game id.
func (c *Catalog) Get(id string) (*Game, bool) {
	g, ok := c.games[id]
	return g, ok
}

// ValidateID is an argument validator for game ids.
func (c *Catalog) ValidateID(id string) error {
	if _, ok := c.games[id]; !ok {
		return fmt.Errorf("Unknown game-id '%s'", id)
	}
	return nil
}

// Games returns all games ordered by display name, then id.
func (c *Catalog) Games() []*Game {
	out := make([]*Game, 0, len(c.games))
	for _, g := range c.games {
		out = append(out, g)
	}
	slices.SortFunc(out, func(a, b *Game) int {
		if n := strings.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func (c *Catalog) Len() int {
	return len(c.games)
}
