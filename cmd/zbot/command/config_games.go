package command

import (
	"fmt"

	"github.com/pixil98/go-zbot/internal/catalog"
	"github.com/pixil98/go-zbot/internal/storage"
)

// GamesConfig maps game ids to their definitions.
type GamesConfig map[string]*catalog.Game

func (c GamesConfig) validate(assetPath string) error {
	cat, err := c.BuildCatalog(assetPath)
	if err != nil {
		return fmt.Errorf("games: %w", err)
	}
	if cat.Len() == 0 {
		return fmt.Errorf("games: at least one game is required")
	}
	return nil
}

// BuildCatalog builds the catalog from the inline games and, when assetPath
// is set, every game asset stored below it.
func (c GamesConfig) BuildCatalog(assetPath string) (*catalog.Catalog, error) {
	cat, err := catalog.New(c)
	if err != nil {
		return nil, err
	}

	if assetPath == "" {
		return cat, nil
	}

	st, err := storage.NewFileStore[*catalog.Game](assetPath)
	if err != nil {
		return nil, fmt.Errorf("loading game assets: %w", err)
	}
	if err := cat.Merge(st); err != nil {
		return nil, err
	}

	return cat, nil
}
