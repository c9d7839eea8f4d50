package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultGenres are the categories present in the upstream dataset.
var defaultGenres = []string{
	"action", "adventure", "animation", "biography",
	"crime", "family", "fantasy", "film-noir",
	"history", "horror", "mystery", "romance",
	"scifi", "sports", "thriller", "war",
}

// DefaultGenres returns a copy of the built-in genre list.
func DefaultGenres() []string {
	out := make([]string, len(defaultGenres))
	copy(out, defaultGenres)
	return out
}

type genresFile struct {
	Genres []string `yaml:"genres"`
}

// LoadGenres reads a genre list from a YAML file of the form:
//
//	genres:
//	  - action
//	  - horror
func LoadGenres(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genres file: %w", err)
	}
	var f genresFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse genres file: %w", err)
	}
	if len(f.Genres) == 0 {
		return nil, fmt.Errorf("genres file %s lists no genres", path)
	}
	return f.Genres, nil
}
