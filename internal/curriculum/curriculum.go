// Package curriculum holds the static Level 0 course material.
package curriculum

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed sections.yaml
var sectionsYAML []byte

// Section is one Level 0 lesson.
type Section struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	Body  string `yaml:"body" json:"body"`
}

var (
	loadOnce sync.Once
	sections []Section
	loadErr  error
)

// Sections returns the lessons in course order.
func Sections() ([]Section, error) {
	loadOnce.Do(func() {
		sections, loadErr = parse(sectionsYAML)
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return append([]Section(nil), sections...), nil
}

func parse(data []byte) ([]Section, error) {
	var out []Section
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse curriculum: %w", err)
	}
	seen := make(map[string]bool, len(out))
	for i, s := range out {
		if s.ID == "" || s.Title == "" {
			return nil, fmt.Errorf("curriculum section %d: id and title are required", i)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("curriculum section %q is duplicated", s.ID)
		}
		seen[s.ID] = true
		out[i].Body = strings.TrimRight(s.Body, "\n")
	}
	return out, nil
}

// Find returns the section with id, also accepting its 1-based position.
func Find(id string) (Section, error) {
	all, err := Sections()
	if err != nil {
		return Section{}, err
	}
	for _, s := range all {
		if s.ID == id {
			return s, nil
		}
	}
	if n, err := strconv.Atoi(id); err == nil && strconv.Itoa(n) == id && n >= 1 && n <= len(all) {
		return all[n-1], nil
	}
	return Section{}, fmt.Errorf("unknown section: %q", id)
}

// Progress counts how many known sections appear in completed.
func Progress(completed []string) (done, total int) {
	all, err := Sections()
	if err != nil {
		return 0, 0
	}
	set := make(map[string]bool, len(completed))
	for _, id := range completed {
		set[id] = true
	}
	for _, s := range all {
		if set[s.ID] {
			done++
		}
	}
	return done, len(all)
}
