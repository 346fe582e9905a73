// Package navigation loads the sidebar links of the dashboard shell.
package navigation

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed nav.yaml
var defaultNav []byte

type Link struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
	Icon  string `yaml:"icon"`
}

type Menu struct {
	Links  []Link `yaml:"links"`
	Logout Link   `yaml:"logout"`
}

// ActiveLink is a Link as rendered for one page.
type ActiveLink struct {
	Link
	Active bool
}

// Default returns the embedded menu.
func Default() (Menu, error) {
	return Parse(defaultNav)
}

func Parse(data []byte) (Menu, error) {
	var m Menu
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Menu{}, fmt.Errorf("[navigation Parse] %w", err)
	}
	for i, l := range m.Links {
		if l.Label == "" || !strings.HasPrefix(l.Href, "/") {
			return Menu{}, fmt.Errorf("[navigation Parse] link %d: label and absolute href required", i)
		}
	}
	if m.Logout.Href == "" {
		return Menu{}, fmt.Errorf("[navigation Parse] logout href required")
	}
	return m, nil
}

// For marks the link matching path as active.
func (m Menu) For(path string) []ActiveLink {
	out := make([]ActiveLink, 0, len(m.Links))
	for _, l := range m.Links {
		out = append(out, ActiveLink{Link: l, Active: l.Href == path})
	}
	return out
}
