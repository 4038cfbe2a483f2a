package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/spx/internal/services"
)

var _ list.Item = sectionItem{}

// sectionItem is one toggleable library section in the picker.
type sectionItem struct {
	section services.Section
	label   string
	detail  string
	chosen  bool
}

func (i sectionItem) FilterValue() string { return i.label }
func (i sectionItem) Description() string { return i.detail }
func (i sectionItem) Title() string {
	mark := " "
	if i.chosen {
		mark = "x"
	}
	return fmt.Sprintf("[%s] %s", mark, i.label)
}

// buildSectionItems lists every exportable section, checked per chosen.
func buildSectionItems(chosen map[services.Section]bool) []list.Item {
	sections := []struct {
		section services.Section
		label   string
		detail  string
	}{
		{services.SectionLiked, "Liked Songs & Albums", "saved tracks and albums from your library"},
		{services.SectionPlaylists, "Playlists", "your playlists with full tracklists"},
		{services.SectionTop, "Top Items", "most played artists and tracks"},
	}

	items := make([]list.Item, len(sections))
	for i, s := range sections {
		items[i] = sectionItem{
			section: s.section,
			label:   s.label,
			detail:  s.detail,
			chosen:  chosen[s.section],
		}
	}
	return items
}
