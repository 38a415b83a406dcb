package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/radar/internal/models"
)

var _ list.Item = releaseItem{}

// releaseItem wraps [models.ClassifiedRelease] to implement [list.Item].
type releaseItem struct {
	release models.ClassifiedRelease
}

func (i releaseItem) FilterValue() string { return i.release.Entry.Title }
func (i releaseItem) Title() string       { return i.release.Entry.Title }
func (i releaseItem) Description() string {
	desc := fmt.Sprintf("%s • %s • %s",
		i.release.PrimaryArtist.Name,
		i.release.Entry.Type,
		i.release.Entry.DateString(),
	)
	if len(i.release.Collaborators) > 0 {
		desc = fmt.Sprintf("%s • with %s", desc, strings.Join(i.release.Collaborators, ", "))
	}
	return desc
}
