package service

import (
	"strings"

	"github.com/vzy-dashboard/backend/internal/models"
)

// Kind is the detail bucket an issue type maps to.
type Kind int

const (
	KindNone Kind = iota
	KindBug
	KindTask
	KindSubtask
	KindStory
)

func KindOf(typeName string) Kind {
	switch strings.ToUpper(typeName) {
	case "BUG":
		return KindBug
	case "TASK":
		return KindTask
	case "SUB-TASK":
		return KindSubtask
	case "STORY":
		return KindStory
	}
	return KindNone
}

func IsBug(issue models.Issue) bool {
	return KindOf(issue.Fields.TypeName()) == KindBug
}

// TrackedStatus returns the upper-cased status when it is one of the tracked
// statuses.
func (t Taxonomy) TrackedStatus(issue models.Issue) (string, bool) {
	s := strings.ToUpper(issue.Fields.StatusName())
	for _, tracked := range t.Statuses {
		if s == tracked {
			return s, true
		}
	}
	return "", false
}

func (k Kind) increment(c *models.TypeCounts) {
	switch k {
	case KindBug:
		c.Bugs++
	case KindTask:
		c.Tasks++
	case KindSubtask:
		c.Subtasks++
	case KindStory:
		c.Stories++
	}
	c.Total++
}
