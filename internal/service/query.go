package service

import (
	"strings"

	"github.com/vzy-dashboard/backend/internal/models"
)

// IssueFilter selects issue summaries out of a detail document. Empty fields
// match everything.
type IssueFilter struct {
	Type       string `form:"type" validate:"omitempty,oneof=bugs tasks subtasks stories"`
	Platform   string `form:"platform"`
	Status     string `form:"status"`
	Assignee   string `form:"assignee"`
	Sprint     string `form:"sprint"`
	FixVersion string `form:"fixversion"`
	Text       string `form:"q"`
}

// FilterIssues returns the matching summaries, bucket by bucket in the order
// bugs, tasks, subtasks, stories.
func FilterIssues(detail models.DetailedAggregate, f IssueFilter) []models.IssueSummary {
	buckets := []struct {
		name  string
		items []models.IssueSummary
	}{
		{"bugs", detail.Bugs},
		{"tasks", detail.Tasks},
		{"subtasks", detail.Subtasks},
		{"stories", detail.Stories},
	}

	out := []models.IssueSummary{}
	for _, b := range buckets {
		if f.Type != "" && !strings.EqualFold(f.Type, b.name) {
			continue
		}
		for _, it := range b.items {
			if f.matches(it) {
				out = append(out, it)
			}
		}
	}
	return out
}

func (f IssueFilter) matches(it models.IssueSummary) bool {
	if f.Platform != "" && !strings.EqualFold(f.Platform, string(it.Platform)) {
		return false
	}
	if f.Status != "" && !strings.EqualFold(f.Status, it.Status) {
		return false
	}
	if f.Assignee != "" && !strings.EqualFold(f.Assignee, it.Assignee) {
		return false
	}
	if f.Sprint != "" && !strings.EqualFold(f.Sprint, it.Sprint) {
		return false
	}
	if f.FixVersion != "" && !hasVersion(it.FixVersion, f.FixVersion) {
		return false
	}
	if f.Text != "" {
		q := strings.ToLower(f.Text)
		if !strings.Contains(strings.ToLower(it.Key), q) && !strings.Contains(strings.ToLower(it.Summary), q) {
			return false
		}
	}
	return true
}

func hasVersion(joined, want string) bool {
	if joined == "" {
		return false
	}
	for _, v := range strings.Split(joined, ", ") {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
