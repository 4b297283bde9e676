package service

import (
	"strings"

	"github.com/vzy-dashboard/backend/internal/models"
)

const (
	defaultPriority = "None"
	defaultAssignee = "Unassigned"
	noSprint        = "No Sprint"
)

// BuildDetail indexes every issue by type, assignee, priority, sprint and
// release in one pass.
func (t Taxonomy) BuildDetail(issues []models.Issue) models.DetailedAggregate {
	agg := models.DetailedAggregate{
		Bugs:              []models.IssueSummary{},
		Tasks:             []models.IssueSummary{},
		Subtasks:          []models.IssueSummary{},
		Stories:           []models.IssueSummary{},
		Sprints:           map[string]*models.SprintStats{},
		Releases:          map[string]*models.ReleaseStats{},
		AssigneeWorkload:  map[string]*models.TypeCounts{},
		PriorityBreakdown: map[string]int{},
	}

	for _, issue := range issues {
		f := issue.Fields
		kind := KindOf(f.TypeName())
		status := f.StatusName()
		priority := defaultPriority
		if f.Priority != nil {
			priority = f.Priority.NameOr(defaultPriority)
		}
		assignee := defaultAssignee
		if f.Assignee != nil {
			assignee = f.Assignee.DisplayNameOr(defaultAssignee)
		}
		platform, ok := t.Classify(issue)
		if !ok {
			platform = models.PlatformUnknown
		}
		sprint := sprintName(issue)

		versions := make([]string, 0, len(f.FixVersions))
		for _, v := range f.FixVersions {
			if v.Name != "" {
				versions = append(versions, v.Name)
			}
		}

		summary := models.IssueSummary{
			Key:        issue.Key,
			Summary:    f.Summary,
			Status:     status,
			Priority:   priority,
			Assignee:   assignee,
			Platform:   platform,
			Created:    truncateDate(f.Created),
			Updated:    truncateDate(f.Updated),
			DueDate:    truncateDate(f.DueDate),
			Sprint:     sprint,
			Type:       f.TypeName(),
			FixVersion: strings.Join(versions, ", "),
		}
		if summary.Sprint == "" {
			summary.Sprint = noSprint
		}

		switch kind {
		case KindBug:
			agg.Bugs = append(agg.Bugs, summary)
		case KindTask:
			agg.Tasks = append(agg.Tasks, summary)
		case KindSubtask:
			agg.Subtasks = append(agg.Subtasks, summary)
		case KindStory:
			agg.Stories = append(agg.Stories, summary)
		}

		load, ok := agg.AssigneeWorkload[assignee]
		if !ok {
			load = &models.TypeCounts{}
			agg.AssigneeWorkload[assignee] = load
		}
		kind.increment(load)

		if kind == KindBug {
			agg.PriorityBreakdown[priority]++
		}

		// Only a real sprint name opens a bucket; "No Sprint" never does.
		if sprint != "" {
			st, ok := agg.Sprints[sprint]
			if !ok {
				st = &models.SprintStats{Statuses: map[string]int{}}
				agg.Sprints[sprint] = st
			}
			kind.increment(&st.TypeCounts)
			st.Statuses[status]++
		}

		for _, v := range f.FixVersions {
			if v.Name == "" {
				continue
			}
			rel, ok := agg.Releases[v.Name]
			if !ok {
				rel = &models.ReleaseStats{
					Released:    v.Released,
					ReleaseDate: v.ReleaseDate,
					Description: v.Description,
					Statuses:    map[string]int{},
					Issues:      []models.ReleaseIssue{},
				}
				agg.Releases[v.Name] = rel
			}
			kind.increment(&rel.TypeCounts)
			rel.Statuses[status]++
			rel.Issues = append(rel.Issues, models.ReleaseIssue{
				Key:      issue.Key,
				Summary:  f.Summary,
				Status:   status,
				Type:     f.TypeName(),
				Priority: priority,
				Assignee: assignee,
				Platform: platform,
			})
		}
	}
	return agg
}

// truncateDate keeps the date part of a Jira timestamp.
func truncateDate(s string) string {
	r := []rune(s)
	if len(r) > 10 {
		return string(r[:10])
	}
	return s
}
