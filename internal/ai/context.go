package ai

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vzy-dashboard/backend/internal/models"
)

const maxIssueLines = 200

var openStatuses = map[string]bool{
	"OPEN": true, "IN PROGRESS": true, "REOPENED": true, "IN REVIEW": true, "ISSUE ACCEPTED": true, "PARKED": true,
}

// BuildContext renders the latest reports as plain text for the system
// message.
func BuildContext(dash models.DashboardReport, detail models.DetailReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project %s, data as of %s, %d issues fetched.\n", dash.Project, dash.UpdatedAt, dash.TotalIssuesFetched)

	b.WriteString("\nOpen bugs by platform:\n")
	for _, p := range sortedKeys(dash.Data) {
		row := dash.Data[models.Platform(p)]
		total := 0
		parts := []string{}
		for _, s := range sortedKeys(row) {
			if row[s] > 0 {
				parts = append(parts, fmt.Sprintf("%s %d", s, row[s]))
				total += row[s]
			}
		}
		if total == 0 {
			continue
		}
		fmt.Fprintf(&b, "- %s: %d (%s)\n", p, total, strings.Join(parts, ", "))
	}

	b.WriteString("\nWorkload by assignee:\n")
	for _, name := range sortedKeys(detail.AssigneeWorkload) {
		w := detail.AssigneeWorkload[name]
		fmt.Fprintf(&b, "- %s: %d total (bugs %d, tasks %d, subtasks %d, stories %d)\n", name, w.Total, w.Bugs, w.Tasks, w.Subtasks, w.Stories)
	}

	if len(detail.Releases) > 0 {
		b.WriteString("\nReleases:\n")
		for _, name := range sortedKeys(detail.Releases) {
			r := detail.Releases[name]
			state := "unreleased"
			if r.Released {
				state = "released"
			}
			fmt.Fprintf(&b, "- %s (%s %s): %d issues, %d bugs\n", name, state, r.ReleaseDate, r.Total, r.Bugs)
		}
	}

	if len(detail.Sprints) > 0 {
		b.WriteString("\nSprints:\n")
		for _, name := range sortedKeys(detail.Sprints) {
			s := detail.Sprints[name]
			fmt.Fprintf(&b, "- %s: %d issues, %d bugs\n", name, s.Total, s.Bugs)
		}
	}

	b.WriteString("\nOpen bugs:\n")
	n := 0
	for _, bug := range detail.Bugs {
		if !openStatuses[strings.ToUpper(bug.Status)] {
			continue
		}
		if n == maxIssueLines {
			b.WriteString("- ...\n")
			break
		}
		fmt.Fprintf(&b, "- %s [%s] %s | %s | %s | %s | sprint %s\n", bug.Key, bug.Platform, bug.Summary, bug.Status, bug.Priority, bug.Assignee, bug.Sprint)
		n++
	}
	return b.String()
}

func sortedKeys[K ~string, V any](m map[K]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}
