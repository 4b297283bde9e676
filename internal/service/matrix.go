package service

import "github.com/vzy-dashboard/backend/internal/models"

func (t Taxonomy) seedMatrix() models.Matrix {
	m := make(models.Matrix, len(t.Platforms)+1)
	for _, p := range t.Platforms {
		m[p] = t.zeroRow()
	}
	return m
}

func (t Taxonomy) zeroRow() map[string]int {
	row := make(map[string]int, len(t.Statuses))
	for _, s := range t.Statuses {
		row[s] = 0
	}
	return row
}

// BuildMatrix tallies bugs by platform and tracked status. Every bug lands in
// exactly one of the three diagnostic counters.
func (t Taxonomy) BuildMatrix(issues []models.Issue) (models.Matrix, models.Diagnostics) {
	matrix := t.seedMatrix()
	diag := models.Diagnostics{
		TotalIssues: len(issues),
		BugStatuses: map[string]int{},
	}

	for _, issue := range issues {
		if !IsBug(issue) {
			continue
		}
		diag.TotalBugs++
		diag.BugStatuses[issue.Fields.StatusName()]++

		platform, matched := t.Classify(issue)
		status, tracked := t.TrackedStatus(issue)
		switch {
		case tracked:
			if !matched {
				platform = models.PlatformUnknown
			}
			row, ok := matrix[platform]
			if !ok {
				row = t.zeroRow()
				matrix[platform] = row
			}
			row[status]++
			diag.MatchedCounted++
		case matched:
			diag.StatusUntracked++
		default:
			diag.PlatformUnmatched++
		}
	}
	return matrix, diag
}
