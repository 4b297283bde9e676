package models

type Platform string

const (
	PlatformAndroid      Platform = "ANDROID"
	PlatformATV          Platform = "ATV"
	PlatformCMS          Platform = "CMS"
	PlatformCMSAdaptor   Platform = "CMS Adaptor"
	PlatformCMSDashboard Platform = "CMS Dashboard"
	PlatformDishIT       Platform = "DishIT"
	PlatformIOS          Platform = "IOS"
	PlatformKaltura      Platform = "Kaltura"
	PlatformLGTV         Platform = "LG_TV"
	PlatformMobile       Platform = "Mobile"
	PlatformSamTV        Platform = "SAM_TV"
	PlatformWeb          Platform = "WEB"
	PlatformUnknown      Platform = "Unknown"
)

// Matrix counts bugs per platform and tracked status.
type Matrix map[Platform]map[string]int

// Diagnostics describes how the bugs of one run were tallied. MatchedCounted,
// StatusUntracked and PlatformUnmatched always add up to TotalBugs.
type Diagnostics struct {
	TotalIssues       int            `json:"total_issues"`
	TotalBugs         int            `json:"total_bugs"`
	MatchedCounted    int            `json:"matched_counted"`
	StatusUntracked   int            `json:"status_untracked"`
	PlatformUnmatched int            `json:"platform_unmatched"`
	BugStatuses       map[string]int `json:"bug_statuses"`
}

// DashboardReport is the document written to data.json.
type DashboardReport struct {
	Data               Matrix `json:"data"`
	UpdatedAt          string `json:"updated_at"`
	TotalIssuesFetched int    `json:"total_issues_fetched"`
	Project            string `json:"project"`
}

type IssueSummary struct {
	Key        string   `json:"key"`
	Summary    string   `json:"summary"`
	Status     string   `json:"status"`
	Priority   string   `json:"priority"`
	Assignee   string   `json:"assignee"`
	Platform   Platform `json:"platform"`
	Created    string   `json:"created"`
	Updated    string   `json:"updated"`
	DueDate    string   `json:"duedate"`
	Sprint     string   `json:"sprint"`
	Type       string   `json:"type"`
	FixVersion string   `json:"fixversion"`
}

type ReleaseIssue struct {
	Key      string   `json:"key"`
	Summary  string   `json:"summary"`
	Status   string   `json:"status"`
	Type     string   `json:"type"`
	Priority string   `json:"priority"`
	Assignee string   `json:"assignee"`
	Platform Platform `json:"platform"`
}

type TypeCounts struct {
	Bugs     int `json:"bugs"`
	Tasks    int `json:"tasks"`
	Subtasks int `json:"subtasks"`
	Stories  int `json:"stories"`
	Total    int `json:"total"`
}

type SprintStats struct {
	TypeCounts
	Statuses map[string]int `json:"statuses"`
}

type ReleaseStats struct {
	Released    bool   `json:"released"`
	ReleaseDate string `json:"releaseDate"`
	Description string `json:"description"`
	TypeCounts
	Statuses map[string]int `json:"statuses"`
	Issues   []ReleaseIssue `json:"issues"`
}

type DetailedAggregate struct {
	Bugs              []IssueSummary           `json:"bugs"`
	Tasks             []IssueSummary           `json:"tasks"`
	Subtasks          []IssueSummary           `json:"subtasks"`
	Stories           []IssueSummary           `json:"stories"`
	Sprints           map[string]*SprintStats  `json:"sprints"`
	Releases          map[string]*ReleaseStats `json:"releases"`
	AssigneeWorkload  map[string]*TypeCounts   `json:"assignee_workload"`
	PriorityBreakdown map[string]int           `json:"priority_breakdown"`
}

// DetailReport is the document written to detailed_data.json.
type DetailReport struct {
	DetailedAggregate
	UpdatedAt   string `json:"updated_at"`
	TotalIssues int    `json:"total_issues"`
}
