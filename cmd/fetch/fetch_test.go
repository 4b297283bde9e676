package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vzy-dashboard/backend/internal/config"
)

func TestErrorLine(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"both credentials", &config.ConfigError{Missing: []string{"JIRA_EMAIL", "JIRA_API_TOKEN"}}, "ERROR: JIRA_EMAIL and JIRA_API_TOKEN environment variables required."},
		{"token only", fmt.Errorf("init: %w", &config.ConfigError{Missing: []string{"JIRA_API_TOKEN"}}), "ERROR: JIRA_EMAIL and JIRA_API_TOKEN environment variables required."},
		{"domain", &config.ConfigError{Missing: []string{"JIRA_DOMAIN"}}, "ERROR: JIRA_DOMAIN environment variables required."},
		{"other", errors.New("boom"), "ERROR: boom"},
	}
	for _, tc := range cases {
		if got := errorLine(tc.err); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}
