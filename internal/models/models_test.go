package models

import (
	"encoding/json"
	"testing"
)

func decodeIssue(t *testing.T, doc string) Issue {
	t.Helper()
	var issue Issue
	if err := json.Unmarshal([]byte(doc), &issue); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return issue
}

func TestIssueFieldsWrongTypedScalars(t *testing.T) {
	issue := decodeIssue(t, `{"key":"VZY-1","fields":{
		"summary": 42,
		"status": "Open",
		"priority": {"name": 3},
		"assignee": {"displayName": "Asha", "accountId": 7},
		"issuetype": {"name": "Bug"},
		"created": ["2024-01-01"]
	}}`)

	f := issue.Fields
	if f.Summary != "" || f.Created != "" {
		t.Fatalf("wrong-typed scalars should be empty, got %q %q", f.Summary, f.Created)
	}
	if f.Status != nil {
		t.Fatalf("non-object status should be absent, got %+v", f.Status)
	}
	if f.PriorityName() != "" || f.Priority == nil {
		t.Fatalf("priority object should survive with an empty name, got %+v", f.Priority)
	}
	if f.AssigneeName() != "Asha" {
		t.Fatalf("expected assignee Asha, got %q", f.AssigneeName())
	}
	if f.TypeName() != "Bug" {
		t.Fatalf("expected type Bug, got %q", f.TypeName())
	}
}

func TestIssueFieldsMixedLists(t *testing.T) {
	issue := decodeIssue(t, `{"key":"VZY-2","fields":{
		"components": [{"name": "WEB"}, {"id": 5, "name": "x"}, "bare", null],
		"labels": ["ios", 9, "tv"],
		"fixVersions": [{"name": "R2", "released": true}, {"name": "R3", "released": "no"}]
	}}`)

	f := issue.Fields
	if len(f.Components) != 2 || f.Components[0].Name != "WEB" || f.Components[1].Name != "x" {
		t.Fatalf("unexpected components %+v", f.Components)
	}
	if len(f.Labels) != 2 || f.Labels[0] != "ios" || f.Labels[1] != "tv" {
		t.Fatalf("unexpected labels %v", f.Labels)
	}
	if len(f.FixVersions) != 2 {
		t.Fatalf("expected both fix versions, got %+v", f.FixVersions)
	}
	if !f.FixVersions[0].Released || f.FixVersions[1].Name != "R3" || f.FixVersions[1].Released {
		t.Fatalf("unexpected fix versions %+v", f.FixVersions)
	}
}

func TestIssueFieldsNonArrayList(t *testing.T) {
	issue := decodeIssue(t, `{"key":"VZY-3","fields":{"labels":"ios","components":{"name":"WEB"}}}`)
	if issue.Fields.Labels != nil || issue.Fields.Components != nil {
		t.Fatalf("non-array lists should be absent, got %+v", issue.Fields)
	}
}

func TestIssueFieldsCustomOrder(t *testing.T) {
	issue := decodeIssue(t, `{"key":"VZY-4","fields":{"customfield_2":"b","summary":"s","customfield_1":1.5}}`)
	c := issue.Fields.Custom
	if len(c) != 2 || c[0].ID != "customfield_2" || c[1].ID != "customfield_1" {
		t.Fatalf("custom fields out of order: %+v", c)
	}
	if n, ok := c[1].Value.(json.Number); !ok || n.String() != "1.5" {
		t.Fatalf("expected json.Number 1.5, got %#v", c[1].Value)
	}
}

func TestKPIDocumentKeepsUnknownKeys(t *testing.T) {
	in := `{"_comment":5,"updated_at":"2024-05-01T00:00:00Z","apps":{"A":{"dau":"1"}},"web":[],"notes":"Q2 <baseline>"}`
	var doc KPIDocument
	if err := json.Unmarshal([]byte(in), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.UpdatedAt != "2024-05-01T00:00:00Z" || doc.Apps["A"]["dau"] != "1" {
		t.Fatalf("known keys not decoded: %+v", doc)
	}
	if doc.Comment != "" || doc.Web != nil {
		t.Fatalf("wrong-typed known keys should stay out of the typed fields: %+v", doc)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if back["_comment"] != float64(5) || back["notes"] != "Q2 <baseline>" {
		t.Fatalf("extra keys lost: %s", out)
	}
	if web, ok := back["web"].([]any); !ok || len(web) != 0 {
		t.Fatalf("malformed web section should be written back as entered: %s", out)
	}
}
