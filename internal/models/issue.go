package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const customFieldPrefix = "customfield_"

type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`
}

type NamedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	hasName bool
}

type User struct {
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`

	hasDisplayName bool
}

// NameOr returns the name, or def when the object carried no name key.
// An explicit empty name stays empty.
func (r NamedRef) NameOr(def string) string {
	if r.Name != "" || r.hasName {
		return r.Name
	}
	return def
}

// DisplayNameOr returns the display name, or def when the object carried none.
func (u User) DisplayNameOr(def string) string {
	if u.DisplayName != "" || u.hasDisplayName {
		return u.DisplayName
	}
	return def
}

type FixVersion struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Released    bool   `json:"released"`
	ReleaseDate string `json:"releaseDate"`
	Description string `json:"description"`
}

// CustomField is one customfield_* entry. Value holds whatever the API returned
// (string, number, bool, map[string]any or []any).
type CustomField struct {
	ID    string
	Value any
}

// IssueFields is the subset of the Jira field set the dashboard reads. Custom
// fields are kept in document order.
type IssueFields struct {
	Summary     string        `json:"summary"`
	IssueType   *NamedRef     `json:"issuetype"`
	Status      *NamedRef     `json:"status"`
	Priority    *NamedRef     `json:"priority"`
	Assignee    *User         `json:"assignee"`
	Labels      []string      `json:"labels"`
	Components  []NamedRef    `json:"components"`
	Created     string        `json:"created"`
	Updated     string        `json:"updated"`
	DueDate     string        `json:"duedate"`
	FixVersions []FixVersion  `json:"fixVersions"`
	Custom      []CustomField `json:"-"`
}

// UnmarshalJSON walks the field object token by token. Known fields that fail
// to decode (wrong JSON type) are left at their zero value.
func (f *IssueFields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("issue fields: expected object, got %v", tok)
	}

	*f = IssueFields{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("issue fields: unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("issue fields: %s: %w", key, err)
		}

		switch key {
		case "summary":
			decodeLoose(raw, &f.Summary)
		case "issuetype":
			decodeLoose(raw, &f.IssueType)
		case "status":
			decodeLoose(raw, &f.Status)
		case "priority":
			decodeLoose(raw, &f.Priority)
		case "assignee":
			decodeLoose(raw, &f.Assignee)
		case "labels":
			f.Labels = decodeList[string](raw)
		case "components":
			f.Components = decodeList[NamedRef](raw)
		case "created":
			decodeLoose(raw, &f.Created)
		case "updated":
			decodeLoose(raw, &f.Updated)
		case "duedate":
			decodeLoose(raw, &f.DueDate)
		case "fixVersions":
			f.FixVersions = decodeList[FixVersion](raw)
		default:
			if !strings.HasPrefix(key, customFieldPrefix) {
				continue
			}
			var v any
			vd := json.NewDecoder(bytes.NewReader(raw))
			vd.UseNumber()
			if err := vd.Decode(&v); err != nil {
				return fmt.Errorf("issue fields: %s: %w", key, err)
			}
			f.Custom = append(f.Custom, CustomField{ID: key, Value: v})
		}
	}

	_, err = dec.Token()
	return err
}

func decodeLoose[T any](raw json.RawMessage, dst *T) bool {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	*dst = v
	return true
}

// decodeList decodes a JSON array element by element, skipping nulls and
// elements that do not decode.
func decodeList[T any](raw json.RawMessage) []T {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			continue
		}
		var v T
		if err := json.Unmarshal(item, &v); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// objectFields splits a JSON object into its members.
func objectFields(data []byte) (map[string]json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("expected object, got null")
	}
	return m, nil
}

// The reference types below decode member by member so one odd member does
// not cost the whole object.

func (r *NamedRef) UnmarshalJSON(data []byte) error {
	m, err := objectFields(data)
	if err != nil {
		return err
	}
	*r = NamedRef{}
	decodeLoose(m["id"], &r.ID)
	r.hasName = decodeLoose(m["name"], &r.Name)
	return nil
}

func (u *User) UnmarshalJSON(data []byte) error {
	m, err := objectFields(data)
	if err != nil {
		return err
	}
	*u = User{}
	decodeLoose(m["accountId"], &u.AccountID)
	u.hasDisplayName = decodeLoose(m["displayName"], &u.DisplayName)
	return nil
}

func (v *FixVersion) UnmarshalJSON(data []byte) error {
	m, err := objectFields(data)
	if err != nil {
		return err
	}
	*v = FixVersion{}
	decodeLoose(m["id"], &v.ID)
	decodeLoose(m["name"], &v.Name)
	decodeLoose(m["released"], &v.Released)
	decodeLoose(m["releaseDate"], &v.ReleaseDate)
	decodeLoose(m["description"], &v.Description)
	return nil
}

func (f IssueFields) TypeName() string {
	if f.IssueType == nil {
		return ""
	}
	return f.IssueType.Name
}

func (f IssueFields) StatusName() string {
	if f.Status == nil {
		return ""
	}
	return f.Status.Name
}

func (f IssueFields) PriorityName() string {
	if f.Priority == nil {
		return ""
	}
	return f.Priority.Name
}

func (f IssueFields) AssigneeName() string {
	if f.Assignee == nil {
		return ""
	}
	return f.Assignee.DisplayName
}
