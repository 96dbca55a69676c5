package domain

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Issue is an immutable snapshot of one remote issue.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`
}

// IssueFields holds the subset of issue fields jdeck reads.
type IssueFields struct {
	Summary     string       `json:"summary"`
	Description RichText     `json:"description,omitzero"`
	Status      Status       `json:"status"`
	Assignee    *User        `json:"assignee,omitempty"`
	Reporter    *User        `json:"reporter,omitempty"`
	Priority    *Priority    `json:"priority,omitempty"`
	IssueType   IssueType    `json:"issuetype"`
	Created     Timestamp    `json:"created,omitzero"`
	Updated     Timestamp    `json:"updated,omitzero"`
	Comment     *CommentPage `json:"comment,omitempty"`
}

// Status is a workflow status and its category.
type Status struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Category StatusCategory `json:"statusCategory"`
}

// StatusCategory groups statuses into to-do, in-progress and done buckets.
type StatusCategory struct {
	ID   int    `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// User is a person referenced by an issue or comment.
type User struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress,omitempty"`
}

// Priority is an issue priority.
type Priority struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IssueType is an issue type such as Story or Bug.
type IssueType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CommentPage is the embedded comment list of an issue.
type CommentPage struct {
	Comments []Comment `json:"comments"`
	Total    int       `json:"total"`
}

// Comment is one issue comment.
type Comment struct {
	ID      string    `json:"id"`
	Body    RichText  `json:"body"`
	Author  *User     `json:"author,omitempty"`
	Created Timestamp `json:"created,omitzero"`
	Updated Timestamp `json:"updated,omitzero"`
}

// Comments returns the issue comments in server order.
func (i Issue) Comments() []Comment {
	if i.Fields.Comment == nil {
		return nil
	}
	return i.Fields.Comment.Comments
}

// AssigneeName returns the assignee display name or "Unassigned".
func (i Issue) AssigneeName() string {
	if i.Fields.Assignee == nil || strings.TrimSpace(i.Fields.Assignee.DisplayName) == "" {
		return "Unassigned"
	}
	return i.Fields.Assignee.DisplayName
}

// PriorityName returns the priority name or an empty string.
func (i Issue) PriorityName() string {
	if i.Fields.Priority == nil {
		return ""
	}
	return i.Fields.Priority.Name
}

// Transition is a legal status change for one issue.
type Transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	To   Status `json:"to"`
}

// IssueUpdate lists the issue fields to change. Nil fields are left alone.
type IssueUpdate struct {
	Summary     *string
	Description *string
}

// Empty reports whether the update carries no field.
func (u IssueUpdate) Empty() bool {
	return u.Summary == nil && u.Description == nil
}

// CompareIssueKeys orders keys by project prefix, then by numeric suffix.
func CompareIssueKeys(a, b string) int {
	ap, an, aok := splitIssueKey(a)
	bp, bn, bok := splitIssueKey(b)
	if !aok || !bok || ap != bp {
		return strings.Compare(a, b)
	}
	return cmp.Compare(an, bn)
}

// SortIssuesByKeyDesc sorts issues newest key first.
func SortIssuesByKeyDesc(issues []Issue) {
	slices.SortStableFunc(issues, func(a, b Issue) int {
		return CompareIssueKeys(b.Key, a.Key)
	})
}

func splitIssueKey(key string) (string, int, bool) {
	idx := strings.LastIndexByte(key, '-')
	if idx <= 0 || idx == len(key)-1 {
		return "", 0, false
	}
	n, err := strconv.Atoi(key[idx+1:])
	if err != nil {
		return "", 0, false
	}
	return key[:idx], n, true
}
