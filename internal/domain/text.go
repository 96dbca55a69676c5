package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RichText is issue or comment text flattened to markdown. It decodes from
// either a plain JSON string or an Atlassian Document Format tree.
type RichText string

// UnmarshalJSON accepts null, a string, or an ADF document.
func (r *RichText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RichText(s)
		return nil
	}
	var node adfNode
	if err := json.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("decode rich text: %w", err)
	}
	var b strings.Builder
	renderADF(&b, node, "")
	*r = RichText(strings.TrimSpace(b.String()))
	return nil
}

// String returns the flattened text.
func (r RichText) String() string {
	return string(r)
}

// adfNode is the subset of the ADF node shape jdeck understands.
type adfNode struct {
	Type    string         `json:"type"`
	Text    string         `json:"text"`
	Attrs   map[string]any `json:"attrs"`
	Content []adfNode      `json:"content"`
}

func renderADF(b *strings.Builder, n adfNode, indent string) {
	switch n.Type {
	case "text":
		b.WriteString(n.Text)
	case "hardBreak":
		b.WriteString("\n")
	case "mention", "emoji":
		if text, ok := n.Attrs["text"].(string); ok {
			b.WriteString(text)
		}
	case "paragraph":
		renderChildren(b, n, indent)
		b.WriteString("\n\n")
	case "heading":
		level := 1
		if v, ok := n.Attrs["level"].(float64); ok && v >= 1 && v <= 6 {
			level = int(v)
		}
		b.WriteString(strings.Repeat("#", level) + " ")
		renderChildren(b, n, indent)
		b.WriteString("\n\n")
	case "bulletList", "orderedList":
		for i, item := range n.Content {
			marker := "- "
			if n.Type == "orderedList" {
				marker = fmt.Sprintf("%d. ", i+1)
			}
			b.WriteString(indent + marker)
			var inner strings.Builder
			renderChildren(&inner, item, indent+"  ")
			b.WriteString(strings.TrimSpace(inner.String()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	case "codeBlock":
		b.WriteString("```\n")
		renderChildren(b, n, indent)
		b.WriteString("\n```\n\n")
	case "rule":
		b.WriteString("---\n\n")
	default:
		renderChildren(b, n, indent)
	}
}

func renderChildren(b *strings.Builder, n adfNode, indent string) {
	for _, child := range n.Content {
		renderADF(b, child, indent)
	}
}

// ADFDocument wraps plain text into an ADF document, one paragraph per line.
func ADFDocument(text string) map[string]any {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	content := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		paragraph := map[string]any{"type": "paragraph"}
		if line != "" {
			paragraph["content"] = []map[string]any{{"type": "text", "text": line}}
		}
		content = append(content, paragraph)
	}
	return map[string]any{
		"type":    "doc",
		"version": 1,
		"content": content,
	}
}

// Timestamp is a server timestamp. The zero value means the field was absent.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02",
}

// ParseTimestamp parses any layout the server is known to emit.
func ParseTimestamp(raw string) (Timestamp, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Timestamp{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// UnmarshalJSON accepts null or a timestamp string.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode timestamp: %w", err)
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON writes RFC3339 or null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// Short renders the timestamp as a local date and time, or "-".
func (t Timestamp) Short() string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
