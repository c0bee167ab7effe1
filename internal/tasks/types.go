package tasks

import "time"

// Database is a task database the integration can see.
type Database struct {
	ID    string
	Title string
	URL   string
}

// Task is one row of a task database.
type Task struct {
	ID        string
	Title     string
	URL       string
	CreatedAt time.Time
}

// User is a workspace member tasks can be assigned to.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"` // "person" or "bot"
	Email string `json:"email,omitempty"`
}

// NewTask is the input for CreateTask. Title is required.
type NewTask struct {
	DatabaseID string
	Title      string
	DueDate    string // ISO date, optional
	AssigneeID string // optional
}

// Wire shapes. The backend wraps every list in a cursor envelope and
// describes rich text as an array of fragments.

type cursorList struct {
	Results    []pageObject `json:"results"`
	HasMore    bool         `json:"has_more"`
	NextCursor string       `json:"next_cursor"`
}

type userList struct {
	Results    []User `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

type richText struct {
	PlainText string `json:"plain_text"`
	Text      struct {
		Content string `json:"content"`
	} `json:"text"`
}

type pageObject struct {
	Object      string                  `json:"object"` // "page" or "database"
	ID          string                  `json:"id"`
	URL         string                  `json:"url"`
	CreatedTime time.Time               `json:"created_time"`
	Title       []richText              `json:"title"` // databases only
	Properties  map[string]pageProperty `json:"properties"`
}

type pageProperty struct {
	Type  string     `json:"type"`
	Title []richText `json:"title"`
}

func plain(parts []richText) string {
	var s string
	for _, p := range parts {
		if p.PlainText != "" {
			s += p.PlainText
		} else {
			s += p.Text.Content
		}
	}
	return s
}

// titleOf extracts the page title from whichever property carries it.
func (p pageObject) titleOf() string {
	if p.Object == "database" {
		return plain(p.Title)
	}
	for _, prop := range p.Properties {
		if prop.Type == "title" {
			return plain(prop.Title)
		}
	}
	return ""
}
