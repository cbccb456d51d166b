package casestudy

import "time"

// CaseStudy is a single portfolio entry. Content holds the rendered
// notebook HTML once one has been uploaded.
type CaseStudy struct {
	ID          string
	Title       string
	Description string
	TechStack   string
	Content     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
