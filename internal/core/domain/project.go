package domain

import "time"

// ProjectCategory groups portfolio entries.
type ProjectCategory string

const (
	CategoryWeb        ProjectCategory = "web"
	CategoryMobile     ProjectCategory = "mobile"
	CategoryDesign     ProjectCategory = "design"
	CategoryConsulting ProjectCategory = "consulting"
	CategoryOther      ProjectCategory = "other"
)

// ProjectStatus is the delivery state of a portfolio entry.
type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "planning"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectArchived   ProjectStatus = "archived"
)

// FeaturedProjectsLimit caps the featured showcase.
const FeaturedProjectsLimit = 6

// Project is a portfolio entry shown on the public site.
type Project struct {
	ID               string          `json:"id" db:"id"`
	Title            string          `json:"title" db:"title"`
	Description      string          `json:"description" db:"description"`
	ShortDescription string          `json:"shortDescription,omitempty" db:"short_description"`
	Category         ProjectCategory `json:"category" db:"category"`
	Technologies     []string        `json:"technologies" db:"technologies"`
	ImageURL         string          `json:"imageUrl,omitempty" db:"image_url"`
	ProjectURL       string          `json:"projectUrl,omitempty" db:"project_url"`
	GithubURL        string          `json:"githubUrl,omitempty" db:"github_url"`
	ClientName       string          `json:"clientName,omitempty" db:"client_name"`
	CompletionDate   *time.Time      `json:"completionDate,omitempty" db:"completion_date"`
	Featured         bool            `json:"featured" db:"featured"`
	Status           ProjectStatus   `json:"status" db:"status"`
	DisplayOrder     int             `json:"displayOrder" db:"display_order"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time       `json:"updatedAt" db:"updated_at"`
}

// ProjectFilter narrows the public project listing.
type ProjectFilter struct {
	Category ProjectCategory
	Featured *bool
	Status   ProjectStatus
	Page     Page
}
