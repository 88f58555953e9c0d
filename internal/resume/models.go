package resume

import "time"

// DefaultTemplateID is the presentation template assigned to fresh documents.
const DefaultTemplateID = "modern"

// PersonalInfo is the contact block shown at the top of a résumé. The merge
// engine always takes it from the original document.
type PersonalInfo struct {
	Name     string `json:"name" bson:"name"`
	Title    string `json:"title" bson:"title"`
	Phone    string `json:"phone" bson:"phone"`
	Email    string `json:"email" bson:"email"`
	LinkedIn string `json:"linkedin,omitempty" bson:"linkedin,omitempty"`
	Website  string `json:"website,omitempty" bson:"website,omitempty"`
}

type Experience struct {
	ID          string `json:"id" bson:"id" validate:"required"`
	JobTitle    string `json:"jobTitle" bson:"jobTitle"`
	Company     string `json:"company" bson:"company"`
	StartDate   string `json:"startDate" bson:"startDate"`
	EndDate     string `json:"endDate" bson:"endDate"`
	Description string `json:"description" bson:"description"`
}

type Project struct {
	ID          string `json:"id" bson:"id" validate:"required"`
	Name        string `json:"name" bson:"name"`
	Description string `json:"description" bson:"description"`
	LiveLink    string `json:"liveLink,omitempty" bson:"liveLink,omitempty"`
	RepoLink    string `json:"repoLink,omitempty" bson:"repoLink,omitempty"`
}

type Education struct {
	ID          string `json:"id" bson:"id" validate:"required"`
	Institution string `json:"institution" bson:"institution"`
	Degree      string `json:"degree" bson:"degree"`
	StartDate   string `json:"startDate" bson:"startDate"`
	EndDate     string `json:"endDate" bson:"endDate"`
}

// Document is one version of a user's résumé.
//
// VersionID and CreatedAt are owned by the version store: whatever a caller
// or generator puts there is overwritten when the document becomes active.
type Document struct {
	VersionID   string    `json:"versionId" bson:"versionId"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UserID      string    `json:"userId" bson:"userId"`
	Username    string    `json:"username" bson:"username"`
	TemplateID  string    `json:"templateId" bson:"templateId"`
	IsPublished bool      `json:"isPublished" bson:"isPublished"`

	PersonalInfo PersonalInfo `json:"personalInfo" bson:"personalInfo"`

	Summary    string       `json:"summary" bson:"summary"`
	Experience []Experience `json:"experience" bson:"experience" validate:"unique=ID,dive"`
	Projects   []Project    `json:"projects" bson:"projects" validate:"unique=ID,dive"`
	Education  []Education  `json:"education" bson:"education" validate:"unique=ID,dive"`
	Skills     []string     `json:"skills" bson:"skills"`

	SectionOrder []SectionKey `json:"sectionOrder" bson:"sectionOrder" validate:"len=5,unique,dive,oneof=summary experience projects education skills"`
}

// Clone returns a deep copy so callers never share slices with stored state.
func (d Document) Clone() Document {
	out := d
	out.Experience = cloneSlice(d.Experience)
	out.Projects = cloneSlice(d.Projects)
	out.Education = cloneSlice(d.Education)
	out.Skills = cloneSlice(d.Skills)
	out.SectionOrder = cloneSlice(d.SectionOrder)
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// NewDocument returns the initial active document for a freshly created
// profile. Version fields are left empty for the store to assign.
func NewDocument(userID, username string) Document {
	return Document{
		UserID:     userID,
		Username:   username,
		TemplateID: DefaultTemplateID,
		PersonalInfo: PersonalInfo{
			Name:  username,
			Title: "Professional Title",
		},
		Experience:   []Experience{},
		Projects:     []Project{},
		Education:    []Education{},
		Skills:       []string{},
		SectionOrder: DefaultOrder(),
	}
}
