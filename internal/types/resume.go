// Package types provides type definitions for structured data used throughout the resume-builder system.
package types

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ItemID identifies an entry in one of the résumé lists. New form rows
// arrive with an empty or null id, which decodes to the zero ItemID.
type ItemID struct {
	uuid.UUID
}

// NewItemID returns a random ItemID.
func NewItemID() ItemID {
	return ItemID{UUID: uuid.New()}
}

// IsZero reports whether the id is unassigned.
func (id ItemID) IsZero() bool {
	return id.UUID == uuid.Nil
}

// UnmarshalJSON accepts a UUID string, "" or null.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		id.UUID = uuid.Nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("item id must be a string: %w", err)
	}
	if s == "" {
		id.UUID = uuid.Nil
		return nil
	}

	parsed, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid item id %q: %w", s, err)
	}
	id.UUID = parsed
	return nil
}

// SkillLevel is the self-assessed proficiency attached to a skill.
type SkillLevel string

// Skill level values accepted by the form.
const (
	SkillBeginner     SkillLevel = "Beginner"
	SkillIntermediate SkillLevel = "Intermediate"
	SkillAdvanced     SkillLevel = "Advanced"
	SkillExpert       SkillLevel = "Expert"
)

// Experience is a single work history entry.
type Experience struct {
	ID          ItemID    `json:"id"`
	JobTitle    string    `json:"jobTitle" validate:"max=200"`
	Company     string    `json:"company" validate:"max=200"`
	StartDate   string    `json:"startDate,omitempty"`
	EndDate     string    `json:"endDate,omitempty"`
	Current     bool      `json:"current,omitempty"`
	Description string    `json:"description" validate:"max=5000"`
}

// Education is a single degree or course of study.
type Education struct {
	ID          ItemID    `json:"id"`
	Degree      string    `json:"degree" validate:"max=200"`
	School      string    `json:"school" validate:"max=200"`
	Year        string    `json:"year,omitempty"`
	Description string    `json:"description,omitempty" validate:"max=2000"`
}

// Skill is a named skill with an optional proficiency level.
type Skill struct {
	ID    ItemID     `json:"id"`
	Name  string     `json:"name" validate:"max=100"`
	Level SkillLevel `json:"level,omitempty" validate:"omitempty,oneof=Beginner Intermediate Advanced Expert"`
}

// Project is a portfolio entry.
type Project struct {
	ID           ItemID    `json:"id"`
	Name         string    `json:"name" validate:"max=200"`
	Description  string    `json:"description,omitempty" validate:"max=2000"`
	Technologies string    `json:"technologies,omitempty"`
	URL          string    `json:"url,omitempty" validate:"omitempty,url"`
	StartDate    string    `json:"startDate,omitempty"`
	EndDate      string    `json:"endDate,omitempty"`
}

// Certification is a professional certification.
type Certification struct {
	ID           ItemID    `json:"id"`
	Name         string    `json:"name" validate:"max=200"`
	Issuer       string    `json:"issuer,omitempty"`
	Date         string    `json:"date,omitempty"`
	ExpiryDate   string    `json:"expiryDate,omitempty"`
	CredentialID string    `json:"credentialId,omitempty"`
	URL          string    `json:"url,omitempty" validate:"omitempty,url"`
}

// ResumeData is the full mutable résumé record edited by the form.
type ResumeData struct {
	Name           string          `json:"name"`
	JobTitle       string          `json:"jobTitle"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Location       string          `json:"location"`
	Summary        string          `json:"summary"`
	Experiences    []Experience    `json:"experiences"`
	Education      []Education     `json:"education"`
	Skills         []Skill         `json:"skills"`
	Projects       []Project       `json:"projects"`
	Certifications []Certification `json:"certifications"`
}

// ResumeUpdate is a partial update. Nil fields are left untouched; a non-nil
// slice replaces the whole section.
type ResumeUpdate struct {
	Name           *string         `json:"name,omitempty" validate:"omitempty,max=200"`
	JobTitle       *string         `json:"jobTitle,omitempty" validate:"omitempty,max=200"`
	Email          *string         `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string         `json:"phone,omitempty" validate:"omitempty,max=50"`
	Location       *string         `json:"location,omitempty" validate:"omitempty,max=200"`
	Summary        *string         `json:"summary,omitempty" validate:"omitempty,max=5000"`
	Experiences    []Experience    `json:"experiences,omitempty" validate:"omitempty,dive"`
	Education      []Education     `json:"education,omitempty" validate:"omitempty,dive"`
	Skills         []Skill         `json:"skills,omitempty" validate:"omitempty,dive"`
	Projects       []Project       `json:"projects,omitempty" validate:"omitempty,dive"`
	Certifications []Certification `json:"certifications,omitempty" validate:"omitempty,dive"`
}

// Validate validates the ResumeUpdate using the validator.
func (u *ResumeUpdate) Validate() error {
	validate := validator.New()
	return validate.Struct(u)
}

// SkillRef is the part of a skill the summary prompt reads.
type SkillRef struct {
	Name string `json:"name"`
}

// ExperienceRef is the part of an experience the summary prompt reads.
type ExperienceRef struct {
	JobTitle    string `json:"jobTitle"`
	Company     string `json:"company"`
	Description string `json:"description"`
}

// SummaryInput is the read-only snapshot consumed by summary generation.
type SummaryInput struct {
	JobTitle    string          `json:"jobTitle,omitempty"`
	Skills      []SkillRef      `json:"skills,omitempty"`
	Experiences []ExperienceRef `json:"experiences,omitempty"`
}

// IsEmpty reports whether the snapshot has no job title, skills or experiences.
func (in SummaryInput) IsEmpty() bool {
	return in.JobTitle == "" && len(in.Skills) == 0 && len(in.Experiences) == 0
}

// SummaryInputFrom copies the summary-relevant fields out of a résumé,
// preserving section order.
func SummaryInputFrom(r ResumeData) SummaryInput {
	in := SummaryInput{JobTitle: r.JobTitle}
	if len(r.Skills) > 0 {
		in.Skills = make([]SkillRef, len(r.Skills))
		for i, s := range r.Skills {
			in.Skills[i] = SkillRef{Name: s.Name}
		}
	}
	if len(r.Experiences) > 0 {
		in.Experiences = make([]ExperienceRef, len(r.Experiences))
		for i, e := range r.Experiences {
			in.Experiences[i] = ExperienceRef{
				JobTitle:    e.JobTitle,
				Company:     e.Company,
				Description: e.Description,
			}
		}
	}
	return in
}

// Clone returns a deep copy of the résumé.
func (r ResumeData) Clone() ResumeData {
	out := r
	out.Experiences = append([]Experience(nil), r.Experiences...)
	out.Education = append([]Education(nil), r.Education...)
	out.Skills = append([]Skill(nil), r.Skills...)
	out.Projects = append([]Project(nil), r.Projects...)
	out.Certifications = append([]Certification(nil), r.Certifications...)
	return out
}
