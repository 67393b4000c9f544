// Package resume holds the in-memory résumé record edited through the API.
package resume

import (
	"errors"
	"sync"

	"github.com/jonathan/resume-builder/internal/types"
)

// ErrGenerationInProgress is returned by BeginGeneration while another
// summary generation holds the store.
var ErrGenerationInProgress = errors.New("summary generation already in progress")

// Store is a single mutable résumé guarded by a mutex.
type Store struct {
	mu         sync.RWMutex
	data       types.ResumeData
	generating bool
}

// New creates an empty store.
func New() *Store {
	return &Store{data: empty()}
}

// NewWithData creates a store seeded with data. Items without an id get one.
func NewWithData(data types.ResumeData) *Store {
	s := &Store{data: data.Clone()}
	assignIDs(&s.data)
	return s
}

func empty() types.ResumeData {
	return types.ResumeData{
		Experiences:    []types.Experience{},
		Education:      []types.Education{},
		Skills:         []types.Skill{},
		Projects:       []types.Project{},
		Certifications: []types.Certification{},
	}
}

// Snapshot returns a deep copy of the current résumé.
func (s *Store) Snapshot() types.ResumeData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Update merges the provided fields into the résumé and returns the result.
func (s *Store) Update(u types.ResumeUpdate) types.ResumeData {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Name != nil {
		s.data.Name = *u.Name
	}
	if u.JobTitle != nil {
		s.data.JobTitle = *u.JobTitle
	}
	if u.Email != nil {
		s.data.Email = *u.Email
	}
	if u.Phone != nil {
		s.data.Phone = *u.Phone
	}
	if u.Location != nil {
		s.data.Location = *u.Location
	}
	if u.Summary != nil {
		s.data.Summary = *u.Summary
	}
	if u.Experiences != nil {
		s.data.Experiences = append([]types.Experience(nil), u.Experiences...)
	}
	if u.Education != nil {
		s.data.Education = append([]types.Education(nil), u.Education...)
	}
	if u.Skills != nil {
		s.data.Skills = append([]types.Skill(nil), u.Skills...)
	}
	if u.Projects != nil {
		s.data.Projects = append([]types.Project(nil), u.Projects...)
	}
	if u.Certifications != nil {
		s.data.Certifications = append([]types.Certification(nil), u.Certifications...)
	}
	assignIDs(&s.data)

	return s.data.Clone()
}

// SetSummary stores a generated summary.
func (s *Store) SetSummary(summary string) {
	s.mu.Lock()
	s.data.Summary = summary
	s.mu.Unlock()
}

// BeginGeneration marks a summary generation as outstanding. The returned
// release func must be called when the generation finishes.
func (s *Store) BeginGeneration() (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generating {
		return nil, ErrGenerationInProgress
	}
	s.generating = true

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.generating = false
			s.mu.Unlock()
		})
	}, nil
}

func assignIDs(r *types.ResumeData) {
	for i := range r.Experiences {
		if r.Experiences[i].ID.IsZero() {
			r.Experiences[i].ID = types.NewItemID()
		}
	}
	for i := range r.Education {
		if r.Education[i].ID.IsZero() {
			r.Education[i].ID = types.NewItemID()
		}
	}
	for i := range r.Skills {
		if r.Skills[i].ID.IsZero() {
			r.Skills[i].ID = types.NewItemID()
		}
	}
	for i := range r.Projects {
		if r.Projects[i].ID.IsZero() {
			r.Projects[i].ID = types.NewItemID()
		}
	}
	for i := range r.Certifications {
		if r.Certifications[i].ID.IsZero() {
			r.Certifications[i].ID = types.NewItemID()
		}
	}
}
