package entity

import (
	"time"

	"github.com/google/uuid"
)

type Therapist struct {
	Id          uuid.UUID
	Name        string
	Title       string
	Specialties []string
	Languages   []string
	Biography   string
	CreatedAt   time.Time
}

// ProfileDocument flattens the profile into the text that gets embedded.
func (t Therapist) ProfileDocument() string {
	doc := t.Name + " " + t.Title + "\n" + t.Biography
	for _, s := range t.Specialties {
		doc += " " + s
	}
	for _, l := range t.Languages {
		doc += " " + l
	}
	return doc
}
