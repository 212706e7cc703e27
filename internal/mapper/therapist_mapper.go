package mapper

import (
	"encoding/json"

	"mindcare-chat-be/internal/entity"
	"mindcare-chat-be/internal/model"

	"gorm.io/datatypes"
)

type TherapistMapper struct{}

func NewTherapistMapper() *TherapistMapper {
	return &TherapistMapper{}
}

func (m *TherapistMapper) ToEntity(t *model.Therapist) *entity.Therapist {
	if t == nil {
		return nil
	}

	var specialties, languages []string
	if len(t.Specialties) > 0 {
		_ = json.Unmarshal(t.Specialties, &specialties)
	}
	if len(t.Languages) > 0 {
		_ = json.Unmarshal(t.Languages, &languages)
	}

	return &entity.Therapist{
		Id:          t.Id,
		Name:        t.Name,
		Title:       t.Title,
		Specialties: specialties,
		Languages:   languages,
		Biography:   t.Biography,
		CreatedAt:   t.CreatedAt,
	}
}

func (m *TherapistMapper) ToModel(t *entity.Therapist) *model.Therapist {
	if t == nil {
		return nil
	}

	specialtiesJSON, _ := json.Marshal(t.Specialties)
	languagesJSON, _ := json.Marshal(t.Languages)

	return &model.Therapist{
		Id:          t.Id,
		Name:        t.Name,
		Title:       t.Title,
		Specialties: datatypes.JSON(specialtiesJSON),
		Languages:   datatypes.JSON(languagesJSON),
		Biography:   t.Biography,
		CreatedAt:   t.CreatedAt,
	}
}
