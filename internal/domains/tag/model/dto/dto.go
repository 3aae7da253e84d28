package dto

import (
	"strings"
	"taskboard/internal/domains/tag/model"
	gDto "taskboard/shared/dto"
	gModel "taskboard/shared/model"
	"taskboard/shared/timezone"
	"taskboard/shared/validator"

	"github.com/google/uuid"
)

type CreateTagRequest struct {
	Name  string  `json:"name"  validate:"required,notblank,max=100"`
	Color *string `json:"color" validate:"omitnil,tagcolor"`
}

func (c *CreateTagRequest) ToModel(userID string) model.Tag {
	now := timezone.Now()

	return model.Tag{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   strings.TrimSpace(c.Name),
		Color:  c.Color,
		Metadata: gModel.Metadata{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

type UpdateTagRequest struct {
	Name  *string               `db:"name"  json:"name"  validate:"omitnil,notblank,max=100"`
	Color gDto.Optional[string] `db:"color" json:"color"`
}

func (u *UpdateTagRequest) IsEmpty() bool {
	return u.Name == nil && !u.Color.Set
}

// ValidateColor checks the color when one was sent. An explicit null clears it.
func (u *UpdateTagRequest) ValidateColor() error {
	if u.Color.Value == nil {
		return nil
	}

	return validator.ValidateStruct(&struct { //nolint:wrapcheck
		Color string `json:"color" validate:"tagcolor"`
	}{Color: *u.Color.Value})
}

func (u *UpdateTagRequest) Normalize() {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		u.Name = &name
	}
}

// AttachTagRequest either references an existing tag by id, or names a tag
// that is looked up and created on demand before being attached.
type AttachTagRequest struct {
	TagID string  `json:"tagId" validate:"omitempty,uuid"`
	Name  string  `json:"name"  validate:"omitempty,notblank,max=100"`
	Color *string `json:"color" validate:"omitnil,tagcolor"`
}

func (a *AttachTagRequest) ByName() bool {
	return a.TagID == "" && strings.TrimSpace(a.Name) != ""
}

func (a *AttachTagRequest) ToModel(userID string) model.Tag {
	req := CreateTagRequest{Name: a.Name, Color: a.Color}

	return req.ToModel(userID)
}

type TagResponse struct {
	ID     string  `json:"id"`
	UserID string  `json:"userId"`
	Name   string  `json:"name"`
	Color  *string `json:"color"`
	gDto.Metadata
}

func (r *TagResponse) FromModel(model model.Tag) {
	r.ID = model.ID
	r.UserID = model.UserID
	r.Name = model.Name
	r.Color = model.Color
	r.Metadata.FromModel(model.Metadata)
}

func FromModels(models []model.Tag) []TagResponse {
	res := make([]TagResponse, len(models))
	for i, mod := range models {
		res[i].FromModel(mod)
	}

	return res
}

type AttachTagResponse struct {
	TodoID string      `json:"todoId"`
	Tag    TagResponse `json:"tag"`
	// Attached is false when the association already existed.
	Attached bool `json:"attached"`
}
