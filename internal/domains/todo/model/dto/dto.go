package dto

import (
	"strings"
	"taskboard/internal/domains/todo/model"
	"taskboard/shared/constant"
	gDto "taskboard/shared/dto"
	gModel "taskboard/shared/model"
	"taskboard/shared/timezone"
	"time"

	"github.com/google/uuid"
)

type CreateTodoRequest struct {
	Title       string  `json:"title"       validate:"required,notblank,max=500"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
}

func (c *CreateTodoRequest) ToModel(userID string) model.Todo {
	now := timezone.Now()

	return model.Todo{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       strings.TrimSpace(c.Title),
		Description: normalizeDescription(c.Description),
		Completed:   false,
		Metadata: gModel.Metadata{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// UpdateTodoRequest is a partial update. Description, StartAt and DueAt accept
// an explicit null to clear the stored value.
type UpdateTodoRequest struct {
	Title       *string                  `db:"title"       json:"title"       validate:"omitnil,notblank,max=500"`
	Description gDto.Optional[string]    `db:"description" json:"description"`
	Completed   *bool                    `db:"completed"   json:"completed"`
	StartAt     gDto.Optional[time.Time] `db:"start_at"    json:"startAt"`
	DueAt       gDto.Optional[time.Time] `db:"due_at"      json:"dueAt"`
}

func (u *UpdateTodoRequest) IsEmpty() bool {
	return u.Title == nil && !u.Description.Set && u.Completed == nil && !u.StartAt.Set && !u.DueAt.Set
}

// Normalize trims the title and turns a blank description into null.
func (u *UpdateTodoRequest) Normalize() {
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		u.Title = &title
	}

	if u.Description.Set {
		u.Description.Value = normalizeDescription(u.Description.Value)
	}
}

// DescriptionTooLong reports a sent description above the column limit.
func (u *UpdateTodoRequest) DescriptionTooLong() bool {
	return u.Description.Value != nil && len([]rune(*u.Description.Value)) > model.DescriptionMaxLength
}

func normalizeDescription(description *string) *string {
	if description == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}

type TagResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

type TodoResponse struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Completed   bool          `json:"completed"`
	StartAt     *string       `json:"startAt"`
	DueAt       *string       `json:"dueAt"`
	Tags        []TagResponse `json:"tags"`
	gDto.Metadata
}

func (r *TodoResponse) FromModel(model model.Todo) {
	r.ID = model.ID
	r.UserID = model.UserID
	r.Title = model.Title
	r.Description = model.Description
	r.Completed = model.Completed
	r.StartAt = timezone.FormatPtr(model.StartAt, constant.DateFormat)
	r.DueAt = timezone.FormatPtr(model.DueAt, constant.DateFormat)
	r.Metadata.FromModel(model.Metadata)

	r.Tags = make([]TagResponse, len(model.Tags))
	for i, tag := range model.Tags {
		r.Tags[i] = TagResponse{ID: tag.ID, Name: tag.Name, Color: tag.Color}
	}
}

func FromModels(models []model.Todo) []TodoResponse {
	res := make([]TodoResponse, len(models))
	for i, mod := range models {
		res[i].FromModel(mod)
	}

	return res
}
