package dto

import (
	"strings"
	"taskboard/internal/domains/user/model"
	"taskboard/shared/constant"
	gDto "taskboard/shared/dto"
	"taskboard/shared/timezone"
)

type UserResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Level     string  `json:"level"`
	FullName  *string `json:"fullName"`
	LastLogin *string `json:"lastLogin"`
	Active    bool    `json:"active"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(model model.User) {
	r.ID = model.ID
	r.Email = model.Email
	r.Level = model.Level
	r.FullName = model.FullName
	r.Active = model.Active

	if model.LastLogin != nil {
		lastLogin := timezone.Format(*model.LastLogin, constant.DateFormat)
		r.LastLogin = &lastLogin
	}

	r.Metadata.FromModel(model.Metadata)
}

type UpdateProfileRequest struct {
	FullName gDto.Optional[string] `db:"full_name" json:"fullName"`
}

func (u *UpdateProfileRequest) IsEmpty() bool {
	return !u.FullName.Set
}

// Normalize trims the full name and clears it when only whitespace was sent.
func (u *UpdateProfileRequest) Normalize() {
	if u.FullName.Value == nil {
		return
	}

	name := strings.TrimSpace(*u.FullName.Value)
	if name == "" {
		u.FullName = gDto.Null[string]()

		return
	}

	u.FullName.Value = &name
}
