package handler

import (
	"github.com/asaskevich/govalidator"

	dErrors "chirp/pkg/domain-errors"
)

type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	ProfilePic string `json:"profilePic"`
}

func (r signupRequest) validate() error {
	if r.FullName == "" || r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeBadRequest, "missing required fields")
	}
	if !govalidator.StringLength(r.Email, "3", "255") || !govalidator.IsEmail(r.Email) {
		return dErrors.New(dErrors.CodeBadRequest, "invalid email")
	}
	if !govalidator.StringLength(r.FullName, "1", "255") {
		return dErrors.New(dErrors.CodeBadRequest, "invalid full name")
	}
	return nil
}
