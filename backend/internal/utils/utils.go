package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/itchan-dev/threads/shared/domain"
	"github.com/itchan-dev/threads/shared/errors"
)

type ThreadTextValidator struct {
	MaxLength int
}

func (e *ThreadTextValidator) Text(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.Validation("Text is too short")
	}
	if utf8.RuneCountInString(text) > e.MaxLength {
		return errors.Validation("Text is too long")
	}
	return nil
}

type UserProfileValidator struct{}

func (e *UserProfileValidator) Username(username string) error {
	if username == "" {
		return errors.Validation("Username is too short")
	}
	if utf8.RuneCountInString(username) > 30 {
		return errors.Validation("Username is too long")
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return errors.Validation("Username should contain only letters, digits and underscores")
		}
	}
	return nil
}

func (e *UserProfileValidator) Name(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.Validation("Name is too short")
	}
	if utf8.RuneCountInString(name) > 50 {
		return errors.Validation("Name is too long")
	}
	return nil
}

func (e *UserProfileValidator) Bio(bio string) error {
	if utf8.RuneCountInString(bio) > 1000 {
		return errors.Validation("Bio is too long")
	}
	return nil
}

func (e *UserProfileValidator) Profile(profile domain.UserProfileData) error {
	if err := e.Username(profile.Username); err != nil {
		return err
	}
	if err := e.Name(profile.Name); err != nil {
		return err
	}
	return e.Bio(profile.Bio)
}
