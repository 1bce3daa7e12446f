package domain

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrLocationNotFound     = errors.New("location not found")
	ErrReviewNotFound       = errors.New("review not found")
)
