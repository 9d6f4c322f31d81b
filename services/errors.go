package services

import "errors"

var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrNoticeNotFound      = errors.New("notice not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrAlreadyAssigned     = errors.New("instructor already assigned to this course")
	ErrAssignmentNotFound  = errors.New("one or more instructor assignments not found")
	ErrNotAllowedToRespond = errors.New("not authorized to respond")
	ErrCodeExhausted       = errors.New("could not generate a unique course code")
)
