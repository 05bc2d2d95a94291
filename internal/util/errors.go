package util

import "errors"

var (
	ErrStudentNotFound        = errors.New("student not found")
	ErrTeacherNotFound        = errors.New("teacher not found")
	ErrPermissionDenied       = errors.New("permission denied")
	ErrLevelNotFound          = errors.New("level not found")
	ErrAchievementNotFound    = errors.New("achievement not found")
	ErrSectionNotHandled      = errors.New("section is not handled by this teacher")
	ErrScheduleDueBeforeStart = errors.New("due date/time is earlier than start date/time")
	ErrScheduleSameDayOrder   = errors.New("due time cannot be earlier than or equal to start time on the same day")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidJoinCode        = errors.New("invalid section code")
	ErrStudentNoTaken         = errors.New("student ID already taken")
)
