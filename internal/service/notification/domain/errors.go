package domain

import "errors"

var (
	ErrInvalidStatus        = errors.New("invalid notification status")
	ErrNotificationNotFound = errors.New("notification not found")
)
