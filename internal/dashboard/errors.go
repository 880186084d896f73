package dashboard

import "errors"

var (
	// ErrPageNotFound is returned when opening an unknown page.
	ErrPageNotFound = errors.New("dashboard: page not found")

	// ErrNoPages is returned for a configuration without pages.
	ErrNoPages = errors.New("dashboard: no pages configured")

	// ErrInvalidConfig wraps validation failures of the page file.
	ErrInvalidConfig = errors.New("dashboard: invalid page configuration")
)
