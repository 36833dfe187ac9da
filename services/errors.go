package services

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every "entity does not exist" error below.
var ErrNotFound = errors.New("not found")

var (
	ErrGoodNotFound      = fmt.Errorf("good %w", ErrNotFound)
	ErrVariationNotFound = fmt.Errorf("variation %w", ErrNotFound)
	ErrPhotoNotFound     = fmt.Errorf("photo %w", ErrNotFound)
)
