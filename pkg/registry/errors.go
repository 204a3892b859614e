package registry

import "errors"

// Standard registry error types.
var (
	// ErrTemplateNotFound indicates a template was not found by the given id.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrDuplicateTemplate indicates a template with the same id already exists.
	ErrDuplicateTemplate = errors.New("template already exists")

	// ErrInvalidTemplate indicates a template is missing required fields.
	ErrInvalidTemplate = errors.New("invalid template")

	// ErrBuiltInProtected indicates an attempt to delete a built-in template.
	ErrBuiltInProtected = errors.New("built-in template cannot be deleted")

	// ErrNoBuiltIn indicates an attempt to reset a template that has no
	// built-in definition.
	ErrNoBuiltIn = errors.New("no built-in definition for template")
)

// IsTemplateNotFound checks if an error indicates a template was not found.
func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}
