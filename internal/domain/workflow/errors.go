package workflow

import "errors"

var (
	ErrInvalidTemplate       = errors.New("invalid workflow template")
	ErrUnknownApprover       = errors.New("unknown or inactive approver")
	ErrNotFound              = errors.New("workflow instance not found")
	ErrWrongLevel            = errors.New("action targets a non-current level")
	ErrNotAuthorizedApprover = errors.New("actor is not the assigned approver for the current level")
	ErrCommentsRequired      = errors.New("comments are required to reject")
	ErrAlreadyTerminal       = errors.New("workflow instance is already terminal")
	ErrEmptyBatch            = errors.New("batch requires at least one instance id")
)
