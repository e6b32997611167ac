package project

import "errors"

var (
	ErrNotFound      = errors.New("project not found")
	ErrAuthRequired  = errors.New("authentication required")
	ErrNameExhausted = errors.New("project name attempts exhausted")
	ErrInvalidName   = errors.New("invalid project name")
	ErrBlobNotFound  = errors.New("blob not found")
)
