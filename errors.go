package ggedit

import (
	"errors"

	"github.com/gogpu/ggedit/preset"
)

// Errors returned by Editor operations.
var (
	// ErrNoImage is returned by image operations when nothing is loaded.
	// The editor is left unchanged.
	ErrNoImage = errors.New("ggedit: no image loaded")

	// ErrUnknownFilter is returned by ApplyFilter for an unknown kind.
	ErrUnknownFilter = errors.New("ggedit: unknown filter")

	// ErrUnknownPreset is returned by ApplyPreset for an unknown name.
	ErrUnknownPreset = preset.ErrUnknown

	// ErrInvalidArgument is returned for out-of-range parameters.
	ErrInvalidArgument = errors.New("ggedit: invalid argument")
)
