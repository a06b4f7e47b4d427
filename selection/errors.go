package selection

import "errors"

var (
	// ErrPrompterRequired is returned when interactive selection has no prompter.
	ErrPrompterRequired = errors.New("prompter required for interactive selection")

	// ErrNoSelectionMode is returned when neither auto nor interactive
	// selection is enabled.
	ErrNoSelectionMode = errors.New("auto threshold or interactive selection required")

	// ErrUnknownDiversityMode is returned for an unrecognized diversity mode name.
	ErrUnknownDiversityMode = errors.New("unknown diversity mode")
)
