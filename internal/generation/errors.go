package generation

import "errors"

// Generation failure taxonomy. The first three mean the model could not be
// forced into contract compliance within bounded passes; the caller may
// retry the whole generation with fresh randomness. The verdict-mode error
// is a configuration bug and retrying will not help.
var (
	ErrEmptyTrigger           = errors.New("generation: trigger call returned blank text")
	ErrExpansionFailed        = errors.New("generation: reading still under hard floor after expansion passes")
	ErrGenerationRejected     = errors.New("generation: no attempt passed the acceptance gate")
	ErrUnsupportedVerdictMode = errors.New("generation: unsupported verdict mode")
)
