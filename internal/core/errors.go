package core

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// Error categories. Setup failures abort a run; copy failures are recorded
// per file.
const (
	CategorySetup goerrors.Category = "mdpack_setup"
	CategoryCopy  goerrors.Category = "mdpack_copy"
)

const (
	codeNoSeeds        = "NO_VALID_SEEDS"
	codeDestRoot       = "DEST_ROOT_UNAVAILABLE"
	codeDestIsSource   = "DEST_IS_SOURCE"
	codeAmbiguousNames = "AMBIGUOUS_NAMES"
	codeSourceRoot     = "SOURCE_ROOT_UNAVAILABLE"
)

var (
	// ErrNoSeeds is reported when none of the seeds resolve.
	ErrNoSeeds = errors.New("no valid seed files")
	// ErrAmbiguousNames is reported by a strict index build with colliding names.
	ErrAmbiguousNames = errors.New("ambiguous note names")
)

func setupError(err error, code, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return goerrors.Wrap(err, CategorySetup, msg).WithTextCode(code)
}

// IsSetupError reports whether err aborts a run.
func IsSetupError(err error) bool {
	return goerrors.IsCategory(err, CategorySetup)
}
