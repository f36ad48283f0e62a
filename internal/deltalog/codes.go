package deltalog

import "github.com/deltakit/deltakit/internal/errors"

// Error codes from the taxonomy in spec.md §7, scoped to log replay.
var (
	ErrCorruptLog          = errors.MustNewCode("deltalog.corrupt_log", errors.KindCorruptLog)
	ErrVersionNotFound     = errors.MustNewCode("deltalog.version_not_found", errors.KindVersionNotFound)
	ErrUnsupportedProtocol = errors.MustNewCode("deltalog.unsupported_protocol", errors.KindUnsupportedProtocol)
	ErrMalformedAction     = errors.MustNewCode("deltalog.malformed_action", errors.KindCorruptLog)
)

func newMalformed(msg string) error {
	return errors.New(ErrMalformedAction, msg, nil)
}
