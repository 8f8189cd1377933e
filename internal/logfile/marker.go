package logfile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/devraj-nair/kvcask/internal/kverrors"
)

// MarkerFileName is the auxiliary file recording which backend a data
// directory was first opened with.
const MarkerFileName = "engine"

// ReadMarker returns the engine name recorded in dir, or "" if no marker
// file exists yet (a fresh data directory).
func ReadMarker(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, MarkerFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", kverrors.Wrap(kverrors.IO, "read engine marker", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteMarker records engine as the backend for dir. The write is atomic
// (write-to-temp-then-rename via natefinch/atomic) so a crash mid-write
// can never leave a half-written marker: unlike every other file in this
// store, the marker is rewritten rather than strictly appended, so it is
// the one place a torn write would actually matter.
func WriteMarker(dir, engine string) error {
	path := filepath.Join(dir, MarkerFileName)
	if err := atomic.WriteFile(path, bytes.NewReader([]byte(engine))); err != nil {
		return kverrors.Wrap(kverrors.IO, "write engine marker", err)
	}
	return nil
}

// CheckMarker enforces the rule that an explicit engine selection may not
// conflict with a marker already on disk from a previous run.
func CheckMarker(dir, requested string) (resolved string, err error) {
	existing, err := ReadMarker(dir)
	if err != nil {
		return "", err
	}
	if existing == "" {
		if requested == "" {
			requested = "kvs"
		}
		if err := WriteMarker(dir, requested); err != nil {
			return "", err
		}
		return requested, nil
	}
	if requested != "" && requested != existing {
		return "", kverrors.ErrInvalidEngine
	}
	return existing, nil
}
