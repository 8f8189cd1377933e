package logfile

import (
	"io"
	"os"

	"github.com/devraj-nair/kvcask/internal/kverrors"
)

// Entry is a key directory entry: the exact location and size of a key's
// most recent Set record.
type Entry struct {
	Gen    uint64
	Offset int64
	Length int64
}

// KeyDir maps a live key to the location of its latest Set record.
type KeyDir map[string]Entry

// Replay rebuilds a KeyDir by scanning every generation file in dir in
// ascending order. When the same key appears in multiple generations the
// higher generation wins; within a single generation the later record
// wins. A Rm in any position retires prior Sets of the same key. Offsets
// recorded point at the latest Set only.
//
// A decode error in the newest generation (typically a partial record
// left by a crash mid-append) is treated as the boundary of valid data:
// replay stops there and the file is truncated to the end of the last
// record that decoded, rather than failing the whole open. This applies
// wherever in the newest generation the error occurs; a decode error in
// any older generation is fatal. Truncating to the last successful
// record beats rejecting the file and demanding operator intervention: a
// log file is only ever extended by this process, so a trailing partial
// record can only be this process's own interrupted write, never foreign
// corruption.
func Replay(dir string, gens []uint64) (KeyDir, error) {
	kd := make(KeyDir)

	for i, gen := range gens {
		isNewest := i == len(gens)-1
		if err := replayOne(dir, gen, isNewest, kd); err != nil {
			return nil, err
		}
	}
	return kd, nil
}

func replayOne(dir string, gen uint64, isNewest bool, kd KeyDir) error {
	path := Path(dir, gen)
	f, err := os.Open(path)
	if err != nil {
		return kverrors.Wrap(kverrors.IO, "open "+path+" for replay", err)
	}
	defer f.Close()

	dec := NewDecoder(f)
	for {
		// More skips the whitespace (the newline Encode appends) left
		// after the previous record, so InputOffset is now the offset of
		// the first byte of the next record.
		dec.More()
		offset := dec.InputOffset()
		rec, consumed, err := DecodeOne(dec)
		if err == io.EOF {
			break
		}
		if err != nil {
			if isNewest {
				// Trailing partial record on the active generation: the
				// process crashed mid-write. Everything before this
				// offset is intact and already indexed; cut the rest off
				// so later appends do not land behind the bad bytes.
				if terr := os.Truncate(path, offset); terr != nil {
					return kverrors.Wrap(kverrors.IO, "truncate "+path+" to last valid record", terr)
				}
				break
			}
			return err
		}

		length := consumed - offset
		if rec.IsRemove() {
			delete(kd, rec.Key())
		} else {
			kd[rec.Key()] = Entry{Gen: gen, Offset: offset, Length: length}
		}
	}
	return nil
}
