package logfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/devraj-nair/kvcask/internal/kverrors"
)

// Ext is the extension every generation file carries: <gen>.kvstore.
const Ext = "kvstore"

// FileName returns the file name for a generation, e.g. "0.kvstore".
func FileName(gen uint64) string {
	return fmt.Sprintf("%d.%s", gen, Ext)
}

// Path returns the full path of a generation file inside dir.
func Path(dir string, gen uint64) string {
	return filepath.Join(dir, FileName(gen))
}

// ListGenerations returns every generation with a log file in dir, sorted
// ascending. Non-matching files are ignored.
func ListGenerations(dir string) ([]uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, kverrors.Wrap(kverrors.IO, "read data directory", err)
	}

	var gens []uint64
	suffix := "." + Ext
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		numPart := strings.TrimSuffix(name, suffix)
		gen, err := strconv.ParseUint(numPart, 10, 64)
		if err != nil {
			continue
		}
		gens = append(gens, gen)
	}
	sort.Slice(gens, func(i, j int) bool { return gens[i] < gens[j] })
	return gens, nil
}

// Writer appends records to a single generation file. It tracks its own
// write position so the offset handed back by Append is always the
// position immediately before that record, never a stale os.File.Seek
// read racing a concurrent writer.
type Writer struct {
	gen uint64
	f   *os.File
	bw  *bufio.Writer
	pos int64
}

// OpenWriter creates (or reopens, for recovery of an already-active
// generation) a writer positioned at the current end of the file.
func OpenWriter(dir string, gen uint64) (*Writer, error) {
	path := Path(dir, gen)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, kverrors.Wrap(kverrors.IO, "open active file "+path, err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, kverrors.Wrap(kverrors.IO, "stat active file "+path, err)
	}
	return &Writer{
		gen: gen,
		f:   f,
		bw:  bufio.NewWriter(f),
		pos: stat.Size(),
	}, nil
}

// Generation returns the generation number this writer targets.
func (w *Writer) Generation() uint64 { return w.gen }

// Append buffers data for write and returns the offset at which it will
// land once flushed. The caller must call Flush before treating that
// offset as durable and publishing it into the key directory.
func (w *Writer) Append(data []byte) (offset int64, err error) {
	offset = w.pos
	n, err := w.bw.Write(data)
	if err != nil {
		return 0, kverrors.Wrap(kverrors.IO, "append to active file", err)
	}
	w.pos += int64(n)
	return offset, nil
}

// Flush flushes the buffered writer to the operating system. It does not
// fsync: durability here means "survives process crash", not "survives
// power loss".
func (w *Writer) Flush() error {
	if err := w.bw.Flush(); err != nil {
		return kverrors.Wrap(kverrors.IO, "flush active file", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		w.f.Close()
		return err
	}
	if err := w.f.Close(); err != nil {
		return kverrors.Wrap(kverrors.IO, "close active file", err)
	}
	return nil
}

// ReadAt opens an independent file handle for the given generation, seeks
// to offset and decodes exactly one record. Readers never share the
// writer's handle: the writer's internal buffer is not visible through a
// fresh read, but every offset published into the key directory was
// flushed before publication, so a fresh read always finds a complete
// record there.
func ReadAt(dir string, gen uint64, offset int64) (Record, error) {
	path := Path(dir, gen)
	f, err := os.Open(path)
	if err != nil {
		return Record{}, kverrors.Wrap(kverrors.IO, "open "+path+" for read", err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, 0); err != nil {
		return Record{}, kverrors.Wrap(kverrors.IO, "seek in "+path, err)
	}

	rec, _, err := DecodeOne(NewDecoder(f))
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Remove deletes the generation file from dir. Used by compaction to
// clear superseded generations once the engine has already switched to
// the new active file and key directory.
func Remove(dir string, gen uint64) error {
	if err := os.Remove(Path(dir, gen)); err != nil {
		return kverrors.Wrap(kverrors.IO, "remove stale generation file", err)
	}
	return nil
}
