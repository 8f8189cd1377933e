// Package engine provides the storage-engine contract and the
// Bitcask-style log implementation of it. The contract is deliberately
// narrow (Get, Set, Remove, Close) so alternate backends — the
// documented but unimplemented sled-style tree in sled_stub.go — can
// stand in at the server boundary without it knowing which one it holds.
package engine

import (
	"log/slog"
	"os"
	"sync"

	"github.com/devraj-nair/kvcask/internal/kverrors"
	"github.com/devraj-nair/kvcask/internal/logfile"
)

// DefaultCompactionThreshold is the default uncompacted-bytes watermark
// that triggers compaction.
const DefaultCompactionThreshold = 1024 * 1024

// Engine is the polymorphic storage contract. An implementation's handle
// must be cheaply shareable across goroutines and linearizable with
// respect to itself; *KVEngine satisfies this by being a single pointer
// to state guarded by one mutex — sharing the pointer already gives every
// caller a view of the same interior state, with no separate reference
// count needed to keep that sharing safe.
type Engine interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	Close() error
}

// Entry is re-exported for callers that want to inspect key locations
// (tests, diagnostics) without reaching into the logfile package.
type Entry = logfile.Entry

// KVEngine is the in-log implementation of Engine: an append-only,
// generation-numbered log on disk with an in-memory key directory
// mapping each live key to its most recent Set record.
type KVEngine struct {
	mu                  sync.Mutex
	dir                 string
	keydir              logfile.KeyDir
	activeGen           uint64
	writer              *logfile.Writer
	uncompactedBytes    int64
	compactionThreshold int64
}

// Open creates dir if missing, replays every generation file found there
// to rebuild the key directory, and opens (or creates) the active file
// at the highest generation. A fresh directory starts at generation 0.
func Open(dir string, compactionThreshold int64) (*KVEngine, error) {
	if compactionThreshold <= 0 {
		compactionThreshold = DefaultCompactionThreshold
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, kverrors.Wrap(kverrors.IO, "create data directory", err)
	}

	gens, err := logfile.ListGenerations(dir)
	if err != nil {
		return nil, err
	}

	keydir, err := logfile.Replay(dir, gens)
	if err != nil {
		return nil, err
	}

	activeGen := uint64(0)
	if len(gens) > 0 {
		activeGen = gens[len(gens)-1]
	}

	writer, err := logfile.OpenWriter(dir, activeGen)
	if err != nil {
		return nil, err
	}

	slog.Info("engine: opened",
		"dir", dir,
		"generations", len(gens),
		"active_generation", activeGen,
		"keys", len(keydir))

	return &KVEngine{
		dir:                 dir,
		keydir:              keydir,
		activeGen:           activeGen,
		writer:              writer,
		compactionThreshold: compactionThreshold,
	}, nil
}

// Get looks up key in the key directory; if present it opens the
// referenced generation file independently, seeks to the recorded
// offset, and decodes exactly one record.
func (e *KVEngine) Get(key string) (string, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.keydir[key]
	if !ok {
		return "", false, nil
	}

	rec, err := logfile.ReadAt(e.dir, entry.Gen, entry.Offset)
	if err != nil {
		return "", false, err
	}
	if !rec.IsSet() {
		// The key directory only ever points at Set records; a tombstone
		// here means the index and the log disagree, which should not
		// be possible.
		return "", false, kverrors.New(kverrors.Unspecified, "keydir entry points at a non-Set record")
	}

	slog.Debug("engine: get", "key", key, "gen", entry.Gen, "offset", entry.Offset)
	return rec.Value(), true, nil
}

// Set appends a Set record to the active file, recording its offset
// before the append and its length after. The prior entry's size, if
// any, is added to uncompactedBytes; crossing the compaction threshold
// triggers a compaction before Set returns.
func (e *KVEngine) Set(key, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec := logfile.NewSet(key, value)
	data, err := rec.Encode()
	if err != nil {
		return err
	}

	offset, err := e.writer.Append(data)
	if err != nil {
		return err
	}
	if err := e.writer.Flush(); err != nil {
		return err
	}

	length := int64(len(data))
	if prior, existed := e.keydir[key]; existed {
		e.uncompactedBytes += prior.Length
	}
	e.keydir[key] = logfile.Entry{Gen: e.activeGen, Offset: offset, Length: length}

	slog.Debug("engine: set", "key", key, "gen", e.activeGen, "offset", offset, "bytes", length)

	if e.uncompactedBytes > e.compactionThreshold {
		if err := e.compact(); err != nil {
			return err
		}
	}
	return nil
}

// Remove appends a Rm tombstone for key and drops it from the key
// directory. Removing an absent key is a KeyNotFound failure and leaves
// state untouched.
func (e *KVEngine) Remove(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.keydir[key]
	if !ok {
		return kverrors.ErrKeyNotFound
	}

	rec := logfile.NewRemove(key)
	data, err := rec.Encode()
	if err != nil {
		return err
	}
	if _, err := e.writer.Append(data); err != nil {
		return err
	}
	if err := e.writer.Flush(); err != nil {
		return err
	}

	delete(e.keydir, key)
	e.uncompactedBytes += entry.Length + int64(len(data))

	slog.Debug("engine: remove", "key", key)

	if e.uncompactedBytes > e.compactionThreshold {
		if err := e.compact(); err != nil {
			return err
		}
	}
	return nil
}

// compact migrates every live key forward into a fresh generation file
// and deletes every previously existing generation file. It runs
// entirely under e.mu, so it is trivially serialized against concurrent
// Get/Set/Remove: compaction is itself the critical section.
//
// new_gen is current_gen+2, deliberately leaving current_gen+1 unused as
// a gap: this reserves a future active-file slot and rules out any
// naming collision between the compaction writer and whatever the next
// Set after compaction would otherwise have opened.
func (e *KVEngine) compact() error {
	toDelete, err := logfile.ListGenerations(e.dir)
	if err != nil {
		return err
	}

	newGen := e.activeGen + 2
	newWriter, err := logfile.OpenWriter(e.dir, newGen)
	if err != nil {
		return err
	}

	newKeydir := make(logfile.KeyDir, len(e.keydir))
	for key, entry := range e.keydir {
		rec, err := logfile.ReadAt(e.dir, entry.Gen, entry.Offset)
		if err != nil {
			return err
		}
		fresh := logfile.NewSet(key, rec.Value())
		data, err := fresh.Encode()
		if err != nil {
			return err
		}
		offset, err := newWriter.Append(data)
		if err != nil {
			return err
		}
		newKeydir[key] = logfile.Entry{Gen: newGen, Offset: offset, Length: int64(len(data))}
	}

	if err := newWriter.Flush(); err != nil {
		return err
	}

	// The switch must precede the deletions below: a crash between them
	// would otherwise leave the store referring to files that no longer
	// exist. A crash between building newKeydir and this switch just
	// leaves the stale generations on disk, harmlessly replayed (and
	// then superseded) at the next open.
	if err := e.writer.Close(); err != nil {
		slog.Warn("engine: failed to close superseded active file", "error", err)
	}
	e.keydir = newKeydir
	e.writer = newWriter
	e.activeGen = newGen
	e.uncompactedBytes = 0

	for _, gen := range toDelete {
		if err := logfile.Remove(e.dir, gen); err != nil {
			slog.Warn("engine: failed to remove stale generation", "gen", gen, "error", err)
		}
	}

	slog.Info("engine: compacted", "new_generation", newGen, "keys", len(newKeydir))
	return nil
}

// Close flushes and closes the active file.
func (e *KVEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writer.Close()
}

// KeyCount returns the number of live keys in the key directory.
func (e *KVEngine) KeyCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.keydir)
}
