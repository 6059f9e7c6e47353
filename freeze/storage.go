/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2025 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

// Package freeze holds the passivated form of servants the registry has
// evicted from memory: their dumped bytes, keyed by Oid, plus the
// per-category rehydrator needed to turn those bytes back into a live
// servant on the next lookup.
package freeze

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"sync"

	"github.com/sabouaram/icerpc/atomic"
	"github.com/sabouaram/icerpc/oid"
	"github.com/sabouaram/icerpc/rpcerr"
)

// Storage holds dumped servant bytes keyed by Oid. Load is consuming: once a
// caller rehydrates an Oid, it is expected to fall out of storage and back
// into the registry's live set.
type Storage interface {
	Store(o oid.Oid, data []byte) error
	Load(o oid.Oid) ([]byte, error)
}

// MemoryStorage keeps passivated bytes in a process-local, lock-free map.
// State is lost on restart.
type MemoryStorage struct {
	m atomic.Map[oid.Oid, []byte]
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{m: atomic.NewMap[oid.Oid, []byte]()}
}

func (s *MemoryStorage) Store(o oid.Oid, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	s.m.Store(o, cp)

	return nil
}

func (s *MemoryStorage) Load(o oid.Oid) ([]byte, error) {
	data, loaded := s.m.LoadAndDelete(o)
	if !loaded {
		return nil, rpcerr.ErrFreezeMiss.Errorf("%s does not exist in freeze store", o)
	}

	return data, nil
}

// FileStorage persists the whole passivated set as a single gob-encoded
// file, rewritten in full on every mutation. It writes to a temporary file
// in the same directory and renames it over the target, so a crash mid-write
// never leaves a half-written store behind.
type FileStorage struct {
	mu   sync.Mutex
	path string
	m    map[oid.Oid][]byte
}

// OpenFileStorage loads path if it exists, or starts with an empty store if
// it doesn't. The directory containing path must already exist.
func OpenFileStorage(path string) (*FileStorage, error) {
	s := &FileStorage{path: path, m: make(map[oid.Oid][]byte)}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return s, nil
	} else if err != nil {
		return nil, rpcerr.New(rpcerr.ErrFreezeStoreIO, "failed to open freeze store", err)
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(&s.m); err != nil {
		return nil, rpcerr.New(rpcerr.ErrFreezeStoreIO, "failed to decode freeze store", err)
	}

	return s, nil
}

func (s *FileStorage) Store(o oid.Oid, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	s.m[o] = cp

	return s.flush()
}

func (s *FileStorage) Load(o oid.Oid) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.m[o]
	if !ok {
		return nil, rpcerr.ErrFreezeMiss.Errorf("%s does not exist in freeze store", o)
	}
	delete(s.m, o)

	if err := s.flush(); err != nil {
		return nil, err
	}

	return data, nil
}

// flush rewrites the whole store to disk. Callers must hold s.mu.
func (s *FileStorage) flush() error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".freeze-*.tmp")
	if err != nil {
		return rpcerr.New(rpcerr.ErrFreezeStoreIO, "failed to create temp freeze file", err)
	}
	tmpName := tmp.Name()

	if err := gob.NewEncoder(tmp).Encode(s.m); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return rpcerr.New(rpcerr.ErrFreezeStoreIO, "failed to encode freeze store", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return rpcerr.New(rpcerr.ErrFreezeStoreIO, "failed to sync freeze store", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return rpcerr.New(rpcerr.ErrFreezeStoreIO, "failed to close freeze store", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return rpcerr.New(rpcerr.ErrFreezeStoreIO, "failed to install freeze store", err)
	}

	return nil
}
