package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"ripple/internal/diag"
	"ripple/internal/observ"
	"ripple/internal/source"
	"ripple/internal/unit"
)

// Digest keys cache entries; sha256 of the raw unit bytes plus the schema
// version, so a front-end upgrade invalidates everything automatically.
type Digest [32]byte

const cacheSchemaVersion uint16 = 2

// CachePayload stores the full outcome of one unit so a hit skips decode,
// aggregate resolution and the solver. Source travels along because the
// pretty renderer needs it on a hit; Typed carries the resolved snapshot so
// a hit can still satisfy an OutDir write-back.
type CachePayload struct {
	Schema      uint16
	UnitSchema  uint16
	Name        string
	Source      string
	OK          bool
	Resolved    int
	Diagnostics []diag.Diagnostic
	Typed       *unit.Payload
}

// DiskCache stores per-unit outcomes under a content-addressed directory.
// Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache initializes a cache at the standard user location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt initializes a cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "units", hex.EncodeToString(key[:])+".mp")
}

// Put serializes the payload atomically.
func (c *DiskCache) Put(key Digest, payload *CachePayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, p)
}

// Get reads a payload; a missing entry is (false, nil). Entries with a
// foreign cache or unit schema are treated as misses.
func (c *DiskCache) Get(key Digest, out *CachePayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != cacheSchemaVersion || out.UnitSchema != unit.SchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll removes every entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "units"))
}

func makeCachePayload(u *unit.Unit, res *UnitResult, typed *unit.Payload) *CachePayload {
	return &CachePayload{
		Schema:      cacheSchemaVersion,
		UnitSchema:  unit.SchemaVersion,
		Name:        u.Name,
		Source:      u.Source,
		OK:          res.OK,
		Resolved:    res.Resolved,
		Diagnostics: res.Bag.Items(),
		Typed:       typed,
	}
}

// reviveFromCache turns a hit into a result, honoring a requested OutDir
// write-back. A hit that cannot satisfy the write-back is reported as
// unusable so the caller recomputes the unit instead.
func reviveFromCache(path string, hit *CachePayload, opts Options) (*UnitResult, bool) {
	if hit.OK && opts.OutDir != "" {
		if hit.Typed == nil {
			return nil, false
		}
		out := filepath.Join(opts.OutDir, filepath.Base(path))
		if err := unit.Save(out, hit.Typed); err != nil {
			return nil, false
		}
	}
	return reviveCached(path, hit), true
}

func reviveCached(path string, hit *CachePayload) *UnitResult {
	fs := source.NewFileSet()
	fs.AddVirtual(hit.Name, []byte(hit.Source))
	bag := diag.NewBag(len(hit.Diagnostics) + 1)
	for _, d := range hit.Diagnostics {
		bag.Add(d)
	}
	return &UnitResult{
		Path:     path,
		Name:     hit.Name,
		OK:       hit.OK,
		Cached:   true,
		Bag:      bag,
		FileSet:  fs,
		Timings:  observ.Report{},
		Resolved: hit.Resolved,
	}
}
