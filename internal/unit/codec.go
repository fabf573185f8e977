package unit

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrSchema is returned when a unit file was written by an incompatible
// front end.
var ErrSchema = errors.New("unit schema version mismatch")

// Encode writes the payload to w.
func Encode(w io.Writer, p *Payload) error {
	return msgpack.NewEncoder(w).Encode(p)
}

// Decode reads one payload from r and rejects foreign schema versions.
func Decode(r io.Reader) (*Payload, error) {
	var p Payload
	if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode unit: %w", err)
	}
	if p.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: file has %d, this build reads %d",
			ErrSchema, p.Schema, SchemaVersion)
	}
	return &p, nil
}

// Save writes the payload to path atomically.
func Save(path string, p *Payload) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-unit-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := Encode(f, p); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads a unit file and revives it.
func Load(path string) (*Unit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p.Revive(), nil
}
