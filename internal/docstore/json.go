package docstore

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Sh1ra083/codex/internal/errors"
)

// ReadJSON loads the document at path into v. A missing file is reported via
// os.ErrNotExist so callers can decide whether that means "empty" or
// "not found". Malformed content surfaces errors.ErrCorruptState — damaged
// data is never silently treated as empty.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return errors.NewStoreError("read", path, errors.ErrIO, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return errors.NewStoreError("read", path, errors.ErrCorruptState, err)
	}
	return nil
}

// WriteJSON persists v to path durably: the document is marshaled with
// two-space indentation, written to a temporary file, synced to disk, then
// renamed into place. The operation does not report success until the new
// content is fully persisted, so a crash immediately after a successful write
// cannot expose the pre-write state to a racing reader.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.NewStoreError("write", path, errors.ErrIO, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return errors.NewStoreError("write", path, errors.ErrIO, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return errors.NewStoreError("write", path, errors.ErrIO, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return errors.NewStoreError("write", path, errors.ErrIO, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return errors.NewStoreError("write", path, errors.ErrIO, err)
	}
	return nil
}
