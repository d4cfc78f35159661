package save

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4"

	"black-oil/internal/game"
)

// CompressedExt marks save paths written as lz4 frames.
const CompressedExt = ".lz4"

// SaveFile writes a session to path, compressing when the path ends in .lz4.
// The file is written to a temporary sibling and renamed into place.
func SaveFile(path string, g *game.GameState) error {
	data, err := Marshal(g)
	if err != nil {
		return err
	}
	if strings.HasSuffix(path, CompressedExt) {
		if data, err = compress(data); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create save directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace save: %w", err)
	}
	return nil
}

// LoadFile reads a session written by SaveFile or by an older release.
func (l *Loader) LoadFile(path string) (*game.GameState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, CompressedExt) {
		if data, err = decompress(data); err != nil {
			return nil, err
		}
	}
	return l.Unmarshal(data)
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("compress save: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress save: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: lz4: %v", ErrCorrupt, err)
	}
	return out, nil
}
