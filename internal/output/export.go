package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	creerrors "cre/internal/errors"
)

// WriteFile writes rendered output to path. Paths ending in .zst are
// compressed transparently; result exports for large graphs shrink well.
func WriteFile(path string, data []byte) error {
	if !strings.HasSuffix(path, ".zst") {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return creerrors.Wrap(creerrors.InternalError,
				fmt.Sprintf("failed to write %s", path), err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return creerrors.Wrap(creerrors.InternalError,
			fmt.Sprintf("failed to create %s", path), err)
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		_ = f.Close()
		return creerrors.Wrap(creerrors.InternalError, "failed to initialize zstd writer", err)
	}

	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return creerrors.Wrap(creerrors.InternalError,
			fmt.Sprintf("failed to write %s", path), err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return creerrors.Wrap(creerrors.InternalError,
			fmt.Sprintf("failed to finish %s", path), err)
	}
	return f.Close()
}

// ReadFile reads a previously exported file, decompressing .zst paths.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, creerrors.Wrap(creerrors.InternalError,
			fmt.Sprintf("failed to read %s", path), err)
	}
	if !strings.HasSuffix(path, ".zst") {
		return data, nil
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, creerrors.Wrap(creerrors.InternalError, "failed to initialize zstd reader", err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, creerrors.Wrap(creerrors.InternalError,
			fmt.Sprintf("failed to decompress %s", path), err)
	}
	return out, nil
}
