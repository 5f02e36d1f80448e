package provisioner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zeebo/xxh3"
)

// stagedFile describes the verified copy placed in the project folder.
type stagedFile struct {
	Path     string
	Size     int64
	Checksum string
}

// stageFile copies src into dstDir under its base name, hashing the content
// in flight, then re-reads the written copy to verify it matches. A failed or
// mismatched copy removes the partial destination; src is never touched.
func stageFile(src, dstDir string) (*stagedFile, error) {
	in, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	dst := filepath.Join(dstDir, filepath.Base(src))
	out, err := os.Create(dst)
	if err != nil {
		return nil, err
	}

	hasher := xxh3.New()
	size, err := io.Copy(io.MultiWriter(out, hasher), in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return nil, err
	}

	sum := fmt.Sprintf("%016x", hasher.Sum64())

	written, err := hashFile(dst)
	if err != nil {
		_ = os.Remove(dst)
		return nil, err
	}
	if written != sum {
		_ = os.Remove(dst)
		return nil, fmt.Errorf("checksum mismatch after copy: %s != %s", written, sum)
	}

	return &stagedFile{Path: dst, Size: size, Checksum: sum}, nil
}

// hashFile returns the xxh3 checksum of a file's content.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := xxh3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}
