package scene

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// Archive member names.
const (
	sceneMember   = "scene.json"
	previewMember = "preview.svg"
)

// WriteFile writes s to an .hsm archive at path.
func WriteFile(path string, s *Scene, preview string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(file, s, preview); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Write writes s to w as a zip archive holding scene.json and, when
// preview is not empty, preview.svg.
func Write(w io.Writer, s *Scene, preview string) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	sw, err := zw.Create(sceneMember)
	if err != nil {
		return err
	}
	if _, err := sw.Write(data); err != nil {
		return err
	}

	if preview != "" {
		pw, err := zw.Create(previewMember)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(pw, preview); err != nil {
			return err
		}
	}
	return zw.Close()
}

// ReadFile reads a scene from an .hsm archive.
func ReadFile(path string) (*Scene, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	return Read(file, info.Size())
}

// Read reads a scene from a zip archive.
func Read(r io.ReaderAt, size int64) (*Scene, error) {
	data, err := readMember(r, size, sceneMember)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// ReadBytes reads a scene from archive bytes.
func ReadBytes(data []byte) (*Scene, error) {
	return Read(bytes.NewReader(data), int64(len(data)))
}

// ReadPreview returns the stored SVG preview, or "" if there is none.
func ReadPreview(r io.ReaderAt, size int64) (string, error) {
	data, err := readMember(r, size, previewMember)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

func readMember(r io.ReaderAt, size int64, name string) ([]byte, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s not found in archive: %w", name, os.ErrNotExist)
}
