package configblockplugin

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const defaultFileMode os.FileMode = 0o644

// fileState is a target file as read before modification.
type fileState struct {
	// Path is the resolved path written to; symlinks are followed so the
	// link itself survives the atomic rename.
	Path        string
	Exists      bool
	Permissions os.FileMode
	Raw         []byte
	Content     string
}

func readFileState(path, encodingName string) (*fileState, error) {
	state := &fileState{Path: path, Permissions: defaultFileMode}

	resolved, err := filepath.EvalSymlinks(path)
	switch {
	case err == nil:
		state.Path = resolved
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	info, err := os.Stat(state.Path)
	if errors.Is(err, os.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", state.Path)
	}

	data, err := os.ReadFile(state.Path)
	if err != nil {
		return nil, err
	}
	content, err := decodeContent(data, encodingName)
	if err != nil {
		return nil, fmt.Errorf("decode %s as %s: %w", state.Path, encodingName, err)
	}

	state.Exists = true
	state.Permissions = info.Mode().Perm()
	state.Raw = data
	state.Content = content
	return state, nil
}

// appendBlock returns content with block and marker appended on their own
// lines, separated from existing content by a newline.
func appendBlock(content, block, marker string) string {
	var b strings.Builder
	b.WriteString(content)
	if content != "" && !strings.HasSuffix(content, "\n") {
		b.WriteByte('\n')
	}
	if block = strings.TrimRight(block, "\n"); block != "" {
		b.WriteString(block)
		b.WriteByte('\n')
	}
	b.WriteString(marker)
	b.WriteByte('\n')
	return b.String()
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".rigup-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func createBackup(path string, content []byte, perm os.FileMode, now time.Time) (string, error) {
	backupPath := fmt.Sprintf("%s.%s.bak", path, now.UTC().Format("20060102T150405"))
	if err := os.WriteFile(backupPath, content, perm); err != nil {
		return "", err
	}
	return backupPath, nil
}

func decodeContent(data []byte, name string) (string, error) {
	enc := encodingByName(name)
	if enc == nil {
		return string(data), nil
	}
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func encodeContent(content, name string) ([]byte, error) {
	enc := encodingByName(name)
	if enc == nil {
		return []byte(content), nil
	}
	var buf bytes.Buffer
	writer := transform.NewWriter(&buf, enc.NewEncoder())
	if _, err := writer.Write([]byte(content)); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodingByName maps the encodings shell profiles are found in. Windows
// PowerShell 5 writes its profile as UTF-16LE with a BOM.
func encodingByName(name string) encoding.Encoding {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-16", "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case "utf-8-bom", "utf8-bom":
		return unicode.UTF8BOM
	case "windows-1252":
		return charmap.Windows1252
	case "latin-1", "latin1", "iso-8859-1":
		return charmap.ISO8859_1
	default:
		return nil
	}
}

// SupportedEncoding reports whether name is accepted in configuration.
func SupportedEncoding(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return true
	}
	return encodingByName(name) != nil
}
