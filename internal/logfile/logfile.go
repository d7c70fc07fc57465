// Package logfile reads log files and finds them on disk.
package logfile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extension is the suffix of analyzable files.
const Extension = ".log"

// maxLineSize bounds a single line; chat spam can exceed bufio's default.
const maxLineSize = 1 << 20

var (
	// ErrNoLogFiles is returned by Discover when nothing matches.
	ErrNoLogFiles = errors.New("no log files found")
	// ErrNotLogFile is returned for paths without the .log extension.
	ErrNotLogFile = errors.New("not a .log file")
)

// ReadLines reads every line of the file at path into memory.
func ReadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only log file.
			_ = cerr
		}
	}()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}
	return lines, nil
}

// IsLogFile reports whether path names an existing regular .log file.
func IsLogFile(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), Extension) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// CheckPath validates an explicitly given log path.
func CheckPath(path string) error {
	if !strings.EqualFold(filepath.Ext(path), Extension) {
		return fmt.Errorf("%s: %w", path, ErrNotLogFile)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", path, ErrNotLogFile)
	}
	return nil
}

// Discover returns the .log files directly inside dir, sorted by name.
func Discover(dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), Extension) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoLogFiles)
	}
	sort.Strings(paths)
	return paths, nil
}
