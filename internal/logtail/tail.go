// Package logtail reads service log files: trailing lines for status output
// and a blocking follow for the logs command.
package logtail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
)

const tailChunkSize = 4096

// LastLines returns up to n trailing lines of the file at path.
func LastLines(path string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size == 0 {
		return nil, nil
	}

	// Read fixed-size chunks backwards from the end until enough newlines
	// were seen. Avoids loading a large log into memory.
	var buf []byte
	offset := size
	for offset > 0 {
		chunk := int64(tailChunkSize)
		if offset < chunk {
			chunk = offset
		}
		offset -= chunk
		part := make([]byte, chunk)
		if _, err := f.ReadAt(part, offset); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		buf = append(part, buf...)
		if countNewlines(buf) > n {
			break
		}
	}

	lines := strings.Split(strings.TrimRight(string(buf), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

func countNewlines(b []byte) int {
	c := 0
	for _, ch := range b {
		if ch == '\n' {
			c++
		}
	}
	return c
}

// Follow copies the current contents of path to w and then streams appended
// data until ctx is done. Truncation restarts output from the beginning of
// the file. Removal or rename of the file ends the follow with an error.
func Follow(ctx context.Context, path string, w io.Writer) error {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(path); err != nil {
		return err
	}

	// Drain what is already there before waiting on events.
	offset, err := io.Copy(w, f)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				return fmt.Errorf("log file %s removed", path)
			}
			if !ev.Has(fsnotify.Write) {
				continue
			}
			fi, err := f.Stat()
			if err != nil {
				return err
			}
			if fi.Size() < offset {
				// truncated; start over
				if _, err := f.Seek(0, io.SeekStart); err != nil {
					return err
				}
				offset = 0
			}
			n, err := io.Copy(w, f)
			if err != nil {
				return err
			}
			offset += n
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return werr
		}
	}
}
