package feed

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// WatchEmail waits for the crew to write its email artifact at path and
// reports it through emit, once. It returns when the artifact was seen or
// ctx is done. The parent directory is watched so the file may not exist
// yet.
func WatchEmail(ctx context.Context, path string, emit func(lines ...string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			// Create fires before the body is written.
			if info, err := os.Stat(path); err != nil || info.Size() == 0 {
				continue
			}
			emit(EmailLines(path)...)
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher: %w", err)
		}
	}
}

// EmailLines returns the feed lines announcing the email artifact at path:
// the saved notice and, if the first line is a "To:" header, the recipient.
func EmailLines(path string) []string {
	lines := []string{"Email has been generated and saved to " + filepath.Base(path)}

	f, err := os.Open(path)
	if err != nil {
		return lines
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if sc.Scan() {
		first := strings.TrimSpace(sc.Text())
		if rest, ok := strings.CutPrefix(first, "To:"); ok {
			lines = append(lines, "Email prepared for recipient: "+strings.TrimSpace(rest))
		}
	}
	return lines
}
