package campaign

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"outreach-engine/internal/domain"
)

// FileClassifier reads the activity feed the platform's user-sync job drops
// into the data dir: a JSON object of email -> last-login timestamp. Leads
// absent from the feed classify as unknown.
type FileClassifier struct {
	Path           string
	ActiveWindow   time.Duration // logged in more recently than this: active
	InactiveWindow time.Duration // not seen for at least this long: inactive
	Now            func() time.Time

	mu      sync.Mutex
	loaded  map[string]time.Time
	modTime time.Time
}

func (f *FileClassifier) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

func (f *FileClassifier) Classify(_ context.Context, email string) (domain.Activity, error) {
	if err := f.refresh(); err != nil {
		return domain.ActivityUnknown, err
	}

	f.mu.Lock()
	last, ok := f.loaded[email]
	f.mu.Unlock()
	if !ok {
		return domain.ActivityUnknown, nil
	}

	age := f.now().Sub(last)
	switch {
	case age < f.ActiveWindow:
		return domain.ActivityActive, nil
	case age < f.InactiveWindow:
		return domain.ActivityModerate, nil
	default:
		return domain.ActivityInactive, nil
	}
}

// refresh reloads the feed when its mtime changed. A missing feed is not an
// error; it means no classifications, so everything is unknown.
func (f *FileClassifier) refresh() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	st, err := os.Stat(f.Path)
	if os.IsNotExist(err) {
		f.loaded = nil
		return nil
	}
	if err != nil {
		return err
	}
	if f.loaded != nil && st.ModTime().Equal(f.modTime) {
		return nil
	}

	b, err := os.ReadFile(f.Path)
	if err != nil {
		return err
	}
	var raw map[string]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	m := make(map[string]time.Time, len(raw))
	for email, ts := range raw {
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			continue
		}
		m[email] = t
	}
	f.loaded = m
	f.modTime = st.ModTime()
	return nil
}
