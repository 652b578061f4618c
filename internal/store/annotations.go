package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidID  = errors.New("missing event id")
	ErrInvalidTag = errors.New("missing tag")
)

// AnnotationStore holds the priority and tag markers users put on events
type AnnotationStore interface {
	Load() error
	TogglePriority(id string) ([]string, error)
	ToggleTag(id, tag string) ([]string, error)
	Snapshot() Annotations
}

// FileAnnotationStore keeps annotations in memory and rewrites a JSON file
// after every change.
type FileAnnotationStore struct {
	path   string
	logger logrus.FieldLogger
	now    func() time.Time

	mu       sync.Mutex
	eventIDs []string
	tags     map[string][]string
}

// NewFileAnnotationStore creates an empty store backed by path. Call Load to
// read existing annotations.
func NewFileAnnotationStore(path string, logger logrus.FieldLogger) *FileAnnotationStore {
	return &FileAnnotationStore{
		path:     path,
		logger:   logger.WithField("component", "annotations"),
		now:      time.Now,
		eventIDs: []string{},
		tags:     map[string][]string{},
	}
}

// Path returns the backing file
func (s *FileAnnotationStore) Path() string {
	return s.path
}

// Load reads the annotation file. A missing, unreadable or corrupt file
// leaves the store empty; a corrupt one is renamed first so the next write
// cannot overwrite it.
func (s *FileAnnotationStore) Load() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.WithField("path", s.path).Info("No annotation file yet, starting empty")
		return nil
	}
	if err != nil {
		s.logger.WithError(err).WithField("path", s.path).Warn("Annotation file unreadable, starting empty")
		return nil
	}

	var file annotationFile
	if err := json.Unmarshal(raw, &file); err != nil {
		entry := s.logger.WithError(err).WithField("path", s.path)
		moved, mvErr := s.quarantine()
		if mvErr != nil {
			entry.WithField("move_error", mvErr).Warn("Annotation file corrupt and could not be moved aside, starting empty")
		} else {
			entry.WithField("moved_to", moved).Warn("Annotation file corrupt, moved aside and starting empty")
		}
		return nil
	}

	tags := make(map[string][]string, len(file.Tags))
	for id, list := range file.Tags {
		if id == "" {
			continue
		}
		if list = dedupe(list); len(list) > 0 {
			tags[id] = list
		}
	}

	eventIDs := dedupe(file.EventIDs)

	s.mu.Lock()
	s.eventIDs = eventIDs
	s.tags = tags
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"path":       s.path,
		"priorities": len(eventIDs),
		"tagged":     len(tags),
	}).Info("Annotations loaded")
	return nil
}

// TogglePriority adds id to the priority list or removes it, persists, and
// returns the full list.
func (s *FileAnnotationStore) TogglePriority(id string) ([]string, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, 0, len(s.eventIDs)+1)
	found := false
	for _, e := range s.eventIDs {
		if e == id {
			found = true
			continue
		}
		next = append(next, e)
	}
	if !found {
		next = append(next, id)
	}

	if err := s.persist(next, s.tags); err != nil {
		return nil, err
	}
	s.eventIDs = next
	return cloneStrings(next), nil
}

// ToggleTag adds tag to the event's tag set or removes it, persists, and
// returns the event's tags.
func (s *FileAnnotationStore) ToggleTag(id, tag string) ([]string, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	if tag == "" {
		return nil, ErrInvalidTag
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.tags[id]
	set := make([]string, 0, len(current)+1)
	found := false
	for _, t := range current {
		if t == tag {
			found = true
			continue
		}
		set = append(set, t)
	}
	if !found {
		set = append(set, tag)
	}

	next := make(map[string][]string, len(s.tags)+1)
	for k, v := range s.tags {
		next[k] = v
	}
	if len(set) == 0 {
		delete(next, id)
	} else {
		next[id] = set
	}

	if err := s.persist(s.eventIDs, next); err != nil {
		return nil, err
	}
	s.tags = next
	return cloneStrings(set), nil
}

// Snapshot returns a copy safe to read without holding the store
func (s *FileAnnotationStore) Snapshot() Annotations {
	s.mu.Lock()
	defer s.mu.Unlock()

	priority := make(map[string]bool, len(s.eventIDs))
	for _, id := range s.eventIDs {
		priority[id] = true
	}
	tags := make(map[string][]string, len(s.tags))
	for id, list := range s.tags {
		tags[id] = cloneStrings(list)
	}
	return Annotations{
		EventIDs: cloneStrings(s.eventIDs),
		Tags:     tags,
		priority: priority,
	}
}

// quarantine renames the annotation file to <path>.corrupt-<unix time>
func (s *FileAnnotationStore) quarantine() (string, error) {
	target := fmt.Sprintf("%s.corrupt-%d", s.path, s.now().Unix())
	if err := os.Rename(s.path, target); err != nil {
		return "", err
	}
	return target, nil
}

// persist overwrites the whole file; callers hold s.mu
func (s *FileAnnotationStore) persist(eventIDs []string, tags map[string][]string) error {
	data, err := json.MarshalIndent(annotationFile{EventIDs: eventIDs, Tags: tags}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode annotations: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
