package dashboard

import (
	"fmt"
	"sync"

	"github.com/nerrad567/tileboard/internal/core"
	"github.com/nerrad567/tileboard/internal/view"
)

// Logger defines the logging interface used by the dashboard.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Navigator displays a built page. *core.Core satisfies it.
type Navigator interface {
	Navigate(doc *view.Document, interests []core.Interest)
}

// PageInfo summarises a page for listings.
type PageInfo struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Summary bool   `json:"summary"`
	Tiles   int    `json:"tiles"`
}

// Service holds the page configuration and opens pages.
type Service struct {
	path      string
	startPage string
	nav       Navigator
	logger    Logger

	mu      sync.Mutex
	file    *File
	current string
}

// NewService creates a Service for the page file at path. Call Load before
// opening pages.
func NewService(path, startPage string, nav Navigator) *Service {
	return &Service{
		path:      path,
		startPage: startPage,
		nav:       nav,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger.
func (s *Service) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Load reads the page file. On error the previous configuration is kept.
func (s *Service) Load() error {
	f, err := Load(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.file = f
	s.mu.Unlock()

	s.logger.Info("page configuration loaded", "path", s.path, "pages", len(f.Pages))
	return nil
}

// Pages lists the configured pages in file order.
func (s *Service) Pages() []PageInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	out := make([]PageInfo, 0, len(s.file.Pages))
	for _, p := range s.file.Pages {
		out = append(out, PageInfo{Name: p.Name, Title: p.Title, Summary: p.Summary, Tiles: len(p.Tiles)})
	}
	return out
}

// Current returns the name of the open page, or "" before the first Open.
func (s *Service) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Open builds the named page and hands it to the Navigator.
func (s *Service) Open(name string) error {
	s.mu.Lock()
	if s.file == nil {
		s.mu.Unlock()
		return ErrNoPages
	}
	p, ok := s.file.Page(name)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrPageNotFound, name)
	}

	doc, interests, err := Build(p)
	if err != nil {
		return err
	}

	s.nav.Navigate(doc, interests)

	s.mu.Lock()
	s.current = name
	s.mu.Unlock()
	return nil
}

// OpenStart opens the configured start page, or the first page.
func (s *Service) OpenStart() error {
	return s.Open(s.startName())
}

// Reopen opens the current page again, falling back to the start page when
// it no longer exists. The Core calls it after a hard reload, and the file
// watcher after the configuration changed.
func (s *Service) Reopen() {
	name := s.Current()
	if name == "" {
		name = s.startName()
	}

	err := s.Open(name)
	if err == nil {
		return
	}
	s.logger.Warn("reopening page failed", "page", name, "error", err)
	if start := s.startName(); start != name {
		if err := s.Open(start); err != nil {
			s.logger.Error("opening start page failed", "page", start, "error", err)
		}
	}
}

func (s *Service) startName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return s.startPage
	}
	if _, ok := s.file.Page(s.startPage); ok {
		return s.startPage
	}
	return s.file.Pages[0].Name
}
