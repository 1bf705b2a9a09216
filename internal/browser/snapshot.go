package browser

import "sync"

// Snapshot is a static Env populated by the caller.
// The zero value is an offline page with no capabilities.
type Snapshot struct {
	Host  string
	Path  string
	Query string

	UA       string
	Hints    ClientHints
	IsOnline bool
	Network  *NetworkInfo // nil = Network Information API unsupported

	Orientation    string // screen.orientation.type, "" = unsupported
	OrientationErr error

	Geometry Viewport

	RootTheme   string
	BodyTheme   string
	ColorScheme string // "dark", "light", or "" when matchMedia is unsupported

	MetaTags   map[string]string
	Storage    map[string]string
	StorageErr error
	Cookies    string
	CookieErr  error
}

func (s *Snapshot) Location() Location {
	return Location{Host: s.Host, Path: s.Path, Query: s.Query}
}

func (s *Snapshot) UserAgent() string        { return s.UA }
func (s *Snapshot) ClientHints() ClientHints { return s.Hints }
func (s *Snapshot) Online() bool             { return s.IsOnline }

func (s *Snapshot) Connection() (NetworkInfo, bool) {
	if s.Network == nil {
		return NetworkInfo{}, false
	}
	return *s.Network, true
}

func (s *Snapshot) OrientationType() (string, error) {
	if s.OrientationErr != nil {
		return "", s.OrientationErr
	}
	return s.Orientation, nil
}

func (s *Snapshot) Viewport() Viewport { return s.Geometry }

func (s *Snapshot) ThemeAttr() (string, string) { return s.RootTheme, s.BodyTheme }

func (s *Snapshot) PrefersDark() (bool, bool) {
	if s.ColorScheme == "" {
		return false, false
	}
	return s.ColorScheme == "dark", true
}

func (s *Snapshot) Meta(name string) (string, bool) {
	v, ok := s.MetaTags[name]
	return v, ok
}

func (s *Snapshot) StorageItem(key string) (string, error) {
	if s.StorageErr != nil {
		return "", s.StorageErr
	}
	return s.Storage[key], nil
}

func (s *Snapshot) Cookie() (string, error) {
	if s.CookieErr != nil {
		return "", s.CookieErr
	}
	return s.Cookies, nil
}

// Live is a mutable, concurrency-safe Env that emits refresh triggers.
// It backs pages whose state arrives over time, such as a websocket session.
type Live struct {
	mu   sync.RWMutex
	snap Snapshot
	subs map[Trigger][]func()
}

// NewLive wraps an initial snapshot.
func NewLive(initial Snapshot) *Live {
	return &Live{snap: initial, subs: make(map[Trigger][]func())}
}

// Update mutates the current state under the write lock.
func (l *Live) Update(fn func(s *Snapshot)) {
	l.mu.Lock()
	fn(&l.snap)
	l.mu.Unlock()
}

// Current returns a copy of the current state.
func (l *Live) Current() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap
}

// Subscribe registers fn for trigger.
func (l *Live) Subscribe(trigger Trigger, fn func()) {
	l.mu.Lock()
	l.subs[trigger] = append(l.subs[trigger], fn)
	l.mu.Unlock()
}

// Emit runs every subscriber of trigger on the calling goroutine, in
// registration order. It returns the number of subscribers notified.
func (l *Live) Emit(trigger Trigger) int {
	l.mu.RLock()
	fns := append([]func(){}, l.subs[trigger]...)
	l.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

func (l *Live) read() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap
}

func (l *Live) Location() Location {
	s := l.read()
	return s.Location()
}

func (l *Live) UserAgent() string {
	s := l.read()
	return s.UserAgent()
}

func (l *Live) ClientHints() ClientHints {
	s := l.read()
	return s.ClientHints()
}

func (l *Live) Online() bool {
	s := l.read()
	return s.Online()
}

func (l *Live) Connection() (NetworkInfo, bool) {
	s := l.read()
	return s.Connection()
}

func (l *Live) OrientationType() (string, error) {
	s := l.read()
	return s.OrientationType()
}

func (l *Live) Viewport() Viewport {
	s := l.read()
	return s.Viewport()
}

func (l *Live) ThemeAttr() (string, string) {
	s := l.read()
	return s.ThemeAttr()
}

func (l *Live) PrefersDark() (bool, bool) {
	s := l.read()
	return s.PrefersDark()
}

func (l *Live) Meta(name string) (string, bool) {
	s := l.read()
	return s.Meta(name)
}

func (l *Live) StorageItem(key string) (string, error) {
	s := l.read()
	return s.StorageItem(key)
}

func (l *Live) Cookie() (string, error) {
	s := l.read()
	return s.Cookie()
}
