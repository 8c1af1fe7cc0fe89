package concat

// Session is the multipart upload assembling one target object.
type Session struct {
	TargetKey string
	UploadID  string

	sources  []string
	nextPart int32
}

func newSession(targetKey, uploadID string) *Session {
	return &Session{
		TargetKey: targetKey,
		UploadID:  uploadID,
		nextPart:  1,
	}
}

// NextPart returns the part number the next source will be copied into.
func (s *Session) NextPart() int32 {
	return s.nextPart
}

// Sources returns the source keys copied so far, in part order.
func (s *Session) Sources() []string {
	out := make([]string, len(s.sources))
	copy(out, s.sources)
	return out
}

// record registers a copied source and advances the part counter.
func (s *Session) record(source string) {
	s.sources = append(s.sources, source)
	s.nextPart++
}

// Registry maps target keys to their upload sessions. It is only mutated
// during construction and read only afterwards.
type Registry struct {
	sessions map[string]*Session
	order    []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns the session for target, if any.
func (r *Registry) Get(target string) (*Session, bool) {
	s, ok := r.sessions[target]
	return s, ok
}

// Add registers a new session for target. An existing session is returned
// unchanged so a target never owns two uploads.
func (r *Registry) Add(target, uploadID string) *Session {
	if s, ok := r.sessions[target]; ok {
		return s
	}
	s := newSession(target, uploadID)
	r.sessions[target] = s
	r.order = append(r.order, target)
	return s
}

// Sessions returns every session in creation order.
func (r *Registry) Sessions() []*Session {
	out := make([]*Session, 0, len(r.order))
	for _, target := range r.order {
		out = append(out, r.sessions[target])
	}
	return out
}

// Len returns the number of sessions.
func (r *Registry) Len() int {
	return len(r.order)
}
