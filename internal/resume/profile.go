package resume

import "strings"

// MaxHistory is the number of superseded documents a profile retains.
const MaxHistory = 3

// Profile is the per-user container of one active document and a
// newest-first history of at most MaxHistory superseded documents.
type Profile struct {
	UserID   string     `json:"userId" bson:"_id"`
	Username string     `json:"username" bson:"username"`
	Active   Document   `json:"active" bson:"active"`
	History  []Document `json:"history" bson:"history"`
	// Revision is bumped by repositories on every committed write and is
	// used for optimistic concurrency by the remote backends.
	Revision int64 `json:"revision" bson:"revision"`
}

// NewProfile builds the profile installed at account creation. active must
// already carry its version identifier and timestamp.
func NewProfile(active Document) *Profile {
	return &Profile{
		UserID:   active.UserID,
		Username: NormalizeUsername(active.Username),
		Active:   active,
		History:  []Document{},
	}
}

// Clone returns a deep copy of p.
func (p *Profile) Clone() *Profile {
	out := *p
	out.Active = p.Active.Clone()
	out.History = make([]Document, len(p.History))
	for i, d := range p.History {
		out.History[i] = d.Clone()
	}
	return &out
}

// Supersede moves the current active document to the front of history,
// installs next as active and truncates history to MaxHistory. Documents
// pushed past the limit are returned; they are gone from the profile.
func (p *Profile) Supersede(next Document) []Document {
	p.History = append([]Document{p.Active}, p.History...)
	p.Active = next
	return p.truncate()
}

// Restore makes the history entry versionID active again, keeping its
// version identifier and timestamp, and pushes the current active document
// to the front of history.
func (p *Profile) Restore(versionID string) ([]Document, error) {
	idx := p.historyIndex(versionID)
	if idx < 0 {
		return nil, ErrVersionNotFound
	}
	restored := p.History[idx]
	rest := make([]Document, 0, len(p.History))
	rest = append(rest, p.Active)
	rest = append(rest, p.History[:idx]...)
	rest = append(rest, p.History[idx+1:]...)
	p.History = rest
	p.Active = restored
	return p.truncate(), nil
}

// DeleteHistory removes the history entry versionID. It reports false when
// there was nothing to remove.
func (p *Profile) DeleteHistory(versionID string) (Document, bool) {
	idx := p.historyIndex(versionID)
	if idx < 0 {
		return Document{}, false
	}
	removed := p.History[idx]
	p.History = append(p.History[:idx:idx], p.History[idx+1:]...)
	return removed, true
}

func (p *Profile) historyIndex(versionID string) int {
	for i, d := range p.History {
		if d.VersionID == versionID {
			return i
		}
	}
	return -1
}

func (p *Profile) truncate() []Document {
	if len(p.History) <= MaxHistory {
		return nil
	}
	evicted := append([]Document(nil), p.History[MaxHistory:]...)
	p.History = p.History[:MaxHistory:MaxHistory]
	return evicted
}

// NormalizeUsername lower-cases a username and keeps only [a-z0-9-], so
// that lookups by username are case-insensitive.
func NormalizeUsername(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ' || r == '_' || r == '.':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
