package room

import "github.com/zmagdon/watchparty/internal/domain"

// Presence tracks which user each live connection has joined as.
// Derived entirely from connections and never persisted. A user may
// hold several connections at once; listing de-duplicates by user id.
type Presence struct {
	byConn map[string]domain.User
}

func NewPresence() *Presence {
	return &Presence{byConn: make(map[string]domain.User)}
}

// Join upserts the user mapping for the connection.
func (p *Presence) Join(connID string, u domain.User) {
	p.byConn[connID] = u
}

// Leave drops the connection's mapping; no-op when absent.
func (p *Presence) Leave(connID string) {
	delete(p.byConn, connID)
}

// User returns the join identity of a connection, if it has one.
func (p *Presence) User(connID string) (domain.User, bool) {
	u, ok := p.byConn[connID]
	return u, ok
}

// Users is a fresh snapshot of connected users de-duplicated by id.
func (p *Presence) Users() []domain.User {
	seen := make(map[string]struct{}, len(p.byConn))
	out := make([]domain.User, 0, len(p.byConn))
	for _, u := range p.byConn {
		if _, dup := seen[u.ID]; dup {
			continue
		}
		seen[u.ID] = struct{}{}
		out = append(out, u)
	}
	return out
}
