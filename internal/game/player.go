package game

import (
	"sync"
	"time"
)

// PlayerConnection abstracts the outbound side of a player's websocket
// connection so game logic never touches the transport directly.
type PlayerConnection interface {
	Send(data []byte) error
	Close() error
	RemoteAddr() string
}

// Player represents one connected participant at a room's table. The
// authoritative drag state for a die it's holding lives on the ServerDie
// itself (dragState); Player only tracks which single die it may be
// dragging at once, so DragStart can reject a second concurrent grab.
type Player struct {
	mu sync.RWMutex

	ID          string
	DisplayName string
	Color       string
	Connection  PlayerConnection

	// DiceIDs is an ordered sequence, not a set: it preserves the order
	// dice were spawned in, matching the client-visible dice_ids ordering.
	DiceIDs []string

	draggingDieID string
	isDragging    bool

	ConnectedAt time.Time

	dragRate rateLimiter
}

// NewPlayer creates a new player bound to conn.
func NewPlayer(id, displayName, color string, conn PlayerConnection) *Player {
	return &Player{
		ID:          id,
		DisplayName: displayName,
		Color:       color,
		Connection:  conn,
		ConnectedAt: time.Now(),
		dragRate:    newRateLimiter(dragMoveRateLimit),
	}
}

// Info returns the PlayerInfo wire shape for this player.
func (p *Player) Info() (id, displayName, color string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ID, p.DisplayName, p.Color
}

// SetColor updates the player's color. Per the wire protocol this never
// triggers a broadcast to other players.
func (p *Player) SetColor(color string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Color = color
}

// AddDie records a die as owned by this player, appending it to the
// ordered dice_ids sequence if not already present.
func (p *Player) AddDie(dieID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range p.DiceIDs {
		if id == dieID {
			return
		}
	}
	p.DiceIDs = append(p.DiceIDs, dieID)
}

// RemoveDie drops a die from this player's ownership sequence.
func (p *Player) RemoveDie(dieID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, id := range p.DiceIDs {
		if id == dieID {
			p.DiceIDs = append(p.DiceIDs[:i], p.DiceIDs[i+1:]...)
			return
		}
	}
}

// DieIDs returns a snapshot of the player's owned dice ids, in the order
// they were added.
func (p *Player) DieIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, len(p.DiceIDs))
	copy(ids, p.DiceIDs)
	return ids
}

// BeginDrag starts tracking a drag of dieID, or returns false if the
// player is already dragging another die.
func (p *Player) BeginDrag(dieID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isDragging {
		return false
	}
	p.isDragging = true
	p.draggingDieID = dieID
	return true
}

// EndDrag clears the active drag, if dieID is the one this player holds.
func (p *Player) EndDrag(dieID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isDragging && p.draggingDieID == dieID {
		p.isDragging = false
		p.draggingDieID = ""
	}
}
