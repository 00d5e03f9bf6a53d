package relay

import (
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
)

// DefaultRoomCapacity matches the two-player game the relay serves.
const DefaultRoomCapacity = 2

// Room groups the connections of one game instance. Members are kept in
// join order so the first entry is always the room's creator while it stays
// connected.
type Room struct {
	ID        string
	CreatedAt time.Time
	members   []string
}

func (rm *Room) has(connID string) bool {
	for _, m := range rm.members {
		if m == connID {
			return true
		}
	}
	return false
}

func (rm *Room) othersOf(connID string) []string {
	others := make([]string, 0, len(rm.members))
	for _, m := range rm.members {
		if m != connID {
			others = append(others, m)
		}
	}
	return others
}

// JoinResult reports how CreateOrJoin resolved: Created means the caller is
// the sole member, Members lists the pre-existing members in join order, and
// Changed tells whether membership actually mutated — a client retry that
// re-declares an existing membership is acked but changes nothing.
type JoinResult struct {
	Created bool
	Changed bool
	Members []string
}

// Directory maps room ids to live membership. A room exists only while it
// has at least one connected member; the last leave deletes it.
type Directory struct {
	mu       sync.RWMutex
	capacity int
	rooms    map[string]*Room
	byConn   map[string]map[string]struct{}
}

func NewDirectory(capacity int) *Directory {
	if capacity <= 0 {
		capacity = DefaultRoomCapacity
	}
	return &Directory{
		capacity: capacity,
		rooms:    make(map[string]*Room),
		byConn:   make(map[string]map[string]struct{}),
	}
}

// CreateOrJoin adds connID to the room. Create is lenient: an unknown id is
// created with the caller as sole member, a known id is joined as if the
// create were a retry. Join is strict: an unknown id fails with
// ErrRoomNotFound so a client cannot accidentally start an empty room when
// it meant to rendezvous with a host.
func (d *Directory) CreateOrJoin(roomID, connID string, lenient bool) (JoinResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[roomID]
	if !ok {
		if !lenient {
			return JoinResult{}, ErrRoomNotFound
		}
		room = &Room{ID: roomID, CreatedAt: time.Now()}
		d.rooms[roomID] = room
		setRooms(len(d.rooms))
	}

	if room.has(connID) {
		// Duplicate create/join from a client retry; re-declare, don't
		// fail, and report Changed false so nobody re-announces it.
		others := room.othersOf(connID)
		return JoinResult{Created: len(others) == 0, Members: others}, nil
	}

	if len(room.members) >= d.capacity {
		return JoinResult{}, ErrRoomFull
	}

	existing := append([]string(nil), room.members...)
	room.members = append(room.members, connID)

	if d.byConn[connID] == nil {
		d.byConn[connID] = make(map[string]struct{})
	}
	d.byConn[connID][roomID] = struct{}{}

	return JoinResult{Created: len(existing) == 0, Changed: true, Members: existing}, nil
}

// Leave removes the member and deletes the room if it became empty. It
// returns the remaining members so callers can announce the departure, and
// whether membership actually changed — leaving a room the connection is
// not in is a no-op and must not be announced to anyone.
func (d *Directory) Leave(roomID, connID string) ([]string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.leaveLocked(roomID, connID)
}

func (d *Directory) leaveLocked(roomID, connID string) ([]string, bool) {
	room, ok := d.rooms[roomID]
	if !ok || !room.has(connID) {
		return nil, false
	}

	room.members = room.othersOf(connID)

	if set := d.byConn[connID]; set != nil {
		delete(set, roomID)
		if len(set) == 0 {
			delete(d.byConn, connID)
		}
	}

	if len(room.members) == 0 {
		delete(d.rooms, roomID)
		setRooms(len(d.rooms))
		return nil, true
	}
	return append([]string(nil), room.members...), true
}

// LeaveAll removes the connection from every room it belonged to, pruning
// now-empty rooms. The result maps each affected room id to its remaining
// members.
func (d *Directory) LeaveAll(connID string) map[string][]string {
	d.mu.Lock()
	defer d.mu.Unlock()

	set := d.byConn[connID]
	if len(set) == 0 {
		return nil
	}

	roomIDs := make([]string, 0, len(set))
	for roomID := range set {
		roomIDs = append(roomIDs, roomID)
	}
	sort.Strings(roomIDs)

	left := make(map[string][]string, len(roomIDs))
	for _, roomID := range roomIDs {
		remaining, _ := d.leaveLocked(roomID, connID)
		left[roomID] = remaining
	}
	return left
}

// MembersExcept returns the room's members minus the given connection, in
// join order. A missing room yields an empty set, not an error.
func (d *Directory) MembersExcept(roomID, connID string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	room, ok := d.rooms[roomID]
	if !ok {
		return nil
	}
	return room.othersOf(connID)
}

// Snapshot lists live rooms for operational visibility.
func (d *Directory) Snapshot() []RoomRes {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rooms := make([]RoomRes, 0, len(d.rooms))
	for _, room := range d.rooms {
		rooms = append(rooms, RoomRes{
			ID:        room.ID,
			Members:   len(room.members),
			CreatedAt: room.CreatedAt.Unix(),
		})
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms
}
