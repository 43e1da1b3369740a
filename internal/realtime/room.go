package realtime

import (
	"strings"

	"github.com/google/uuid"
)

const (
	userRoomPrefix = "user:"
	chatRoomPrefix = "chat:"
)

// Server to client event names.
const (
	EventReceiveMessage  = "receiveMessage"
	EventNewNotification = "newNotification"
	EventPong            = "pong"
	EventError           = "error"
)

// Client to server event names.
const (
	EventJoin  = "join"
	EventLeave = "leave"
	EventPing  = "ping"
)

// UserRoom addresses every connection of one user.
func UserRoom(userID uuid.UUID) string {
	return userRoomPrefix + userID.String()
}

// ChatRoom addresses a two-party conversation. The ids are sorted so both
// participants compute the same name.
func ChatRoom(a, b uuid.UUID) string {
	lo, hi := a.String(), b.String()
	if hi < lo {
		lo, hi = hi, lo
	}
	return chatRoomPrefix + lo + ":" + hi
}

// CanJoin reports whether userID may subscribe to room: its own user room or a
// chat room it is one side of.
func CanJoin(userID uuid.UUID, room string) bool {
	if room == UserRoom(userID) {
		return true
	}
	rest, ok := strings.CutPrefix(room, chatRoomPrefix)
	if !ok {
		return false
	}
	left, right, ok := strings.Cut(rest, ":")
	if !ok {
		return false
	}
	a, err := uuid.Parse(left)
	if err != nil {
		return false
	}
	b, err := uuid.Parse(right)
	if err != nil || a == b {
		return false
	}
	return (a == userID || b == userID) && ChatRoom(a, b) == room
}
