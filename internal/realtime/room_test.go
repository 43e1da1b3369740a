package realtime

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestChatRoomIsSymmetric(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.Equal(t, ChatRoom(a, b), ChatRoom(b, a))
	assert.NotEqual(t, ChatRoom(a, b), ChatRoom(a, uuid.New()))
}

func TestCanJoin(t *testing.T) {
	me, other, stranger := uuid.New(), uuid.New(), uuid.New()

	assert.True(t, CanJoin(me, UserRoom(me)))
	assert.False(t, CanJoin(me, UserRoom(other)))
	assert.True(t, CanJoin(me, ChatRoom(me, other)))
	assert.True(t, CanJoin(me, ChatRoom(other, me)))
	assert.False(t, CanJoin(stranger, ChatRoom(me, other)))

	// Unsorted or malformed names are refused even if they mention the user.
	lo, hi := me.String(), other.String()
	if hi < lo {
		lo, hi = hi, lo
	}
	assert.False(t, CanJoin(me, "chat:"+hi+":"+lo))
	assert.False(t, CanJoin(me, "chat:"+me.String()+":"+me.String()))
	assert.False(t, CanJoin(me, "chat:"+me.String()))
	assert.False(t, CanJoin(me, "lobby"))
}
