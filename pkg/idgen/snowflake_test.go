package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextIDMonotonic(t *testing.T) {
	seen := make(map[int64]struct{})
	prev := int64(0)
	for i := 0; i < 10000; i++ {
		id := NextID()
		assert.Greater(t, id, prev)
		_, dup := seen[id]
		assert.False(t, dup)
		seen[id] = struct{}{}
		prev = id
	}
}

func TestGeneratedNumberFormats(t *testing.T) {
	assert.Regexp(t, `^TRD\d{22}$`, GenerateTradeNo())
	assert.Regexp(t, `^TXN\d{22}$`, GenerateTransactionNo())
	assert.Regexp(t, `^U\d+$`, GenerateUserID())
	assert.Regexp(t, `^NTF\d+$`, GenerateNotificationID())
	assert.Regexp(t, `^NT-[A-Z0-9]{6}$`, GenerateInvitationCode())
	assert.Regexp(t, `^[0-9a-f]{48}$`, GenerateAdminToken())
}

func TestInvitationCodesAreUnlikelyToCollide(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		seen[GenerateInvitationCode()] = struct{}{}
	}
	assert.Greater(t, len(seen), 95)
}
