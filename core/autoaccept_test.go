package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/types"
)

func TestNumericUser(t *testing.T) {
	assert.Equal(t, "628123456789", numericUser("628123456789"))
	assert.Equal(t, "628123456789", numericUser("628123456789:12"))
	assert.Equal(t, "", numericUser(""))
}

func selfClient(jid types.JID, lid types.JID) *whatsmeow.Client {
	return &whatsmeow.Client{Store: &store.Device{ID: &jid, LID: lid}}
}

func TestIsSelfAdminInGroup(t *testing.T) {
	selfJID := types.NewJID("628111111111", types.DefaultUserServer)
	selfLID := types.JID{User: "99887766", Server: "lid"}
	client := selfClient(selfJID, selfLID)

	adminJID := types.NewJID("628222222222", types.DefaultUserServer)

	t.Run("admin lewat JID telepon", func(t *testing.T) {
		info := &types.GroupInfo{Participants: []types.GroupParticipant{
			{JID: selfJID, IsAdmin: true},
			{JID: adminJID},
		}}
		assert.True(t, isSelfAdminInGroup(client, info))
	})

	t.Run("admin lewat LID saja", func(t *testing.T) {
		info := &types.GroupInfo{Participants: []types.GroupParticipant{
			{JID: types.JID{User: "99887766", Server: "lid"}, IsAdmin: true},
		}}
		assert.True(t, isSelfAdminInGroup(client, info))
	})

	t.Run("admin dengan device suffix", func(t *testing.T) {
		info := &types.GroupInfo{Participants: []types.GroupParticipant{
			{JID: types.NewJID("628111111111:3", types.DefaultUserServer), IsSuperAdmin: true},
		}}
		assert.True(t, isSelfAdminInGroup(client, info))
	})

	t.Run("member biasa bukan admin", func(t *testing.T) {
		info := &types.GroupInfo{Participants: []types.GroupParticipant{
			{JID: selfJID},
			{JID: adminJID, IsAdmin: true},
		}}
		assert.False(t, isSelfAdminInGroup(client, info))
	})

	t.Run("belum login", func(t *testing.T) {
		noID := &whatsmeow.Client{Store: &store.Device{}}
		assert.False(t, isSelfAdminInGroup(noID, &types.GroupInfo{}))
	})
}

func TestResolveParticipantJID(t *testing.T) {
	phoneJID := types.NewJID("628333333333", types.DefaultUserServer)
	lid := types.JID{User: "11223344", Server: "lid"}

	info := &types.GroupInfo{Participants: []types.GroupParticipant{
		{JID: phoneJID, LID: lid},
	}}

	resolved, found := resolveParticipantJID(info, "628333333333")
	assert.True(t, found)
	assert.Equal(t, phoneJID, resolved)

	// Lookup lewat LID juga jalan
	resolved, found = resolveParticipantJID(info, "11223344")
	assert.True(t, found)
	assert.Equal(t, lid, resolved)

	_, found = resolveParticipantJID(info, "628999999999")
	assert.False(t, found)
}
