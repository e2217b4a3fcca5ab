package core

import (
	"context"
	"sort"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types"

	"github.com/Qilleer/debughampirdone/utils"
)

// GroupSummary adalah ringkasan satu grup untuk ditampilkan di UI
type GroupSummary struct {
	JID              types.JID
	Name             string
	ParticipantCount int
	IsSelfAdmin      bool
}

// FetchGroups mengambil semua grup slot ini, diurutkan natural berdasarkan nama
func (s *Supervisor) FetchGroups(ownerID int64, slotID string) ([]GroupSummary, error) {
	client, err := s.GetConnectedClient(ownerID, slotID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	groups, err := client.GetJoinedGroups(ctx)
	if err != nil {
		return nil, wrapRPCError(ctx, err, "failed to get joined groups")
	}

	summaries := make([]GroupSummary, 0, len(groups))
	for _, group := range groups {
		summaries = append(summaries, GroupSummary{
			JID:              group.JID,
			Name:             group.Name,
			ParticipantCount: len(group.Participants),
			IsSelfAdmin:      isSelfAdminInGroup(client, group),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return utils.NaturalLess(summaries[i].Name, summaries[j].Name)
	})
	return summaries, nil
}

// GetGroupAdmins mengembalikan participant dengan role admin/superadmin
func (s *Supervisor) GetGroupAdmins(ownerID int64, slotID string, groupJID types.JID) ([]types.GroupParticipant, error) {
	info, err := s.getGroupInfo(ownerID, slotID, groupJID)
	if err != nil {
		return nil, err
	}

	var admins []types.GroupParticipant
	for _, participant := range info.Participants {
		if participant.IsAdmin || participant.IsSuperAdmin {
			admins = append(admins, participant)
		}
	}
	return admins, nil
}

// IsParticipantInGroup mengecek apakah sebuah nomor sudah jadi member grup.
// Toleran terhadap dua skema id: match dicoba di JID dan LID participant.
func (s *Supervisor) IsParticipantInGroup(ownerID int64, slotID string, groupJID types.JID, phoneNumber string) (bool, error) {
	info, err := s.getGroupInfo(ownerID, slotID, groupJID)
	if err != nil {
		return false, err
	}

	target := numericUser(phoneNumber)
	for _, participant := range info.Participants {
		if numericUser(participant.JID.User) == target || numericUser(participant.LID.User) == target {
			return true, nil
		}
	}
	return false, nil
}

// AddParticipant menambahkan nomor ke grup. Butuh bot admin, atau setting
// grup mengizinkan semua member menambahkan (member add mode). Setting itu
// dicek persis ke mode "all_member", nilai lain apapun dianggap tertutup.
func (s *Supervisor) AddParticipant(ownerID int64, slotID string, groupJID types.JID, phoneNumber string) error {
	client, err := s.GetConnectedClient(ownerID, slotID)
	if err != nil {
		return err
	}

	info, err := s.getGroupInfo(ownerID, slotID, groupJID)
	if err != nil {
		return err
	}
	if !isSelfAdminInGroup(client, info) && info.MemberAddMode != types.GroupMemberAddModeAllMember {
		return ErrNotAdmin
	}

	target := types.NewJID(numericUser(phoneNumber), types.DefaultUserServer)
	return s.mutateParticipants(client, groupJID, []types.JID{target}, whatsmeow.ParticipantChangeAdd)
}

// PromoteParticipant menjadikan nomor admin grup. Identitas target di-resolve
// dulu dari metadata grup supaya mutasi tidak pakai id yang basi.
func (s *Supervisor) PromoteParticipant(ownerID int64, slotID string, groupJID types.JID, phoneNumber string) error {
	return s.changeParticipantRole(ownerID, slotID, groupJID, phoneNumber, whatsmeow.ParticipantChangePromote)
}

// DemoteParticipant mencabut admin dari nomor
func (s *Supervisor) DemoteParticipant(ownerID int64, slotID string, groupJID types.JID, phoneNumber string) error {
	return s.changeParticipantRole(ownerID, slotID, groupJID, phoneNumber, whatsmeow.ParticipantChangeDemote)
}

func (s *Supervisor) changeParticipantRole(ownerID int64, slotID string, groupJID types.JID, phoneNumber string, change whatsmeow.ParticipantChange) error {
	client, err := s.GetConnectedClient(ownerID, slotID)
	if err != nil {
		return err
	}

	info, err := s.getGroupInfo(ownerID, slotID, groupJID)
	if err != nil {
		return err
	}
	if !isSelfAdminInGroup(client, info) {
		return ErrNotAdmin
	}

	target, found := resolveParticipantJID(info, phoneNumber)
	if !found {
		return &ParticipantError{JID: phoneNumber, Code: ParticipantStatusNotFound}
	}

	return s.mutateParticipants(client, groupJID, []types.JID{target}, change)
}

// RenameGroup mengganti subject grup, butuh bot admin
func (s *Supervisor) RenameGroup(ownerID int64, slotID string, groupJID types.JID, newName string) error {
	client, err := s.GetConnectedClient(ownerID, slotID)
	if err != nil {
		return err
	}

	info, err := s.getGroupInfo(ownerID, slotID, groupJID)
	if err != nil {
		return err
	}
	if !isSelfAdminInGroup(client, info) {
		return ErrNotAdmin
	}

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	if err := client.SetGroupName(ctx, groupJID, newName); err != nil {
		return wrapRPCError(ctx, err, "failed to rename group")
	}
	return nil
}

// getGroupInfo fetch metadata grup dengan timeout standar
func (s *Supervisor) getGroupInfo(ownerID int64, slotID string, groupJID types.JID) (*types.GroupInfo, error) {
	client, err := s.GetConnectedClient(ownerID, slotID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	info, err := client.GetGroupInfo(ctx, groupJID)
	if err != nil {
		return nil, wrapRPCError(ctx, err, "failed to get group info")
	}
	return info, nil
}

// mutateParticipants menjalankan mutasi participant dan menerjemahkan kode
// status per-participant dari response jadi error bertipe
func (s *Supervisor) mutateParticipants(client *whatsmeow.Client, groupJID types.JID, targets []types.JID, change whatsmeow.ParticipantChange) error {
	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	result, err := client.UpdateGroupParticipants(ctx, groupJID, targets, change)
	if err != nil {
		return wrapRPCError(ctx, err, "failed to update participants")
	}

	for _, participant := range result {
		if participant.Error != 0 {
			return &ParticipantError{
				JID:  participant.JID.User,
				Code: ParticipantStatusCode(participant.Error),
			}
		}
	}
	return nil
}

// resolveParticipantJID mencari id remote persis milik sebuah nomor dari
// metadata grup, cek kedua skema id
func resolveParticipantJID(info *types.GroupInfo, phoneNumber string) (types.JID, bool) {
	target := numericUser(phoneNumber)
	for _, participant := range info.Participants {
		if numericUser(participant.JID.User) == target {
			return participant.JID, true
		}
		if numericUser(participant.LID.User) == target {
			return participant.LID, true
		}
	}
	return types.JID{}, false
}
