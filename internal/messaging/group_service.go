package messaging

import (
	"context"
	"errors"
	"log"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

// GroupService owns group lifecycle, membership, and the group half of the
// ingest and fan-out engine.
type GroupService struct {
	userRepo         repositories.UserRepository
	groupRepo        repositories.GroupRepository
	groupMessageRepo repositories.GroupMessageRepository
	broadcaster      Broadcaster
}

// NewGroupService constructs a GroupService.
func NewGroupService(userRepo repositories.UserRepository, groupRepo repositories.GroupRepository, groupMessageRepo repositories.GroupMessageRepository, broadcaster Broadcaster) *GroupService {
	if broadcaster == nil {
		broadcaster = NopBroadcaster{}
	}
	return &GroupService{
		userRepo:         userRepo,
		groupRepo:        groupRepo,
		groupMessageRepo: groupMessageRepo,
		broadcaster:      broadcaster,
	}
}

// CreateGroup creates a group with its creator as admin member, atomically.
func (s *GroupService) CreateGroup(ctx context.Context, creatorID int, name string, description *string) (models.Group, error) {
	if err := validateGroupName(name); err != nil {
		return models.Group{}, err
	}

	exists, err := s.userRepo.Exists(ctx, creatorID)
	if err != nil {
		return models.Group{}, err
	}
	if !exists {
		return models.Group{}, ErrUserNotFound
	}

	return s.groupRepo.CreateGroup(ctx, name, description, creatorID)
}

// UpdateGroup applies name/description changes.
func (s *GroupService) UpdateGroup(ctx context.Context, groupID int, name, description *string) (models.Group, error) {
	if name != nil {
		if err := validateGroupName(*name); err != nil {
			return models.Group{}, err
		}
	}
	group, err := s.groupRepo.UpdateGroup(ctx, groupID, name, description)
	if errors.Is(err, repositories.ErrGroupNotFound) {
		return models.Group{}, ErrGroupNotFound
	}
	return group, err
}

// GetGroup returns the group with its member list.
func (s *GroupService) GetGroup(ctx context.Context, groupID int) (models.GroupDetail, error) {
	group, err := s.groupRepo.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return models.GroupDetail{}, ErrGroupNotFound
		}
		return models.GroupDetail{}, err
	}
	members, err := s.groupRepo.ListMembers(ctx, groupID)
	if err != nil {
		return models.GroupDetail{}, err
	}
	return models.GroupDetail{Group: group, Members: members}, nil
}

// ListGroups returns the groups the user belongs to.
func (s *GroupService) ListGroups(ctx context.Context, userID int) ([]models.Group, error) {
	return s.groupRepo.ListGroupsForUser(ctx, userID)
}

// DeleteGroup removes the group, its members, its messages, and their read
// receipts in a single transaction.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID int) error {
	err := s.groupRepo.DeleteGroupCascade(ctx, groupID)
	if errors.Is(err, repositories.ErrGroupNotFound) {
		return ErrGroupNotFound
	}
	return err
}

// ListMembers returns the group's memberships joined with their users.
func (s *GroupService) ListMembers(ctx context.Context, groupID int) ([]models.GroupMemberDetail, error) {
	if _, err := s.groupRepo.GetGroup(ctx, groupID); err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return s.groupRepo.ListMembers(ctx, groupID)
}

// AddMember adds a user to the group as a regular member.
func (s *GroupService) AddMember(ctx context.Context, groupID, userID int) (models.GroupMember, error) {
	if _, err := s.groupRepo.GetGroup(ctx, groupID); err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return models.GroupMember{}, ErrGroupNotFound
		}
		return models.GroupMember{}, err
	}
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return models.GroupMember{}, err
	}
	if !exists {
		return models.GroupMember{}, ErrUserNotFound
	}
	if _, err := s.groupRepo.GetMember(ctx, groupID, userID); err == nil {
		return models.GroupMember{}, ErrDuplicateMember
	} else if !errors.Is(err, repositories.ErrMemberNotFound) {
		return models.GroupMember{}, err
	}

	return s.groupRepo.AddMember(ctx, groupID, userID)
}

// RemoveMember removes a member. The creator's membership is not removable
// through this path, and the last admin can never be removed.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, userID int) error {
	member, err := s.groupRepo.GetMember(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return ErrMemberNotFound
		}
		return err
	}

	group, err := s.groupRepo.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return ErrGroupNotFound
		}
		return err
	}
	if group.CreatedBy == userID {
		return ErrCreatorRemoval
	}
	if member.IsAdmin {
		admins, err := s.groupRepo.CountAdmins(ctx, groupID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	return s.groupRepo.RemoveMember(ctx, groupID, userID)
}

// LeaveGroup removes the caller's own membership, unless they are the last
// admin.
func (s *GroupService) LeaveGroup(ctx context.Context, groupID, userID int) error {
	member, err := s.groupRepo.GetMember(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return ErrMemberNotFound
		}
		return err
	}
	if member.IsAdmin {
		admins, err := s.groupRepo.CountAdmins(ctx, groupID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}
	return s.groupRepo.RemoveMember(ctx, groupID, userID)
}

// PromoteAdmin grants the admin flag; only an existing group admin may do so.
func (s *GroupService) PromoteAdmin(ctx context.Context, groupID, targetID, callerID int) (models.GroupMember, error) {
	if err := s.requireGroupAdmin(ctx, groupID, callerID); err != nil {
		return models.GroupMember{}, err
	}
	member, err := s.groupRepo.SetMemberAdmin(ctx, groupID, targetID, true)
	if errors.Is(err, repositories.ErrMemberNotFound) {
		return models.GroupMember{}, ErrMemberNotFound
	}
	return member, err
}

// DemoteAdmin clears the admin flag. Demoting the last admin is rejected so a
// group always retains at least one.
func (s *GroupService) DemoteAdmin(ctx context.Context, groupID, targetID, callerID int) (models.GroupMember, error) {
	if err := s.requireGroupAdmin(ctx, groupID, callerID); err != nil {
		return models.GroupMember{}, err
	}
	target, err := s.groupRepo.GetMember(ctx, groupID, targetID)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return models.GroupMember{}, ErrMemberNotFound
		}
		return models.GroupMember{}, err
	}
	if !target.IsAdmin {
		return models.GroupMember{}, ErrMemberNotFound
	}

	admins, err := s.groupRepo.CountAdmins(ctx, groupID)
	if err != nil {
		return models.GroupMember{}, err
	}
	if admins <= 1 {
		return models.GroupMember{}, ErrLastAdmin
	}

	member, err := s.groupRepo.SetMemberAdmin(ctx, groupID, targetID, false)
	if errors.Is(err, repositories.ErrMemberNotFound) {
		return models.GroupMember{}, ErrMemberNotFound
	}
	return member, err
}

// SendGroupMessage validates, persists, and fans out one group message. The
// sender's membership is re-checked against the store on every send; a
// membership revoked after the connection joined the channel still blocks the
// send. The broadcast excludes the sender's own connection.
func (s *GroupService) SendGroupMessage(ctx context.Context, senderID, groupID int, content, excludeConnID string) (models.GroupMessage, error) {
	if err := validateContent(content); err != nil {
		return models.GroupMessage{}, err
	}

	if _, err := s.groupRepo.GetGroup(ctx, groupID); err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return models.GroupMessage{}, ErrGroupNotFound
		}
		return models.GroupMessage{}, err
	}
	member, err := s.groupRepo.IsMember(ctx, groupID, senderID)
	if err != nil {
		return models.GroupMessage{}, err
	}
	if !member {
		return models.GroupMessage{}, ErrNotAMember
	}

	msg, err := s.groupMessageRepo.CreateGroupMessage(ctx, groupID, senderID, content)
	if err != nil {
		return models.GroupMessage{}, err
	}

	s.broadcaster.PublishToGroup(groupID, models.GroupMessageEvent{
		Event:   models.EventGroupMessageReceived,
		Message: &msg,
	}, excludeConnID)
	log.Printf("group message sent id=%d group=%d sender=%d", msg.ID, groupID, senderID)
	return msg, nil
}

// GetGroupMessages returns the group's messages for a member, each annotated
// with the caller's read state.
func (s *GroupService) GetGroupMessages(ctx context.Context, groupID, userID, limit, offset int) ([]models.GroupMessageView, error) {
	member, err := s.groupRepo.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotAMember
	}
	limit, offset = normalizePage(limit, offset)
	return s.groupMessageRepo.ListGroupMessages(ctx, groupID, userID, limit, offset)
}

// EditGroupMessage replaces the content of the sender's own message.
func (s *GroupService) EditGroupMessage(ctx context.Context, messageID, userID int, content string) (models.GroupMessage, error) {
	if err := validateContent(content); err != nil {
		return models.GroupMessage{}, err
	}
	msg, err := s.groupMessageRepo.GetGroupMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return models.GroupMessage{}, ErrMessageNotFound
		}
		return models.GroupMessage{}, err
	}
	if msg.SenderID != userID {
		return models.GroupMessage{}, ErrNotSender
	}
	return s.groupMessageRepo.UpdateGroupMessageContent(ctx, messageID, content)
}

// DeleteGroupMessage removes a message; allowed for its sender or a group
// admin.
func (s *GroupService) DeleteGroupMessage(ctx context.Context, messageID, userID int) error {
	msg, err := s.groupMessageRepo.GetGroupMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return err
	}

	if msg.SenderID != userID {
		member, err := s.groupRepo.GetMember(ctx, msg.GroupID, userID)
		if err != nil && !errors.Is(err, repositories.ErrMemberNotFound) {
			return err
		}
		if err != nil || !member.IsAdmin {
			return ErrNotGroupAdmin
		}
	}

	return s.groupMessageRepo.DeleteGroupMessage(ctx, messageID)
}

// MarkGroupMessageRead records a read receipt for a current group member.
// Marking twice is an idempotent success.
func (s *GroupService) MarkGroupMessageRead(ctx context.Context, messageID, userID int) error {
	msg, err := s.groupMessageRepo.GetGroupMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	member, err := s.groupRepo.IsMember(ctx, msg.GroupID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotAMember
	}

	_, err = s.groupMessageRepo.InsertReadReceipt(ctx, messageID, userID)
	return err
}

// IsMember reports current persisted membership; the realtime layer calls
// this on every channel join rather than caching it.
func (s *GroupService) IsMember(ctx context.Context, groupID, userID int) (bool, error) {
	return s.groupRepo.IsMember(ctx, groupID, userID)
}

func (s *GroupService) requireGroupAdmin(ctx context.Context, groupID, callerID int) error {
	caller, err := s.groupRepo.GetMember(ctx, groupID, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return ErrNotGroupAdmin
		}
		return err
	}
	if !caller.IsAdmin {
		return ErrNotGroupAdmin
	}
	return nil
}
