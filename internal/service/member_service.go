package service

import (
	"context"
	"fmt"

	"github.com/cwrk-planet/liveroom/internal/domain"
)

type MemberStore interface {
	Join(ctx context.Context, roomID, userID string) (*domain.Participant, error)
	Leave(ctx context.Context, roomID, userID string) error
	ListByRoom(ctx context.Context, roomID string) ([]domain.Participant, error)
}

// MemberService manages persisted room membership. Live presence is the
// coordinator's business; this is the durable record behind the REST API.
type MemberService struct {
	roomRepo        RoomStore
	participantRepo MemberStore
}

func NewMemberService(roomRepo RoomStore, participantRepo MemberStore) *MemberService {
	return &MemberService{roomRepo: roomRepo, participantRepo: participantRepo}
}

func (s *MemberService) JoinRoom(ctx context.Context, roomID, userID string) (*domain.Participant, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user is required", domain.ErrInvalidRoom)
	}
	if _, err := s.roomRepo.Get(ctx, roomID); err != nil {
		return nil, err
	}
	return s.participantRepo.Join(ctx, roomID, userID)
}

func (s *MemberService) LeaveRoom(ctx context.Context, roomID, userID string) error {
	return s.participantRepo.Leave(ctx, roomID, userID)
}

func (s *MemberService) ListParticipants(ctx context.Context, roomID string) ([]domain.Participant, error) {
	return s.participantRepo.ListByRoom(ctx, roomID)
}
