package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jask/projdesk/internal/broadcast"
	"github.com/jask/projdesk/internal/database/repository"
)

// MemberService owns team member reads and writes.
type MemberService struct {
	Members *repository.MemberRepo
	Events  broadcast.Publisher
}

func (s *MemberService) List(ctx context.Context, projectID string) ([]repository.Member, error) {
	out, err := s.Members.List(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return out, nil
}

func (s *MemberService) Get(ctx context.Context, id string) (repository.Member, error) {
	m, err := s.Members.Get(ctx, id)
	if err != nil {
		return repository.Member{}, fmt.Errorf("get member: %w", err)
	}
	if m == nil {
		return repository.Member{}, notFound("member", id)
	}
	return *m, nil
}

// Save inserts m when it has no ID and updates it otherwise. Usernames are
// stored lower case.
func (s *MemberService) Save(ctx context.Context, m repository.Member) (repository.Member, error) {
	m.Username = strings.ToLower(strings.TrimSpace(m.Username))
	m.FirstName = strings.TrimSpace(m.FirstName)
	if m.Username == "" {
		return repository.Member{}, invalid("username is required")
	}
	if m.FirstName == "" {
		return repository.Member{}, invalid("first name is required")
	}
	if blank(m.ProjectID) {
		return repository.Member{}, invalid("member needs a project")
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := s.Members.Upsert(ctx, m); err != nil {
		return repository.Member{}, fmt.Errorf("save member: %w", err)
	}
	saved, err := s.Get(ctx, m.ID)
	if err != nil {
		return repository.Member{}, err
	}
	publish(s.Events, broadcast.KindMember, m.ID, broadcast.OpSaved)
	return saved, nil
}

func (s *MemberService) Delete(ctx context.Context, id string) error {
	ok, err := s.Members.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if !ok {
		return notFound("member", id)
	}
	publish(s.Events, broadcast.KindMember, id, broadcast.OpDeleted)
	return nil
}
