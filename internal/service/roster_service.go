package service

import (
	"context"

	"cleoaura/careteam-app/internal/domain"
	"cleoaura/careteam-app/internal/repository"
)

// rosterQueryLimit caps the reverse grant lookup. A professional with more
// clients than this should page, which the product does not need yet.
const rosterQueryLimit = 200

// Roster is the professional-side view of everyone who has granted them
// access. This is the only discovery mechanism: nothing pushes when a
// grant changes, the professional re-polls.
type Roster struct {
	Clients []domain.ClientGrant `json:"clients"`
	Summary domain.RosterSummary `json:"summary"`
}

// --- Service Interface ---
type RosterService interface {
	ListClients(ctx context.Context, professionalUID string) (*Roster, error)
}

// --- Service Implementation ---

type rosterService struct {
	grantRepo repository.GrantRepository
}

// NewRosterService creates a new instance of rosterService.
func NewRosterService(grantRepo repository.GrantRepository) RosterService {
	return &rosterService{grantRepo: grantRepo}
}

// ListClients aggregates all grants referencing the professional into
// active/inactive client entries plus per-module coverage counts.
func (s *rosterService) ListClients(ctx context.Context, professionalUID string) (*Roster, error) {
	grants, err := s.grantRepo.ListByMember(ctx, professionalUID, rosterQueryLimit)
	if err != nil {
		return nil, err
	}

	clients := make([]domain.ClientGrant, 0, len(grants))
	for _, grant := range grants {
		clients = append(clients, domain.ClientGrant{
			TraineeID: grant.TraineeID,
			Role:      grant.Role,
			Active:    grant.Active,
			Modules:   grant.Modules.Normalize(),
		})
	}

	return &Roster{
		Clients: clients,
		Summary: domain.SummarizeRoster(clients),
	}, nil
}
