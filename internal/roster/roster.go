// Package roster keeps teams and their riders.
package roster

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dusk-indust/stageresults/internal/ids"
	"github.com/dusk-indust/stageresults/internal/names"
	"github.com/dusk-indust/stageresults/internal/results"
)

// MinBirthYear is the earliest accepted year of birth.
const MinBirthYear = 1900

// Team is a named group of riders.
type Team struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	RiderIDs    []string `json:"riderIds" yaml:"riderIds"`
}

// Rider belongs to exactly one team.
type Rider struct {
	ID          string `json:"id" yaml:"id"`
	TeamID      string `json:"teamId" yaml:"teamId"`
	Name        string `json:"name" yaml:"name"`
	YearOfBirth int    `json:"yearOfBirth" yaml:"yearOfBirth"`
}

// Roster is a concurrency-safe registry of teams and riders.
type Roster struct {
	mu        sync.RWMutex
	ids       ids.Allocator
	teams     map[string]*Team
	teamOrder []string
	riders    map[string]*Rider
}

// New returns an empty Roster allocating identifiers from alloc.
func New(alloc ids.Allocator) *Roster {
	return &Roster{
		ids:    alloc,
		teams:  make(map[string]*Team),
		riders: make(map[string]*Rider),
	}
}

// CreateTeam adds a team with a unique name.
func (r *Roster) CreateTeam(name, description string) (string, error) {
	if err := names.Validate(name); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.teams {
		if t.Name == name {
			return "", fmt.Errorf("team %q: %w", name, results.ErrDuplicateName)
		}
	}
	id := r.ids.Next(ids.KindTeam)
	r.teams[id] = &Team{ID: id, Name: name, Description: description, RiderIDs: []string{}}
	r.teamOrder = append(r.teamOrder, id)
	return id, nil
}

// RemoveTeam deletes the team and its riders, returning the removed rider
// identifiers so the caller can drop their results.
func (r *Roster) RemoveTeam(id string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.teams[id]
	if !ok {
		return nil, fmt.Errorf("team %s: %w", id, results.ErrUnknownTeam)
	}
	for _, rid := range t.RiderIDs {
		delete(r.riders, rid)
	}
	delete(r.teams, id)
	r.teamOrder = remove(r.teamOrder, id)
	return t.RiderIDs, nil
}

// TeamIDs returns every team identifier in creation order.
func (r *Roster) TeamIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string{}, r.teamOrder...)
}

// Team returns a copy of the team.
func (r *Roster) Team(id string) (Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.teams[id]
	if !ok {
		return Team{}, fmt.Errorf("team %s: %w", id, results.ErrUnknownTeam)
	}
	out := *t
	out.RiderIDs = append([]string{}, t.RiderIDs...)
	return out, nil
}

// TeamRiders returns the team's rider identifiers in creation order.
func (r *Roster) TeamRiders(teamID string) ([]string, error) {
	t, err := r.Team(teamID)
	if err != nil {
		return nil, err
	}
	return t.RiderIDs, nil
}

// CreateRider adds a rider to a team.
func (r *Roster) CreateRider(teamID, name string, yearOfBirth int) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("empty rider name: %w", results.ErrInvalidName)
	}
	if yearOfBirth < MinBirthYear {
		return "", fmt.Errorf("year of birth %d before %d: %w", yearOfBirth, MinBirthYear, results.ErrInvalidBirthYear)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.teams[teamID]
	if !ok {
		return "", fmt.Errorf("team %s: %w", teamID, results.ErrUnknownTeam)
	}
	id := r.ids.Next(ids.KindRider)
	r.riders[id] = &Rider{ID: id, TeamID: teamID, Name: name, YearOfBirth: yearOfBirth}
	t.RiderIDs = append(t.RiderIDs, id)
	return id, nil
}

// RemoveRider deletes a rider from its team.
func (r *Roster) RemoveRider(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rd, ok := r.riders[id]
	if !ok {
		return fmt.Errorf("rider %s: %w", id, results.ErrUnknownRider)
	}
	t := r.teams[rd.TeamID]
	t.RiderIDs = remove(t.RiderIDs, id)
	delete(r.riders, id)
	return nil
}

// Rider returns a copy of the rider.
func (r *Roster) Rider(id string) (Rider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rd, ok := r.riders[id]
	if !ok {
		return Rider{}, fmt.Errorf("rider %s: %w", id, results.ErrUnknownRider)
	}
	return *rd, nil
}

// RequireRider returns ErrUnknownRider unless the rider exists.
func (r *Roster) RequireRider(id string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.riders[id]; !ok {
		return fmt.Errorf("rider %s: %w", id, results.ErrUnknownRider)
	}
	return nil
}

func remove(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
