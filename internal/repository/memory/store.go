// Package memory keeps the relationship store in process memory. It enforces
// the same uniqueness rules as the SQL schema and is used when no database is
// configured and in tests.
package memory

import (
	"sync"
	"time"

	"taxpro/internal/common"
	"taxpro/internal/domain/application"
	"taxpro/internal/domain/bench"
	"taxpro/internal/domain/connection"
	"taxpro/internal/domain/job"
	"taxpro/internal/domain/profile"
)

type Store struct {
	mu           sync.Mutex
	profiles     map[common.UUID]profile.Profile
	firms        map[common.UUID]profile.Firm
	firmAdmins   map[common.UUID]map[common.UUID]struct{}
	connections  map[common.UUID]connection.Request
	jobs         map[common.UUID]job.Job
	applications map[common.UUID]application.Application
	entries      map[common.UUID]bench.Entry
	invitations  map[common.UUID]bench.Invitation
	clock        func() time.Time
}

func NewStore() *Store {
	return &Store{
		profiles:     make(map[common.UUID]profile.Profile),
		firms:        make(map[common.UUID]profile.Firm),
		firmAdmins:   make(map[common.UUID]map[common.UUID]struct{}),
		connections:  make(map[common.UUID]connection.Request),
		jobs:         make(map[common.UUID]job.Job),
		applications: make(map[common.UUID]application.Application),
		entries:      make(map[common.UUID]bench.Entry),
		invitations:  make(map[common.UUID]bench.Invitation),
		clock:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{store: s}
}

func (s *Store) Firms() *FirmRepository {
	return &FirmRepository{store: s}
}

func (s *Store) Connections() *ConnectionRepository {
	return &ConnectionRepository{store: s}
}

func (s *Store) Jobs() *JobRepository {
	return &JobRepository{store: s}
}

func (s *Store) Applications() *ApplicationRepository {
	return &ApplicationRepository{store: s}
}

func (s *Store) Bench() *BenchRepository {
	return &BenchRepository{store: s}
}

func (s *Store) now() time.Time {
	return s.clock()
}
