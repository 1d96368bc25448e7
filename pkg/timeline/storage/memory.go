package storage

import (
	"context"
	"sync"

	"formation-hq/timeline/pkg/timeline"
)

// MemoryStore implements timeline.Store with in-memory maps. It backs the
// "memory" store backend and tests; nothing survives a restart.
type MemoryStore struct {
	mu          sync.RWMutex
	nextID      timeline.PolicyID
	policies    map[timeline.PolicyID]timeline.RetentionPolicy
	attachments map[timeline.PolicyID]map[timeline.VolumeID]struct{}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:      1,
		policies:    make(map[timeline.PolicyID]timeline.RetentionPolicy),
		attachments: make(map[timeline.PolicyID]map[timeline.VolumeID]struct{}),
	}
}

// Create stores policy under a fresh id. Any id on the input is ignored.
func (s *MemoryStore) Create(ctx context.Context, policy timeline.RetentionPolicy) (timeline.RetentionPolicy, error) {
	if err := policy.Validate(); err != nil {
		return timeline.RetentionPolicy{}, timeline.NewStoreError("memory", "create", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	policy.ID = s.nextID
	s.nextID++
	s.policies[policy.ID] = policy
	return policy, nil
}

// Edit overwrites an existing policy.
func (s *MemoryStore) Edit(ctx context.Context, policy timeline.RetentionPolicy) error {
	if err := policy.Validate(); err != nil {
		return timeline.NewStoreError("memory", "edit", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policies[policy.ID]; !ok {
		return timeline.NewStoreError("memory", "edit", timeline.ErrNotFound)
	}
	s.policies[policy.ID] = policy
	return nil
}

// Delete removes a policy that is attached to no volume.
func (s *MemoryStore) Delete(ctx context.Context, id timeline.PolicyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policies[id]; !ok {
		return timeline.NewStoreError("memory", "delete", timeline.ErrNotFound)
	}
	if len(s.attachments[id]) > 0 {
		return timeline.NewStoreError("memory", "delete", timeline.ErrAttached)
	}
	delete(s.policies, id)
	delete(s.attachments, id)
	return nil
}

// Attach associates a policy with a volume. Attaching twice is a no-op.
func (s *MemoryStore) Attach(ctx context.Context, id timeline.PolicyID, volume timeline.VolumeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policies[id]; !ok {
		return timeline.NewStoreError("memory", "attach", timeline.ErrNotFound)
	}
	vols, ok := s.attachments[id]
	if !ok {
		vols = make(map[timeline.VolumeID]struct{})
		s.attachments[id] = vols
	}
	vols[volume] = struct{}{}
	return nil
}

// Detach dissociates a policy from a volume. Detaching a policy that is
// not attached to the volume is a no-op.
func (s *MemoryStore) Detach(ctx context.Context, id timeline.PolicyID, volume timeline.VolumeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policies[id]; !ok {
		return timeline.NewStoreError("memory", "detach", timeline.ErrNotFound)
	}
	delete(s.attachments[id], volume)
	return nil
}

// ListAttached returns the policies attached to volume, ordered by id.
func (s *MemoryStore) ListAttached(ctx context.Context, volume timeline.VolumeID) ([]timeline.RetentionPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []timeline.RetentionPolicy{}
	for id, vols := range s.attachments {
		if _, ok := vols[volume]; ok {
			result = append(result, s.policies[id])
		}
	}
	sortByID(result)
	return result, nil
}

// List returns every stored policy, ordered by id.
func (s *MemoryStore) List(ctx context.Context) ([]timeline.RetentionPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]timeline.RetentionPolicy, 0, len(s.policies))
	for _, p := range s.policies {
		result = append(result, p)
	}
	sortByID(result)
	return result, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
