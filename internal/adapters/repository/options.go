package repository

import (
	"github.com/okian/cohort/internal/domain/model"
	"github.com/okian/cohort/pkg/logger"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMembers preloads members. Members that fail validation are still
// stored and are skipped when the pool is read.
func WithMembers(members ...Member) Option {
	return func(s *MemoryStore) {
		for _, m := range members {
			s.put(m)
		}
	}
}

// WithSaveHook installs a function called before each group is committed.
// A non-nil error aborts that save and nothing of the group is stored.
func WithSaveHook(hook func(model.GroupRecord) error) Option {
	return func(s *MemoryStore) {
		s.saveHook = hook
	}
}

// WithLogger sets the logger used for skipped candidates.
func WithLogger(l logger.Logger) Option {
	return func(s *MemoryStore) {
		if l != nil {
			s.log = l
		}
	}
}
