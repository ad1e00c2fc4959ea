package chronos

import "github.com/netresearch/chronos/core"

// JobFunc and JobFactory are re-exported at the package root so embedding
// programs never need to import core directly just to register a job
// class.
type (
	JobFunc    = core.JobFunc
	JobFactory = core.JobFactory
	JobDataMap = core.JobDataMap
	Key        = core.Key
)

// NewKey builds a Key, defaulting Group to core.DefaultGroup when empty.
func NewKey(name, group string) Key {
	return core.NewKey(name, group)
}

// RegisterJob associates jobClass with factory on the scheduler's registry.
// Must be called before Start for any job using that class.
func (s *Scheduler) RegisterJob(jobClass string, factory JobFactory) {
	s.registry.Register(jobClass, factory)
}

// HasJobClass reports whether jobClass has a registered factory.
func (s *Scheduler) HasJobClass(jobClass string) bool {
	return s.registry.Has(jobClass)
}
