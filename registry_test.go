package chronos_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/netresearch/chronos"
	"github.com/netresearch/chronos/core"
)

func TestNewKeyDefaultsGroup(t *testing.T) {
	k := chronos.NewKey("ping", "")
	assert.Equal(t, core.DefaultGroup, k.Group)
}

func TestRegisterJobAndHasJobClass(t *testing.T) {
	s := chronos.New(chronos.DefaultOptions(), testLogger())
	assert.False(t, s.HasJobClass("http-ping"))

	s.RegisterJob("http-ping", func(_ *core.JobDetail) (core.JobFunc, error) {
		return func(context.Context, *core.JobExecutionContext, core.JobDataMap) error { return nil }, nil
	})

	assert.True(t, s.HasJobClass("http-ping"))
}
