package cronmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJobs(t *testing.T) {
	cm := NewCronManager(JobRegistry{
		"sessions_sweep": {Func: func() {}, Schedule: "* * * * *"},
		"hourly":         {Func: func() {}, Schedule: "@hourly"},
	})
	require.NoError(t, cm.LoadJobs())
	assert.Len(t, cm.jobs, 2)
	assert.Len(t, cm.dispatcher.Entries(), 2)

	require.NoError(t, cm.LoadJobs())
	assert.Len(t, cm.dispatcher.Entries(), 2)

	cm.RemoveJob("hourly")
	assert.Len(t, cm.jobs, 1)
	assert.Len(t, cm.dispatcher.Entries(), 1)
}

func TestLoadJobsInvalid(t *testing.T) {
	cm := NewCronManager(JobRegistry{
		"broken": {Func: func() {}, Schedule: "every minute"},
		"nil":    {Schedule: "* * * * *"},
		"ok":     {Func: func() {}, Schedule: "*/5 * * * *"},
	})
	assert.Error(t, cm.LoadJobs())
	assert.Len(t, cm.jobs, 1)
	assert.Contains(t, cm.jobs, "ok")
}

func TestStartStop(t *testing.T) {
	cm := NewCronManager(JobRegistry{})
	require.NoError(t, cm.LoadJobs())
	cm.Start()
	cm.Stop()
}
