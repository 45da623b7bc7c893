package systems

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobSystemValidates(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)
	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobsRunCallbacks(t *testing.T) {
	js, err := NewJobSystem(4, 2)
	require.NoError(t, err)

	var mu sync.Mutex
	sum := 0
	failures := 0
	boom := errors.New("boom")

	for i := 1; i <= 10; i++ {
		n := i
		require.NoError(t, js.Submit(JobTask{
			Name: "sum",
			OnStart: func() (interface{}, error) {
				if n%5 == 0 {
					return nil, boom
				}
				return n, nil
			},
			OnComplete: func(result interface{}) {
				mu.Lock()
				sum += result.(int)
				mu.Unlock()
			},
			OnFailure: func(err error) {
				assert.ErrorIs(t, err, boom)
				mu.Lock()
				failures++
				mu.Unlock()
			},
		}))
	}
	js.Wait()

	assert.Equal(t, 55-5-10, sum)
	assert.Equal(t, 2, failures)
	require.NoError(t, js.Shutdown())
	assert.NoError(t, js.Shutdown())
}

func TestSubmitAfterShutdown(t *testing.T) {
	js, err := NewJobSystem(1, 0)
	require.NoError(t, err)
	require.NoError(t, js.Shutdown())

	err = js.Submit(JobTask{OnStart: func() (interface{}, error) { return nil, nil }})
	assert.ErrorIs(t, err, ErrJobSystemClosed)
	assert.Error(t, js.Submit(JobTask{Name: "empty"}))
}
