package controller

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatus_RecordAttempt(t *testing.T) {
	s := NewStatus()

	s.RecordAttempt(nil)
	s.RecordAttempt(nil)
	s.RecordAttempt(errors.New("transfer failed"))

	snap := s.Snapshot()
	assert.Equal(t, uint64(3), snap.Total)
	assert.Equal(t, uint64(2), snap.Success)
	assert.Equal(t, uint64(1), snap.Failed)
	assert.Equal(t, snap.Total, snap.Success+snap.Failed)
}

func TestStatus_Heartbeat(t *testing.T) {
	s := NewStatus()
	assert.True(t, s.Snapshot().LastSync.IsZero())

	now := time.Now()
	s.RecordTick(now)
	assert.Equal(t, now, s.Snapshot().LastSync)
}

func TestStatus_ConcurrentReaders(t *testing.T) {
	s := NewStatus()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			s.RecordAttempt(nil)
			s.RecordTick(time.Now())
		}
	}()

	for i := 0; i < 1000; i++ {
		snap := s.Snapshot()
		assert.Equal(t, snap.Total, snap.Success+snap.Failed)
	}
	<-done

	snap := s.Snapshot()
	assert.Equal(t, uint64(1000), snap.Total)
}
