package lock

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fiapx/video-orchestrator/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
}

func (r *recordingLogger) Debug(interface{}, ...interface{}) {}
func (r *recordingLogger) Info(string, ...interface{})       {}
func (r *recordingLogger) Warn(string, ...interface{})       {}
func (r *recordingLogger) Fatal(interface{}, ...interface{}) {}

func (r *recordingLogger) Error(message interface{}, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, fmt.Sprint(append([]interface{}{message}, args...)...))
}

func (r *recordingLogger) With(...interface{}) logger.Interface { return r }

func TestRedisLockerLogsFailedRelease(t *testing.T) {
	// nothing listens on port 1
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	rec := &recordingLogger{}
	l := NewRedisLocker(client, time.Second, 10*time.Millisecond, rec)

	l.release(context.Background(), _keyPrefix+"v1", "token")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.errors, 1)
	assert.Contains(t, rec.errors[0], "video-orchestrator:lock:v1")
}

func TestRedisLockerLockFailsWithoutServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisLocker(client, time.Second, 10*time.Millisecond, logger.NewNop())

	unlock, err := l.Lock(context.Background(), "v1")
	assert.Error(t, err)
	assert.Nil(t, unlock)
}
