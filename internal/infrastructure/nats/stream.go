package nats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const _streamMaxAge = 7 * 24 * time.Hour

var streamNameReplacer = strings.NewReplacer(".", "_", "*", "ANY", ">", "ALL", "-", "_")

// StreamName maps a subject to the work-queue stream that stores it.
func StreamName(subject string) string {
	return strings.ToUpper(streamNameReplacer.Replace(subject))
}

func ensureStream(ctx context.Context, js jetstream.JetStream, subject string) (jetstream.Stream, error) {
	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName(subject),
		Subjects:  []string{subject},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.WorkQueuePolicy,
		MaxAge:    _streamMaxAge,
		Replicas:  1,
	})
	if err != nil {
		return nil, fmt.Errorf("js.CreateOrUpdateStream %s: %w", subject, err)
	}

	return stream, nil
}
