package errs_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fiapx/video-orchestrator/pkg/types/errs"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want errs.Class
	}{
		{"nil", nil, errs.None},
		{"video not found", errs.ErrVideoNotFound, errs.Permanent},
		{"wrapped not found", fmt.Errorf("VideoUseCase - StartProcessing: %w", errs.ErrVideoNotFound), errs.Permanent},
		{"record not found", fmt.Errorf("repo: %w", errs.ErrRecordNotFound), errs.Permanent},
		{"invalid payload", fmt.Errorf("adapter: %w", errs.ErrInvalidPayload), errs.Permanent},
		{"invalid transition", errs.ErrInvalidTransition, errs.Permanent},
		{"missing artifact", errs.ErrMissingArtifact, errs.Permanent},
		{"marked permanent", errs.MarkPermanent(errors.New("bad input")), errs.Permanent},
		{"text mentions não encontrado", errors.New("Usuário não encontrado"), errs.Permanent},
		{"english not found text", errors.New("queue item Not Found"), errs.Transient},
		{"gateway 404", fmt.Errorf("MessagingGateway - SendMessage - p.Publish: %w",
			errors.New("operation error SQS: SendMessage, https response error StatusCode: 404, api error NotFound: Not Found")), errs.Transient},
		{"panic", fmt.Errorf("Consumer - handle - %w: %v", errs.ErrHandlerPanic, "config key not found"), errs.Transient},
		{"panic mentioning não encontrado", fmt.Errorf("Consumer - handle - %w: %v", errs.ErrHandlerPanic, "Vídeo não encontrado."), errs.Transient},
		{"database down", errors.New("dial tcp 127.0.0.1:5432: connection refused"), errs.Transient},
		{"concurrent update", errs.ErrConcurrentUpdate, errs.Transient},
		{"context deadline", context.DeadlineExceeded, errs.Transient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, errs.Classify(tt.err))
		})
	}
}

func TestPermanentKeepsChain(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")
	err := fmt.Errorf("outer: %w", errs.MarkPermanent(base))

	assert.ErrorIs(t, err, base)
	assert.True(t, errs.IsPermanent(err))
	assert.Nil(t, errs.MarkPermanent(nil))
}

func TestVideoNotFoundText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Vídeo não encontrado.", errs.ErrVideoNotFound.Error())
}
