package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDigest struct {
	text       string
	err        error
	published  int
	publishErr error
}

func (f *fakeDigest) Digest(context.Context) (string, error) { return f.text, f.err }

func (f *fakeDigest) PublishAll(context.Context) error {
	f.published++
	return f.publishErr
}

type fakeSender struct {
	messages []string
}

func (f *fakeSender) SendToGroup(_ context.Context, message string) error {
	f.messages = append(f.messages, message)
	return nil
}

func TestRunOnceSendsAndPublishes(t *testing.T) {
	digest := &fakeDigest{text: "Lista de compras Centro"}
	sender := &fakeSender{}

	NewScheduler("0 7 * * *", nil, digest, sender, nil).RunOnce(context.Background())

	assert.Equal(t, []string{"Lista de compras Centro"}, sender.messages)
	assert.Equal(t, 1, digest.published)
}

func TestRunOnceSendsPartialDigest(t *testing.T) {
	digest := &fakeDigest{text: "Centro", err: errors.New("store s9: storage unavailable")}
	sender := &fakeSender{}

	NewScheduler("0 7 * * *", nil, digest, sender, nil).RunOnce(context.Background())

	assert.Equal(t, []string{"Centro"}, sender.messages)
}

func TestRunOnceWithoutSender(t *testing.T) {
	digest := &fakeDigest{text: "Centro"}

	assert.NotPanics(t, func() {
		NewScheduler("0 7 * * *", nil, digest, nil, nil).RunOnce(context.Background())
	})
	assert.Equal(t, 1, digest.published)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler("every morning", nil, &fakeDigest{}, nil, nil)
	require.Error(t, s.Start())

	s = NewScheduler("0 7 * * *", nil, &fakeDigest{}, nil, nil)
	require.NoError(t, s.Start())
	s.Stop()
}
