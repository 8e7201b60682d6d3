package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/vidpipe/internal/domain"
)

func isAnalyze(args []string) bool {
	return hasArg(args, "vidstabdetect")
}

func stabilizeRequest(env *testEnv) domain.StabilizeRequest {
	return domain.StabilizeRequest{
		Source:      "/videos/shaky.mp4",
		Destination: filepath.Join(env.root, "stable.mp4"),
	}
}

func TestAnalyzeAndStabilize_RunsStagesInOrder(t *testing.T) {
	env := newTestEnv(t, newFakeEngine(succeedAfter(3)))
	req := stabilizeRequest(env)

	events, err := drain(env.transcoder.AnalyzeAndStabilize(req).Subscribe(context.Background()))
	require.NoError(t, err)

	trf := env.transcoder.TransformFile()
	require.Len(t, events, 8)
	for i, p := range events {
		if i < 4 {
			assert.Equal(t, trf, p.Artifact, "event %d belongs to analyze", i)
		} else {
			assert.Equal(t, req.Destination, p.Artifact, "event %d belongs to stabilize", i)
		}
	}
	assert.True(t, events[3].Final())
	assert.True(t, events[7].Final())

	calls := env.engine.calls()
	require.Len(t, calls, 2)
	assert.True(t, isAnalyze(calls[0]))
	assert.True(t, hasArg(calls[1], "vidstabtransform=input="+trf+":"))
	assert.True(t, hasArg(calls[0], "result="+trf+"[out]"), "both stages share the transform file")
	assert.DirExists(t, filepath.Dir(trf))
}

func TestAnalyzeAndStabilize_FirstStageErrorStopsChain(t *testing.T) {
	env := newTestEnv(t, newFakeEngine(failWith(1)))

	_, err := drain(env.transcoder.AnalyzeAndStabilize(stabilizeRequest(env)).Subscribe(context.Background()))

	var engineErr *domain.EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, domain.JobKindAnalyze, engineErr.Kind, "stage errors pass through unchanged")
	assert.Equal(t, 1, engineErr.Code)
	assert.Len(t, env.engine.calls(), 1, "stabilize never starts")
}

func TestAnalyzeAndStabilize_DisposeDuringFirstStage(t *testing.T) {
	env := newTestEnv(t, newFakeEngine(runUntilCancelled))

	sub := env.transcoder.AnalyzeAndStabilize(stabilizeRequest(env)).Subscribe(context.Background())
	first := nextEvent(t, sub)
	require.Equal(t, env.transcoder.TransformFile(), first.Artifact)

	sub.Dispose()
	err := waitDone(t, sub)

	assert.ErrorIs(t, err, domain.ErrCancelled)
	var engineErr *domain.EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, domain.JobKindAnalyze, engineErr.Kind)
	assert.Len(t, env.engine.calls(), 1, "stabilize never starts")
	assert.Equal(t, 1, env.engine.cancelCount())
}

func TestAnalyzeAndStabilize_DisposeDuringSecondStage(t *testing.T) {
	env := newTestEnv(t, newFakeEngine(func(f *fakeEngine, args []string) int {
		if isAnalyze(args) {
			f.tick(1)
			return domain.ReturnCodeSuccess
		}
		return runUntilCancelled(f, args)
	}))
	req := stabilizeRequest(env)

	sub := env.transcoder.AnalyzeAndStabilize(req).Subscribe(context.Background())
	for {
		if p := nextEvent(t, sub); p.Artifact == req.Destination {
			break
		}
	}
	sub.Dispose()
	err := waitDone(t, sub)

	var engineErr *domain.EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, domain.JobKindStabilize, engineErr.Kind)
	assert.Len(t, env.engine.calls(), 2, "analyze is not run again")
	assert.Equal(t, 1, env.engine.cancelCount())
	assert.NoFileExists(t, req.Destination)
}

func TestChain_InvalidRequest(t *testing.T) {
	env := newTestEnv(t, newFakeEngine(succeedAfter(1)))

	err := env.transcoder.AnalyzeAndStabilize(domain.StabilizeRequest{Source: "/in.mp4"}).Subscribe(context.Background()).Wait()

	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Empty(t, env.engine.calls())
}

func TestChain_Generic(t *testing.T) {
	stage := func(name string, err error) *Stream {
		return newStream(func(_ context.Context, sub *Subscription) error {
			sub.emit(domain.Progress{Artifact: name})
			return err
		})
	}

	events, err := drain(Chain(stage("a", nil), stage("b", nil), stage("c", nil)).Subscribe(context.Background()))
	require.NoError(t, err)
	var names []string
	for _, p := range events {
		names = append(names, p.Artifact)
	}
	assert.Equal(t, "a,b,c", strings.Join(names, ","))

	events, err = drain(Chain(stage("a", nil), stage("b", domain.ErrNotFound), stage("c", nil)).Subscribe(context.Background()))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, events, 2)
}
