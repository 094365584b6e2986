package scene

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-triangle/engine/model"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRenderer records the calls a scene makes.
type fakeRenderer struct {
	calls     []string
	pipelines map[string]pipeline.Pipeline
	drawErr   error
	uploadErr error
}

var _ renderer.Renderer = &fakeRenderer{}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{pipelines: map[string]pipeline.Pipeline{}}
}

func (f *fakeRenderer) SurfaceFormat() (wgpu.TextureFormat, error) {
	return wgpu.TextureFormatBGRA8UnormSrgb, nil
}

func (f *fakeRenderer) Pipeline(key string) pipeline.Pipeline { return f.pipelines[key] }

func (f *fakeRenderer) Pipelines() map[string]pipeline.Pipeline { return f.pipelines }

func (f *fakeRenderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	for _, p := range pipelines {
		f.calls = append(f.calls, "register:"+p.PipelineKey())
		f.pipelines[p.PipelineKey()] = p
	}
	return nil
}

func (f *fakeRenderer) InitVertexBuffer(m model.Model) error {
	f.calls = append(f.calls, "upload:"+m.Name())
	return f.uploadErr
}

func (f *fakeRenderer) BeginFrame() error {
	f.calls = append(f.calls, "begin")
	return nil
}

func (f *fakeRenderer) DrawCall(pipelineKey string, m model.Model) error {
	f.calls = append(f.calls, "draw:"+pipelineKey+":"+m.Name())
	return f.drawErr
}

func (f *fakeRenderer) EndFrame() error {
	f.calls = append(f.calls, "end")
	return nil
}

func (f *fakeRenderer) Present() error {
	f.calls = append(f.calls, "present")
	return nil
}

func (f *fakeRenderer) Release() {}

func newTriangle(t *testing.T) (model.Model, pipeline.Pipeline) {
	t.Helper()
	m, err := model.NewModel()
	require.NoError(t, err)
	return m, pipeline.NewPipeline("Triangle Pipeline")
}

func TestRenderSubmitsOneFrame(t *testing.T) {
	r := newFakeRenderer()
	s := NewScene("main", r)
	m, p := newTriangle(t)

	require.NoError(t, s.Add(m, p))
	assert.Equal(t, 1, s.Count())
	require.NoError(t, s.Render())
	assert.True(t, s.Rendered())

	assert.Equal(t, []string{
		"register:Triangle Pipeline",
		"upload:Triangle Vertices",
		"begin",
		"draw:Triangle Pipeline:Triangle Vertices",
		"end",
		"present",
	}, r.calls)
}

func TestRenderOnlyOnce(t *testing.T) {
	r := newFakeRenderer()
	s := NewScene("main", r)
	m, p := newTriangle(t)
	require.NoError(t, s.Add(m, p))
	require.NoError(t, s.Render())

	assert.ErrorIs(t, s.Render(), ErrAlreadyRendered)
}

func TestRenderEmptyScene(t *testing.T) {
	s := NewScene("main", newFakeRenderer())
	assert.ErrorIs(t, s.Render(), ErrEmptyScene)
	assert.False(t, s.Rendered())
}

func TestNilRenderer(t *testing.T) {
	s := NewScene("main", nil)
	m, p := newTriangle(t)
	assert.ErrorIs(t, s.Add(m, p), ErrNoRenderer)
	assert.ErrorIs(t, s.Render(), ErrNoRenderer)
}

func TestAddStopsOnUploadFailure(t *testing.T) {
	r := newFakeRenderer()
	r.uploadErr = renderer.ErrBufferCreate
	s := NewScene("main", r)
	m, p := newTriangle(t)

	assert.ErrorIs(t, s.Add(m, p), renderer.ErrBufferCreate)
	assert.Equal(t, 0, s.Count())
}

func TestRenderStopsAtFirstDrawFailure(t *testing.T) {
	r := newFakeRenderer()
	r.drawErr = errors.New("lost device")
	s := NewScene("main", r)
	m, p := newTriangle(t)
	require.NoError(t, s.Add(m, p))

	err := s.Render()
	require.ErrorIs(t, err, r.drawErr)
	assert.NotContains(t, r.calls, "end")
	assert.NotContains(t, r.calls, "present")
	assert.False(t, s.Rendered())
}

func TestReleaseClearsScene(t *testing.T) {
	s := NewScene("main", newFakeRenderer())
	m, p := newTriangle(t)
	require.NoError(t, s.Add(m, p))

	s.Release()
	assert.Equal(t, 0, s.Count())
	assert.Nil(t, m.VertexBuffer())
}
