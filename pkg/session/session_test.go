package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/airename/pkg/config"
	"github.com/ilkoid/airename/pkg/events"
	"github.com/ilkoid/airename/pkg/extract"
	"github.com/ilkoid/airename/pkg/llm"
	"github.com/ilkoid/airename/pkg/naming"
)

// stubExtractor возвращает "content of <name>".
type stubExtractor struct{}

func (stubExtractor) Extract(_ context.Context, src extract.Source) string {
	return "content of " + src.Name
}

// stubNamer отвечает по таблице имён, записывая порядок вызовов.
type stubNamer struct {
	mu     sync.Mutex
	names  map[string]string
	errs   map[string]error
	calls  []string
	onCall func(name string)
}

func (n *stubNamer) Describe(_ context.Context, _ string, originalName string, _ ...naming.SuggestOption) (naming.Suggestion, error) {
	n.mu.Lock()
	n.calls = append(n.calls, originalName)
	hook := n.onCall
	n.mu.Unlock()

	if hook != nil {
		hook(originalName)
	}
	if err := n.errs[originalName]; err != nil {
		return naming.Suggestion{}, err
	}
	if name, ok := n.names[originalName]; ok {
		return naming.Suggestion{Name: name, Tier: naming.TierJSON}, nil
	}
	return naming.Suggestion{Name: "Named " + naming.StripExtension(originalName), Tier: naming.TierJSON}, nil
}

func src(name string, size int) extract.Source {
	return extract.Source{Name: name, Data: bytes.Repeat([]byte("a"), size)}
}

func newSession(t *testing.T, names ...string) *Session {
	t.Helper()
	s := New(config.LimitsConfig{})
	var sources []extract.Source
	for _, n := range names {
		sources = append(sources, src(n, 10))
	}
	_, _, err := s.Add(sources...)
	require.NoError(t, err)
	return s
}

func TestAdd_Validation(t *testing.T) {
	s := New(config.LimitsConfig{MaxFiles: 2, MaxFileSizeMB: 1})

	ids, rejected, err := s.Add(
		src("setup.exe", 10),
		src("big.pdf", 2<<20),
		src("a.txt", 10),
		src("b.docx", 10),
		src("c.md", 10),
	)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Equal(t, []Rejection{
		{Name: "setup.exe", Reason: ReasonUnsupported},
		{Name: "big.pdf", Reason: ReasonTooLarge},
		{Name: "c.md", Reason: ReasonTooMany},
	}, rejected)

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a.txt", entries[0].OriginalName)
	assert.Equal(t, StatePending, entries[0].State)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)

	_, rejected, err = s.Add(src("d.txt", 10))
	assert.True(t, errors.Is(err, ErrNoValidFiles))
	assert.Equal(t, ReasonTooMany, rejected[0].Reason)
}

func TestAdd_DefaultLimits(t *testing.T) {
	s := New(config.LimitsConfig{})
	var sources []extract.Source
	for i := 0; i < 12; i++ {
		sources = append(sources, src("f.txt", 1))
	}
	ids, rejected, err := s.Add(sources...)
	require.NoError(t, err)
	assert.Len(t, ids, 10)
	assert.Len(t, rejected, 2)
}

func TestProcess_AllDone(t *testing.T) {
	s := newSession(t, "report.docx", "photo.png", "notes.txt")
	namer := &stubNamer{
		names: map[string]string{"report.docx": "Q3 Budget Review"},
		errs:  map[string]error{"photo.png": &naming.UpstreamError{StatusCode: 500, Message: "boom"}},
	}

	res, err := s.Process(context.Background(), stubExtractor{}, namer, NewPauseToken(), WithDelay(0))
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Processed: 3, Ready: 2, Failed: 1}, res)

	entries := s.Entries()
	for _, e := range entries {
		assert.True(t, e.State.Done(), e.OriginalName)
		assert.NotEmpty(t, e.EditedName, e.OriginalName)
		assert.Equal(t, "content of "+e.OriginalName, e.ExtractedContent)
	}

	assert.Equal(t, "Q3 Budget Review", entries[0].EditedName)
	assert.Equal(t, StateReady, entries[0].State)

	assert.Equal(t, StateFailed, entries[1].State)
	assert.Equal(t, "photo", entries[1].SuggestedName)
	assert.Equal(t, "photo", entries[1].EditedName)
	assert.Contains(t, entries[1].Err, "500")

	assert.Equal(t, StateReady, entries[2].State)
	assert.Equal(t, []string{"report.docx", "photo.png", "notes.txt"}, namer.calls)
}

func TestProcess_PauseAndResume(t *testing.T) {
	s := newSession(t, "a.txt", "b.txt", "c.txt", "d.txt")
	token := NewPauseToken()
	namer := &stubNamer{}
	namer.onCall = func(name string) {
		if name == "b.txt" {
			token.Pause()
		}
	}

	res, err := s.Process(context.Background(), stubExtractor{}, namer, token, WithDelay(0))
	require.NoError(t, err)
	assert.True(t, res.Paused)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 2, res.Remaining)

	entries := s.Entries()
	assert.Equal(t, StateReady, entries[0].State)
	assert.Equal(t, StateReady, entries[1].State)
	assert.Equal(t, StatePending, entries[2].State)
	assert.Equal(t, StatePending, entries[3].State)

	namer.onCall = nil
	token.Reset()
	res, err = s.Process(context.Background(), stubExtractor{}, namer, token, WithDelay(0))
	require.NoError(t, err)
	assert.False(t, res.Paused)
	assert.Equal(t, 2, res.Processed)

	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt", "d.txt"}, namer.calls)
}

func TestProcess_PauseOnLastFileCompletesBatch(t *testing.T) {
	s := newSession(t, "a.txt", "b.txt")
	token := NewPauseToken()
	namer := &stubNamer{}
	namer.onCall = func(name string) {
		if name == "b.txt" {
			token.Pause()
		}
	}

	emitter := events.NewChanEmitter(16)
	res, err := s.Process(context.Background(), stubExtractor{}, namer, token, WithDelay(0), WithEmitter(emitter))
	require.NoError(t, err)
	emitter.Close()

	assert.False(t, res.Paused)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 2, res.Ready)
	assert.Zero(t, res.Remaining)
	assert.Zero(t, s.Pending())

	var types []events.EventType
	for ev := range emitter.Subscribe().Events() {
		types = append(types, ev.Type)
	}
	assert.NotContains(t, types, events.EventBatchPaused)
	assert.Equal(t, events.EventBatchDone, types[len(types)-1])
}

func TestProcess_PausedBeforeStart(t *testing.T) {
	s := newSession(t, "a.txt")
	token := NewPauseToken()
	token.Pause()

	namer := &stubNamer{}
	res, err := s.Process(context.Background(), stubExtractor{}, namer, token)
	require.NoError(t, err)
	assert.True(t, res.Paused)
	assert.Empty(t, namer.calls)
}

func TestProcess_DelayOnlyBetweenItems(t *testing.T) {
	s := newSession(t, "a.txt", "b.txt", "c.txt")

	start := time.Now()
	_, err := s.Process(context.Background(), stubExtractor{}, &stubNamer{}, nil, WithDelay(40*time.Millisecond))
	require.NoError(t, err)
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestProcess_Cancelled(t *testing.T) {
	s := newSession(t, "a.txt", "b.txt")
	ctx, cancel := context.WithCancel(context.Background())

	namer := &stubNamer{errs: map[string]error{"a.txt": context.Canceled}}
	namer.onCall = func(string) { cancel() }

	_, err := s.Process(ctx, stubExtractor{}, namer, nil, WithDelay(0))
	assert.True(t, errors.Is(err, context.Canceled))

	entries := s.Entries()
	assert.Equal(t, StatePending, entries[0].State)
	assert.Equal(t, StatePending, entries[1].State)
	assert.False(t, s.Running())
}

func TestProcess_Busy(t *testing.T) {
	s := newSession(t, "a.txt")

	var nested error
	namer := &stubNamer{}
	namer.onCall = func(string) {
		_, nested = s.Process(context.Background(), stubExtractor{}, &stubNamer{}, nil)
	}

	_, err := s.Process(context.Background(), stubExtractor{}, namer, nil, WithDelay(0))
	require.NoError(t, err)
	assert.True(t, errors.Is(nested, ErrBusy))
}

func TestProcess_Events(t *testing.T) {
	s := newSession(t, "a.txt", "b.txt")
	emitter := events.NewChanEmitter(16)
	namer := &stubNamer{errs: map[string]error{"b.txt": errors.New("down")}}

	_, err := s.Process(context.Background(), stubExtractor{}, namer, nil, WithDelay(0), WithEmitter(emitter))
	require.NoError(t, err)
	emitter.Close()

	var types []events.EventType
	for ev := range emitter.Subscribe().Events() {
		types = append(types, ev.Type)
		if ev.Type == events.EventFileFailed {
			data := ev.Data.(events.FileResultData)
			assert.Equal(t, "b", data.Name)
			assert.Error(t, data.Err)
		}
	}
	assert.Equal(t, []events.EventType{
		events.EventBatchStarted,
		events.EventFileStarted, events.EventFileDone,
		events.EventFileStarted, events.EventFileFailed,
		events.EventBatchDone,
	}, types)
}

// visionProvider запоминает картинки в последнем запросе.
type visionProvider struct {
	images []string
}

func (p *visionProvider) Generate(_ context.Context, messages []llm.Message, _ ...llm.GenerateOption) (llm.Message, error) {
	for _, m := range messages {
		p.images = append(p.images, m.Images...)
	}
	return llm.Message{Role: llm.RoleAssistant, Content: `{"title": "Sunset Beach"}`}, nil
}

func TestProcess_VisionAttachesImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	s := New(config.LimitsConfig{})
	_, _, err := s.Add(extract.Source{Name: "photo.png", Data: buf.Bytes()})
	require.NoError(t, err)

	provider := &visionProvider{}
	namer := naming.New(provider, config.ModelDef{APIKey: "sk", BaseURL: "http://x"}, config.NamingConfig{})

	_, err = s.Process(context.Background(), extract.New(), namer, nil,
		WithDelay(0), WithVision(true, config.ImageProcConfig{MaxWidth: 16, Quality: 80}))
	require.NoError(t, err)

	require.Len(t, provider.images, 1)
	assert.True(t, strings.HasPrefix(provider.images[0], "data:image/jpeg;base64,"))
	assert.Equal(t, "Sunset Beach", s.Entries()[0].EditedName)
}

func TestEditFlow(t *testing.T) {
	s := newSession(t, "a.txt")
	id := s.Entries()[0].ID

	assert.True(t, errors.Is(s.StartEdit(id), ErrNotEditable))
	assert.True(t, errors.Is(s.StartEdit("missing"), ErrEntryNotFound))

	_, err := s.Process(context.Background(), stubExtractor{}, &stubNamer{}, nil, WithDelay(0))
	require.NoError(t, err)

	require.NoError(t, s.StartEdit(id))
	e, _ := s.Entry(id)
	assert.True(t, e.Editing)
	assert.Equal(t, StateReady, e.State)

	assert.Error(t, s.CommitEdit(id, "   "))
	assert.Error(t, s.CommitEdit(id, "bad/name"))
	e, _ = s.Entry(id)
	assert.True(t, e.Editing)

	require.NoError(t, s.CommitEdit(id, "  My Name  "))
	e, _ = s.Entry(id)
	assert.Equal(t, "My Name", e.EditedName)
	assert.Equal(t, "Named a", e.SuggestedName)
	assert.False(t, e.Editing)

	assert.True(t, errors.Is(s.CancelEdit(id), ErrNotEditing))
	require.NoError(t, s.StartEdit(id))
	require.NoError(t, s.CancelEdit(id))
	e, _ = s.Entry(id)
	assert.Equal(t, "Named a", e.EditedName)
	assert.False(t, e.Editing)
}

func TestSelectionAndRemove(t *testing.T) {
	s := newSession(t, "a.txt", "b.txt", "c.txt")
	entries := s.Entries()
	a, b, c := entries[0].ID, entries[1].ID, entries[2].ID

	require.NoError(t, s.Select(c))
	on, err := s.Toggle(a)
	require.NoError(t, err)
	assert.True(t, on)

	selected := s.Selected()
	require.Len(t, selected, 2)
	assert.Equal(t, a, selected[0].ID)
	assert.Equal(t, c, selected[1].ID)
	assert.False(t, s.AllSelected())

	s.SelectAll()
	assert.True(t, s.AllSelected())

	require.NoError(t, s.Remove(b))
	assert.False(t, s.IsSelected(b))
	assert.Len(t, s.Selected(), 2)
	assert.True(t, errors.Is(s.Remove(b), ErrEntryNotFound))

	s.Deselect(a)
	assert.False(t, s.IsSelected(a))
	s.ClearSelection()
	assert.Empty(t, s.Selected())

	_, err = s.Toggle("missing")
	assert.True(t, errors.Is(err, ErrEntryNotFound))
}

func TestState_JSON(t *testing.T) {
	raw, err := json.Marshal(FileEntry{ID: "1", State: StateAwaitingSuggestion})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"state":"awaiting_suggestion"`)

	var e FileEntry
	require.NoError(t, json.Unmarshal(raw, &e))
	assert.Equal(t, StateAwaitingSuggestion, e.State)

	assert.Error(t, json.Unmarshal([]byte(`{"state":"bogus"}`), &e))
}
