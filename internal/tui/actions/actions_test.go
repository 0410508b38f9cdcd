package actions

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glabrego/charbrowser/internal/api"
	"github.com/glabrego/charbrowser/internal/detail"
	"github.com/glabrego/charbrowser/internal/pager"
)

type fakeNavigator struct {
	calls   []string
	err     error
	jumpErr error
}

func (f *fakeNavigator) RequestPage(_ context.Context, n int) error {
	f.calls = append(f.calls, fmt.Sprintf("request:%d", n))
	return f.err
}

func (f *fakeNavigator) Next(context.Context) error {
	f.calls = append(f.calls, "next")
	return f.err
}

func (f *fakeNavigator) Previous(context.Context) error {
	f.calls = append(f.calls, "previous")
	return f.err
}

func (f *fakeNavigator) JumpTo(_ context.Context, n int) error {
	f.calls = append(f.calls, fmt.Sprintf("jump:%d", n))
	if f.jumpErr != nil {
		return f.jumpErr
	}
	return f.err
}

func (f *fakeNavigator) HasNext() bool     { return true }
func (f *fakeNavigator) HasPrevious() bool { return true }

func (f *fakeNavigator) Refresh(context.Context) error {
	f.calls = append(f.calls, "refresh")
	return f.err
}

type fakeLoader struct {
	loaded []int
	err    error
}

func (f *fakeLoader) Load(_ context.Context, c api.Character) error {
	f.loaded = append(f.loaded, c.ID)
	return f.err
}

func TestNavigationCmds_CallNavigator(t *testing.T) {
	nav := &fakeNavigator{}
	for _, cmd := range []func() any{
		func() any { return RequestPageCmd(nav, 1)() },
		func() any { return NextCmd(nav)() },
		func() any { return PreviousCmd(nav)() },
		func() any { return JumpCmd(nav, 7)() },
		func() any { return RefreshCmd(nav)() },
	} {
		msg := cmd()
		done, ok := msg.(NavigationDoneMsg)
		if !ok || done.Err != nil {
			t.Fatalf("expected clean NavigationDoneMsg, got %T %+v", msg, msg)
		}
	}
	want := []string{"request:1", "next", "previous", "jump:7", "refresh"}
	if fmt.Sprint(nav.calls) != fmt.Sprint(want) {
		t.Fatalf("unexpected navigator calls: got=%v want=%v", nav.calls, want)
	}
}

func TestNavigationCmds_OnlySurfaceInvalidPage(t *testing.T) {
	nav := &fakeNavigator{
		err:     fmt.Errorf("page 3: %w", pager.ErrSuperseded),
		jumpErr: &pager.InvalidPageError{Page: 99, Total: 42},
	}
	if msg := NextCmd(nav)().(NavigationDoneMsg); msg.Err != nil {
		t.Fatalf("superseded result should be swallowed, got %v", msg.Err)
	}

	nav.err = errors.New("already reported through the presenter")
	if msg := RefreshCmd(nav)().(NavigationDoneMsg); msg.Err != nil {
		t.Fatalf("presented failures should not be repeated, got %v", msg.Err)
	}

	msg := JumpCmd(nav, 99)().(NavigationDoneMsg)
	if !pager.IsInvalidPage(msg.Err) {
		t.Fatalf("expected invalid page error, got %v", msg.Err)
	}
}

func TestLoadDetailCmd(t *testing.T) {
	loader := &fakeLoader{}
	msg := LoadDetailCmd(loader, api.Character{ID: 5})()
	done, ok := msg.(DetailDoneMsg)
	if !ok || done.ID != 5 || done.Err != nil {
		t.Fatalf("unexpected detail done message: %T %+v", msg, msg)
	}

	loader.err = fmt.Errorf("load: %w", detail.ErrSuperseded)
	if done := LoadDetailCmd(loader, api.Character{ID: 6})().(DetailDoneMsg); done.Err != nil {
		t.Fatalf("superseded detail load should be swallowed, got %v", done.Err)
	}

	loader.err = context.DeadlineExceeded
	if done := LoadDetailCmd(loader, api.Character{ID: 7})().(DetailDoneMsg); !errors.Is(done.Err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", done.Err)
	}
	if fmt.Sprint(loader.loaded) != "[5 6 7]" {
		t.Fatalf("unexpected loads: %v", loader.loaded)
	}
}

func TestImagePreviewCmd(t *testing.T) {
	img := api.Image{Key: "https://example.com/1.png", Data: []byte("png")}
	msg := ImagePreviewCmd(img, 40, func(data []byte, width int) (string, error) {
		if string(data) != "png" || width != 40 {
			t.Fatalf("unexpected render args: %q %d", data, width)
		}
		return "██", nil
	})()
	success, ok := msg.(ImagePreviewSuccessMsg)
	if !ok || success.Key != img.Key || success.Preview != "██" {
		t.Fatalf("unexpected preview message: %T %+v", msg, msg)
	}

	msg = ImagePreviewCmd(img, 40, func([]byte, int) (string, error) { return "", errors.New("chafa is not installed") })()
	if failed, ok := msg.(ImagePreviewErrorMsg); !ok || failed.Key != img.Key {
		t.Fatalf("expected ImagePreviewErrorMsg, got %T", msg)
	}
	if _, ok := ImagePreviewCmd(img, 40, nil)().(ImagePreviewErrorMsg); !ok {
		t.Fatal("expected error without a renderer")
	}
}

func TestOpenURLCmd_Fallbacks(t *testing.T) {
	msg := OpenURLCmd("https://example.com",
		func(string) error { return nil },
		func(string) error { return nil },
	)()
	success, ok := msg.(OpenURLSuccessMsg)
	if !ok || !success.Opened {
		t.Fatalf("expected opened success, got %T %+v", msg, success)
	}

	msg = OpenURLCmd("https://example.com",
		func(string) error { return errors.New("open failed") },
		func(string) error { return nil },
	)()
	success, ok = msg.(OpenURLSuccessMsg)
	if !ok || success.Opened {
		t.Fatalf("expected copy fallback success, got %T %+v", msg, success)
	}

	msg = OpenURLCmd("https://example.com",
		func(string) error { return errors.New("open failed") },
		func(string) error { return errors.New("copy failed") },
	)()
	if _, ok := msg.(OpenURLErrorMsg); !ok {
		t.Fatalf("expected OpenURLErrorMsg, got %T", msg)
	}
}

func TestCopyURLCmd(t *testing.T) {
	msg := CopyURLCmd("https://example.com", func(string) error { return nil })()
	if _, ok := msg.(OpenURLSuccessMsg); !ok {
		t.Fatalf("expected OpenURLSuccessMsg, got %T", msg)
	}
	msg = CopyURLCmd("https://example.com", func(string) error { return errors.New("copy failed") })()
	if _, ok := msg.(OpenURLErrorMsg); !ok {
		t.Fatalf("expected OpenURLErrorMsg, got %T", msg)
	}
}

func TestBridge_ForwardsPresenterCallbacksInOrder(t *testing.T) {
	b := NewBridge()
	defer b.Close()

	go func() {
		b.OnPageLoading(1)
		b.OnPageLoaded([]api.Character{{ID: 1}}, 1, 42)
		b.OnDetailReady(detail.View{ID: 1})
		b.OnImageReady(api.Image{Key: "k"})
		b.OnEpisodeNameReady("Pilot")
		b.OnDetailFailed("Request timed out, try again")
		b.OnPageFailed(2, "Request failed: server returned status 503")
	}()

	wait := b.Wait()
	got := make([]string, 0, 7)
	for range 7 {
		got = append(got, fmt.Sprintf("%T", wait()))
	}
	want := []string{
		"actions.PageLoadingMsg",
		"actions.PageLoadedMsg",
		"actions.DetailReadyMsg",
		"actions.ImageReadyMsg",
		"actions.EpisodeNameMsg",
		"actions.DetailFailedMsg",
		"actions.PageFailedMsg",
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("unexpected event order: got=%v want=%v", got, want)
	}
}

func TestBridge_StampsEpisodeNameWithLastDetail(t *testing.T) {
	b := NewBridge()
	defer b.Close()

	go func() {
		b.OnDetailReady(detail.View{ID: 1})
		b.OnDetailReady(detail.View{ID: 7})
		b.OnEpisodeNameReady("Pilot")
	}()

	wait := b.Wait()
	wait()
	wait()
	msg, ok := wait().(EpisodeNameMsg)
	if !ok {
		t.Fatalf("expected EpisodeNameMsg, got %T", msg)
	}
	if msg.ID != 7 || msg.Name != "Pilot" {
		t.Fatalf("unexpected episode message: %+v", msg)
	}
}

func TestBridge_CloseUnblocksWaitAndSend(t *testing.T) {
	b := NewBridge()
	b.Close()
	b.Close()

	done := make(chan struct{})
	go func() {
		for range bridgeBuffer + 5 {
			b.OnPageLoading(1)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("send blocked after Close")
	}
	if msg := b.Wait()(); msg != nil {
		t.Fatalf("expected nil message after Close, got %T", msg)
	}
}
