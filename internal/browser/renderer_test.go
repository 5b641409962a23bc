package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubChromedp replaces the browser with in-process fakes. The runner executes
// ActionFuncs and Tasks and records every other action it receives.
func stubChromedp(t *testing.T, runErr error) *[]chromedp.Action {
	t.Helper()

	origAlloc, origContext, origRunner, origActions := chromedpExecAllocator, chromedpContext, chromedpRunner, documentActions
	t.Cleanup(func() {
		chromedpExecAllocator, chromedpContext, chromedpRunner, documentActions = origAlloc, origContext, origRunner, origActions
	})

	chromedpExecAllocator = func(ctx context.Context, _ ...chromedp.ExecAllocatorOption) (context.Context, context.CancelFunc) {
		return context.WithCancel(ctx)
	}
	chromedpContext = func(ctx context.Context, _ ...chromedp.ContextOption) (context.Context, context.CancelFunc) {
		return context.WithCancel(ctx)
	}

	var recorded []chromedp.Action
	chromedpRunner = func(ctx context.Context, actions ...chromedp.Action) error {
		if runErr != nil {
			return runErr
		}
		for _, action := range actions {
			switch a := action.(type) {
			case chromedp.Tasks, chromedp.ActionFunc:
				if err := a.Do(ctx); err != nil {
					return err
				}
			default:
				recorded = append(recorded, a)
			}
		}
		return nil
	}
	return &recorded
}

func TestNewRendererSetsSessionCookies(t *testing.T) {
	recorded := stubChromedp(t, nil)

	r, err := NewRenderer(context.Background(), Options{Origin: "https://www.rtings.com", Session: "tok", Headless: true})
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, *recorded, 3)
	session, ok := (*recorded)[2].(*network.SetCookieParams)
	require.True(t, ok)
	assert.Equal(t, "_rtings_session", session.Name)
	assert.Equal(t, "tok", session.Value)
	assert.Equal(t, "www.rtings.com", session.Domain)
	assert.Equal(t, "/", session.Path)
}

func TestNewRendererRequiresOrigin(t *testing.T) {
	stubChromedp(t, nil)

	_, err := NewRenderer(context.Background(), Options{})
	assert.Error(t, err)
}

func TestNewRendererPropagatesBrowserFailure(t *testing.T) {
	stubChromedp(t, errors.New("chrome not found"))

	_, err := NewRenderer(context.Background(), Options{Origin: "https://www.rtings.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chrome not found")
}

func TestFetchDocument(t *testing.T) {
	stubChromedp(t, nil)
	documentActions = func(pageURL string, html *string) chromedp.Tasks {
		return chromedp.Tasks{chromedp.ActionFunc(func(context.Context) error {
			*html = "<html><body>" + pageURL + "</body></html>"
			return nil
		})}
	}

	r, err := NewRenderer(context.Background(), Options{Origin: "https://www.rtings.com"})
	require.NoError(t, err)
	defer r.Close()

	html, err := r.FetchDocument(context.Background(), "https://www.rtings.com/headphones/reviews/x")
	require.NoError(t, err)
	assert.Equal(t, "<html><body>https://www.rtings.com/headphones/reviews/x</body></html>", html)
}

func TestFetchDocumentFailure(t *testing.T) {
	stubChromedp(t, nil)
	documentActions = func(string, *string) chromedp.Tasks {
		return chromedp.Tasks{chromedp.ActionFunc(func(context.Context) error {
			return errors.New("net::ERR_NAME_NOT_RESOLVED")
		})}
	}

	r, err := NewRenderer(context.Background(), Options{Origin: "https://www.rtings.com"})
	require.NoError(t, err)
	defer r.Close()

	_, err = r.FetchDocument(context.Background(), "https://www.rtings.com/x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to render")
}

func TestFetchDocumentCancelled(t *testing.T) {
	stubChromedp(t, nil)
	documentActions = func(string, *string) chromedp.Tasks {
		return chromedp.Tasks{chromedp.ActionFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})}
	}

	r, err := NewRenderer(context.Background(), Options{Origin: "https://www.rtings.com"})
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.FetchDocument(ctx, "https://www.rtings.com/x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildExecAllocatorOptions(t *testing.T) {
	opts := buildExecAllocatorOptions(Options{Headless: true})
	assert.NotEmpty(t, opts)
}
