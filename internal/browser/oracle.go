// Package browser implements a Layout Oracle on a headless Chrome tab. Every
// measurement renders the subtree into a hidden absolutely positioned
// element and reads its bounding box.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/gompdf/pagefit/internal/content"
)

// Sentinel errors returned by the package.
var (
	// ErrClosed is returned when using a closed [Oracle].
	ErrClosed = errors.New("browser: oracle is closed")
)

const measurerID = "pagefit-measurer"

const measureScript = `window.__pagefitMeasure = function (markup, width, padding) {
  var m = document.getElementById('` + measurerID + `');
  m.style.width = width + 'px';
  m.style.padding = padding + 'px';
  m.innerHTML = markup;
  var rect = m.getBoundingClientRect();
  var cs = window.getComputedStyle(m);
  var h = rect.height + (parseFloat(cs.marginTop) || 0) + (parseFloat(cs.marginBottom) || 0);
  m.innerHTML = '';
  return h;
};`

// Oracle measures content in a headless browser tab. Measurements are
// serialized on the tab; it is safe for concurrent use.
//
// Call [Oracle.Close] to release the browser.
type Oracle struct {
	cfg           config
	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
	tabCtx        context.Context
	tabCancel     context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// New starts a headless browser and prepares the measuring document
func New(opts ...Option) (*Oracle, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.chromePath == "" && cfg.autoDownload {
		path, err := resolveBrowser()
		if err != nil {
			return nil, err
		}
		cfg.chromePath = path
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("headless", cfg.headless),
	)
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("browser: starting browser: %w", err)
	}

	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, measuringDocument(cfg.stylesheets)).Do(ctx)
		}),
		chromedp.WaitReady("#"+measurerID, chromedp.ByQuery),
	); err != nil {
		tabCancel()
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("browser: preparing measuring tab: %w", err)
	}

	return &Oracle{
		cfg:           cfg,
		allocCancel:   allocCancel,
		browserCancel: browserCancel,
		tabCtx:        tabCtx,
		tabCancel:     tabCancel,
	}, nil
}

// Close releases the tab and the browser process. Close is idempotent.
func (o *Oracle) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	o.tabCancel()
	o.browserCancel()
	o.allocCancel()
	return nil
}

// Measure renders node at width inside padding and returns the measuring
// element's height plus its vertical margins
func (o *Oracle) Measure(node *content.Node, width, padding float64) (float64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return 0, ErrClosed
	}

	ctx := o.tabCtx
	if o.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.timeout)
		defer cancel()
	}

	markup, err := json.Marshal(node.Markup())
	if err != nil {
		return 0, fmt.Errorf("browser: encoding markup: %w", err)
	}
	var h float64
	expr := fmt.Sprintf("window.__pagefitMeasure(%s, %g, %g)", markup, width, padding)
	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &h)); err != nil {
		return 0, fmt.Errorf("browser: measuring <%s>: %w", node.Tag(), err)
	}
	return h, nil
}

func measuringDocument(stylesheets []string) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8">`)
	for _, css := range stylesheets {
		b.WriteString("<style>")
		b.WriteString(css)
		b.WriteString("</style>")
	}
	b.WriteString(`</head><body><div id="` + measurerID + `" style="position:absolute;visibility:hidden;pointer-events:none;left:-9999px;top:-9999px;"></div><script>`)
	b.WriteString(measureScript)
	b.WriteString("</script></body></html>")
	return b.String()
}

// resolveBrowser downloads a compatible Chromium binary if one is not
// already cached and returns the path to the executable.
func resolveBrowser() (string, error) {
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", fmt.Errorf("browser: downloading browser: %w", err)
	}
	return path, nil
}
