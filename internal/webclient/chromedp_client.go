package webclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/logging"
)

// ChromeDPClient renders pages in a shared headless browser. Each Do opens a
// fresh tab so scripts that build login forms at runtime have run by the time
// the DOM is captured.
type ChromeDPClient struct {
	allocCtx     context.Context
	allocCancel  context.CancelFunc
	browserCtx   context.Context
	browserClose context.CancelFunc

	timeout   time.Duration
	idleAfter time.Duration
	logger    logging.Logger
}

func NewChromedpClient(cfg Config, logger logging.Logger) (WebClient, error) {
	if logger == nil {
		return nil, fmt.Errorf("chromedp: nil logger")
	}
	componentLogger := logger.With(logging.Field{Key: "backend", Value: "chromedp"})

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if cfg.Headful {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserClose := chromedp.NewContext(allocCtx)

	// Start the browser now so a missing binary fails construction.
	if err := chromedp.Run(browserCtx); err != nil {
		browserClose()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	componentLogger.Debug("created chromedp webclient",
		logging.Field{Key: "headful", Value: cfg.Headful})

	return &ChromeDPClient{
		allocCtx:     allocCtx,
		allocCancel:  allocCancel,
		browserCtx:   browserCtx,
		browserClose: browserClose,
		timeout:      cfg.timeout(),
		idleAfter:    cfg.idleAfter(),
		logger:       componentLogger,
	}, nil
}

// waitNetworkIdle returns a channel that is closed once no request has been in
// flight for idleAfter.
func waitNetworkIdle(ctx context.Context, idleAfter time.Duration) <-chan struct{} {
	idleChan := make(chan struct{})
	var activeReqs int32
	var timer *time.Timer
	var timerMutex sync.Mutex
	var once sync.Once

	startTimer := func() {
		timerMutex.Lock()
		defer timerMutex.Unlock()

		if timer != nil {
			timer.Stop()
		}

		timer = time.AfterFunc(idleAfter, func() {
			if atomic.LoadInt32(&activeReqs) == 0 {
				once.Do(func() { close(idleChan) })
			}
		})
	}

	chromedp.ListenTarget(ctx, func(ev any) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			atomic.AddInt32(&activeReqs, 1)
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if atomic.AddInt32(&activeReqs, -1) <= 0 {
				startTimer()
			}
		}
	})

	// Pages with no subresources never emit a finished event.
	startTimer()

	return idleChan
}

// Do navigates to req.URL and returns the rendered document. Only GET is
// supported.
func (cdc *ChromeDPClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	if m := strings.ToUpper(req.Method); m != "" && m != http.MethodGet {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, req.Method)
	}

	tabCtx, tabCancel := chromedp.NewContext(cdc.browserCtx)
	defer tabCancel()
	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, cdc.timeout)
	defer timeoutCancel()

	// Stop the tab when the caller gives up.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	cdc.logger.Debug("navigating",
		logging.Field{Key: "url", Value: req.URL})

	var (
		status  int
		headers http.Header
		mainID  network.RequestID
		mu      sync.Mutex
	)
	chromedp.ListenTarget(tabCtx, func(ev any) {
		e, ok := ev.(*network.EventResponseReceived)
		if !ok || e.Type != network.ResourceTypeDocument {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if mainID != "" && e.RequestID != mainID {
			return
		}
		mainID = e.RequestID
		status = int(e.Response.Status)
		headers = http.Header{}
		for k, v := range e.Response.Headers {
			headers.Set(k, fmt.Sprint(v))
		}
	})

	idle := waitNetworkIdle(tabCtx, cdc.idleAfter)

	if err := chromedp.Run(tabCtx, network.Enable(), chromedp.Navigate(req.URL)); err != nil {
		cdc.logger.Warn("navigation failed",
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("navigate: %w", err)
	}

	select {
	case <-idle:
	case <-tabCtx.Done():
		return nil, fmt.Errorf("wait for network idle: %w", tabCtx.Err())
	}

	var html, location string
	if err := chromedp.Run(tabCtx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&location),
	); err != nil {
		return nil, fmt.Errorf("capture document: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if status == 0 {
		status = http.StatusOK
	}
	return &Response{
		Request:    req,
		FinalURL:   location,
		Headers:    headers,
		Body:       []byte(html),
		StatusCode: status,
		FetchedAt:  time.Now(),
	}, nil
}

func (cdc *ChromeDPClient) Close() error {
	cdc.logger.Debug("closing chromedp webclient")
	cdc.browserClose()
	cdc.allocCancel()
	return nil
}
