package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/litescript/ls-skyfield/internal/fits"
	"github.com/litescript/ls-skyfield/internal/logging"
	"github.com/litescript/ls-skyfield/internal/wcs"
)

const (
	// DefaultNovaURL is the public astrometry.net service.
	DefaultNovaURL = "https://nova.astrometry.net"

	// DefaultSolveTimeout bounds the whole upload-to-solution cycle.
	DefaultSolveTimeout = 1800 * time.Second

	// DefaultPollInterval is the wait between status checks.
	DefaultPollInterval = 5 * time.Second

	// RequestTimeout is the per-request HTTP timeout.
	RequestTimeout = 60 * time.Second
)

// ErrNoAPIKey means no astrometry.net API key was configured.
var ErrNoAPIKey = errors.New("astrometry.net API key not set")

// AstrometryNet solves images with the astrometry.net web API.
type AstrometryNet struct {
	client       *http.Client
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	solveTimeout time.Duration
	log          *logging.Logger
}

// Option configures an AstrometryNet client.
type Option func(*AstrometryNet)

// WithBaseURL points the client at another nova instance.
func WithBaseURL(u string) Option {
	return func(a *AstrometryNet) {
		a.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *AstrometryNet) {
		a.client = c
	}
}

// WithPollInterval sets the wait between status checks.
func WithPollInterval(d time.Duration) Option {
	return func(a *AstrometryNet) {
		a.pollInterval = d
	}
}

// WithSolveTimeout bounds the whole solve.
func WithSolveTimeout(d time.Duration) Option {
	return func(a *AstrometryNet) {
		a.solveTimeout = d
	}
}

// WithLogger sets the progress logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *AstrometryNet) {
		a.log = l
	}
}

// NewAstrometryNet creates a client for the given API key.
func NewAstrometryNet(apiKey string, opts ...Option) *AstrometryNet {
	a := &AstrometryNet{
		baseURL:      DefaultNovaURL,
		apiKey:       apiKey,
		pollInterval: DefaultPollInterval,
		solveTimeout: DefaultSolveTimeout,
		log:          logging.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.client == nil {
		a.client = &http.Client{Timeout: RequestTimeout}
	}
	return a
}

// Name implements Solver.
func (a *AstrometryNet) Name() string {
	return "astrometry.net"
}

type novaStatus struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"errormessage"`
	Session      string `json:"session"`
	SubID        int    `json:"subid"`
}

type novaSubmission struct {
	Jobs []*int `json:"jobs"`
}

// Solve implements Solver: log in, upload, wait for a job, wait for the job
// to finish, then fetch its WCS header.
func (a *AstrometryNet) Solve(ctx context.Context, image []byte, filename string) (wcs.Header, error) {
	if a.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	ctx, cancel := context.WithTimeout(ctx, a.solveTimeout)
	defer cancel()

	session, err := a.login(ctx)
	if err != nil {
		return nil, err
	}

	subID, err := a.upload(ctx, session, image, filename)
	if err != nil {
		return nil, err
	}
	a.log.Info("submitted %s as submission %d", filename, subID)

	jobID, err := a.waitForJob(ctx, subID)
	if err != nil {
		return nil, err
	}
	a.log.Info("submission %d started job %d", subID, jobID)

	if err := a.waitForSolution(ctx, jobID); err != nil {
		return nil, err
	}

	return a.wcsFile(ctx, jobID)
}

func (a *AstrometryNet) login(ctx context.Context) (string, error) {
	reqJSON, _ := json.Marshal(map[string]string{"apikey": a.apiKey})
	form := url.Values{"request-json": {string(reqJSON)}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var st novaStatus
	if err := a.doJSON(req, &st); err != nil {
		return "", fmt.Errorf("astrometry.net login failed: %w", err)
	}
	if st.Status != "success" || st.Session == "" {
		return "", fmt.Errorf("astrometry.net login failed: %s", st.ErrorMessage)
	}
	return st.Session, nil
}

func (a *AstrometryNet) upload(ctx context.Context, session string, image []byte, filename string) (int, error) {
	reqJSON, _ := json.Marshal(map[string]string{
		"session":              session,
		"publicly_visible":     "n",
		"allow_commercial_use": "n",
		"allow_modifications":  "n",
	})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("request-json", string(reqJSON)); err != nil {
		return 0, err
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return 0, err
	}
	if _, err := fw.Write(image); err != nil {
		return 0, err
	}
	if err := mw.Close(); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/upload", &body)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var st novaStatus
	if err := a.doJSON(req, &st); err != nil {
		return 0, fmt.Errorf("astrometry.net upload failed: %w", err)
	}
	if st.Status != "success" {
		return 0, fmt.Errorf("astrometry.net upload failed: %s", st.ErrorMessage)
	}
	return st.SubID, nil
}

func (a *AstrometryNet) waitForJob(ctx context.Context, subID int) (int, error) {
	u := fmt.Sprintf("%s/api/submissions/%d", a.baseURL, subID)
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return 0, fmt.Errorf("create request: %w", err)
		}
		var sub novaSubmission
		if err := a.doJSON(req, &sub); err != nil {
			return 0, fmt.Errorf("astrometry.net submission status: %w", err)
		}
		for _, j := range sub.Jobs {
			if j != nil {
				return *j, nil
			}
		}
		if err := a.sleep(ctx); err != nil {
			return 0, err
		}
	}
}

func (a *AstrometryNet) waitForSolution(ctx context.Context, jobID int) error {
	u := fmt.Sprintf("%s/api/jobs/%d", a.baseURL, jobID)
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		var st novaStatus
		if err := a.doJSON(req, &st); err != nil {
			return fmt.Errorf("astrometry.net job status: %w", err)
		}
		switch st.Status {
		case "success":
			return nil
		case "failure":
			return fmt.Errorf("job %d: %w", jobID, ErrSolveFailed)
		}
		a.log.Debug("job %d status %q", jobID, st.Status)
		if err := a.sleep(ctx); err != nil {
			return err
		}
	}
}

func (a *AstrometryNet) wcsFile(ctx context.Context, jobID int) (wcs.Header, error) {
	u := fmt.Sprintf("%s/wcs_file/%d", a.baseURL, jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("astrometry.net wcs_file request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("astrometry.net wcs_file returned status %d", resp.StatusCode)
	}
	h, err := fits.ReadHeader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse wcs_file: %w", err)
	}
	return h, nil
}

func (a *AstrometryNet) doJSON(req *http.Request, v interface{}) error {
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (a *AstrometryNet) sleep(ctx context.Context) error {
	t := time.NewTimer(a.pollInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
