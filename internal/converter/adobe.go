package converter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Sentinel errors; wrapped errors can be matched with errors.Is.
var (
	ErrCredentials   = errors.New("adobe credentials rejected or missing")
	ErrQuotaExceeded = errors.New("adobe quota exceeded")
	ErrJobFailed     = errors.New("adobe export job failed")
	ErrJobTimeout    = errors.New("adobe export job timed out")
)

const (
	usBaseURL = "https://pdf-services.adobe.io"
	euBaseURL = "https://pdf-services-eu.adobe.io"

	pdf2ExcelEngine = "urn:adobe:pdfservices:pdf2excel:PDF2Excel"
	xlsxMediaPrefix = "application/vnd.openxmlformats"
	maxErrorBody    = 512
)

var statusPathPattern = regexp.MustCompile(`/exportpdf/([^/]+)/status`)

// Options configures a Client.
type Options struct {
	ClientID     string
	ClientSecret string
	// Region is "US" or "EU". BaseURL, when set, takes precedence.
	Region  string
	BaseURL string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	JobTimeout     time.Duration
	PollInterval   time.Duration

	Logger zerolog.Logger
}

// Client converts PDFs to xlsx workbooks with the Adobe PDF Services
// export operation.
type Client struct {
	baseURL      string
	clientID     string
	jobTimeout   time.Duration
	pollInterval time.Duration
	log          zerolog.Logger

	// plain talks to pre-signed storage URLs; api adds the bearer token.
	plain *http.Client
	api   *http.Client
}

// New returns a Client. It fails with ErrCredentials when the client id
// or secret is empty.
func New(opts Options) (*Client, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, fmt.Errorf("creating adobe client: %w", ErrCredentials)
	}
	base := opts.BaseURL
	if base == "" {
		base = usBaseURL
		if strings.EqualFold(opts.Region, "EU") {
			base = euBaseURL
		}
	}
	base = strings.TrimRight(base, "/")

	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 600 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: opts.ConnectTimeout}).DialContext,
		TLSHandshakeTimeout:   opts.ConnectTimeout,
		ResponseHeaderTimeout: opts.ReadTimeout,
	}
	plain := &http.Client{Transport: transport}

	creds := &clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     base + "/token",
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, plain)
	api := &http.Client{Transport: &oauth2.Transport{
		Source: creds.TokenSource(tokenCtx),
		Base:   transport,
	}}

	return &Client{
		baseURL:      base,
		clientID:     opts.ClientID,
		jobTimeout:   opts.JobTimeout,
		pollInterval: opts.PollInterval,
		log:          opts.Logger.With().Str("component", "adobe").Logger(),
		plain:        plain,
		api:          api,
	}, nil
}

// Convert uploads pdf, runs the export job and returns the xlsx bytes.
// filename is only used for logging.
func (c *Client) Convert(ctx context.Context, pdf []byte, filename string) ([]byte, error) {
	log := c.log.With().Str("file", filename).Int("bytes", len(pdf)).Logger()

	assetID, err := c.uploadAsset(ctx, pdf)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("asset_id", assetID).Msg("pdf uploaded")

	jobID, err := c.createExportJob(ctx, assetID)
	if err != nil {
		return nil, err
	}
	log.Info().Str("job_id", jobID).Msg("export job created")

	data, err := c.waitForResult(ctx, jobID)
	if err != nil {
		return nil, err
	}
	log.Info().Int("xlsx_bytes", len(data)).Msg("export job finished")
	return data, nil
}

func (c *Client) exportURL() string {
	return c.baseURL + "/operation/exportpdf"
}

type assetResponse struct {
	UploadURI string `json:"uploadUri"`
	AssetID   string `json:"assetID"`
}

func (c *Client) uploadAsset(ctx context.Context, pdf []byte) (string, error) {
	resp, err := c.postJSON(ctx, c.baseURL+"/assets", map[string]string{"mediaType": "application/pdf"})
	if err != nil {
		return "", fmt.Errorf("requesting upload uri: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return "", fmt.Errorf("requesting upload uri: %w", err)
	}

	var asset assetResponse
	if err := json.NewDecoder(resp.Body).Decode(&asset); err != nil {
		return "", fmt.Errorf("decoding asset response: %w", err)
	}
	if asset.UploadURI == "" || asset.AssetID == "" {
		return "", errors.New("asset response has no uploadUri or assetID")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, asset.UploadURI, bytes.NewReader(pdf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/pdf")
	put, err := c.plain.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading pdf: %w", err)
	}
	defer put.Body.Close()
	if err := checkStatus(put); err != nil {
		return "", fmt.Errorf("uploading pdf: %w", err)
	}
	return asset.AssetID, nil
}

// exportPayloads lists the request shapes the export endpoint has accepted
// over time, tried in order.
func exportPayloads(assetID string) []map[string]any {
	engine := map[string]any{"assetRef": map[string]any{"uri": pdf2ExcelEngine}}
	return []map[string]any{
		{"assetID": assetID, "targetFormat": "xlsx"},
		{"assetID": assetID, "cpf:engine": engine, "targetFormat": "xlsx"},
		{
			"cpf:engine": engine,
			"cpf:inputs": map[string]any{
				"params": map[string]any{
					"cpf:inline": map[string]any{"targetFormat": "xlsx"},
				},
				"documentIn": map[string]any{
					"cpf:location": map[string]any{"storageType": "external", "assetID": assetID},
				},
			},
		},
	}
}

func (c *Client) createExportJob(ctx context.Context, assetID string) (string, error) {
	var lastErr error
	for i, payload := range exportPayloads(assetID) {
		resp, err := c.postJSON(ctx, c.exportURL(), payload)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			lastErr = checkStatus(resp)
			resp.Body.Close()
			c.log.Debug().Int("variant", i+1).Err(lastErr).Msg("export payload rejected")
			if errors.Is(lastErr, ErrCredentials) || errors.Is(lastErr, ErrQuotaExceeded) {
				break
			}
			continue
		}

		jobID := jobIDFromLocation(resp.Header.Get("Location"))
		if jobID == "" {
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				resp.Body.Close()
				return "", fmt.Errorf("reading export response: %w", err)
			}
			jobID = jobIDFromBody(body)
		}
		resp.Body.Close()
		if jobID == "" {
			return "", fmt.Errorf("no job id in export response (location %q)", resp.Header.Get("Location"))
		}
		return jobID, nil
	}
	return "", fmt.Errorf("creating export job: %w", lastErr)
}

// jobIDFromLocation extracts the job id from a status URL such as
// https://host/operation/exportpdf/<id>/status.
func jobIDFromLocation(location string) string {
	if location == "" {
		return ""
	}
	if m := statusPathPattern.FindStringSubmatch(location); m != nil {
		return m[1]
	}
	parts := strings.Split(strings.Trim(location, "/"), "/")
	for i, p := range parts {
		if p == "status" {
			if i > 0 {
				return parts[i-1]
			}
			return ""
		}
	}
	return parts[len(parts)-1]
}

func jobIDFromBody(body []byte) string {
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return ""
	}
	return firstString(data, "jobId", "id", "job_id")
}

func (c *Client) waitForResult(ctx context.Context, jobID string) ([]byte, error) {
	pollCtx, cancel := context.WithTimeout(ctx, c.jobTimeout)
	defer cancel()

	statusURL := fmt.Sprintf("%s/%s/status", c.exportURL(), jobID)
	for {
		status, err := c.getStatus(pollCtx, statusURL)
		if err != nil {
			return nil, c.pollError(ctx, pollCtx, err)
		}

		state, _ := status["status"].(string)
		switch state {
		case "done", "success":
			return c.downloadResult(ctx, jobID, status)
		case "failed", "error":
			return nil, fmt.Errorf("%w: %s", ErrJobFailed, jobErrorMessage(status))
		}
		c.log.Debug().Str("job_id", jobID).Str("status", state).Msg("waiting for export job")

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-pollCtx.Done():
			timer.Stop()
			return nil, c.pollError(ctx, pollCtx, pollCtx.Err())
		case <-timer.C:
		}
	}
}

// pollError tells the caller's cancellation apart from the job deadline.
func (c *Client) pollError(parent, pollCtx context.Context, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if pollCtx.Err() != nil {
		return fmt.Errorf("%w after %s", ErrJobTimeout, c.jobTimeout)
	}
	return fmt.Errorf("polling job status: %w", err)
}

func (c *Client) getStatus(ctx context.Context, url string) (map[string]any, error) {
	req, err := c.newAPIRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.api.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var status map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decoding job status: %w", err)
	}
	return status, nil
}

var downloadKeys = []string{"downloadUri", "download_uri", "downloadURL", "download_url"}

// downloadURI looks for the result location in the asset object, the
// status root and the result object, in that order.
func downloadURI(status map[string]any) string {
	if asset, ok := status["asset"].(map[string]any); ok {
		if uri := firstString(asset, downloadKeys...); uri != "" {
			return uri
		}
	}
	if uri := firstString(status, downloadKeys...); uri != "" {
		return uri
	}
	if result, ok := status["result"].(map[string]any); ok {
		return firstString(result, downloadKeys...)
	}
	return ""
}

func (c *Client) downloadResult(ctx context.Context, jobID string, status map[string]any) ([]byte, error) {
	if uri := downloadURI(status); uri != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, err
		}
		return c.readBody(c.plain, req, "downloading result")
	}

	// Some job responses carry no URI; the result endpoint serves the file.
	req, err := c.newAPIRequest(ctx, http.MethodGet, fmt.Sprintf("%s/%s/result", c.exportURL(), jobID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.api.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching job result: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err == nil && strings.HasPrefix(resp.Header.Get("Content-Type"), xlsxMediaPrefix) {
		return io.ReadAll(resp.Body)
	}
	keys := make([]string, 0, len(status))
	for k := range status {
		keys = append(keys, k)
	}
	return nil, fmt.Errorf("job %s finished without a download uri (keys %v)", jobID, keys)
}

func (c *Client) readBody(client *http.Client, req *http.Request, what string) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return data, nil
}

func (c *Client) postJSON(ctx context.Context, url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := c.newAPIRequest(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.api.Do(req)
	if err != nil {
		return nil, tokenError(err)
	}
	return resp, nil
}

func (c *Client) newAPIRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", c.clientID)
	return req, nil
}

// tokenError marks token endpoint rejections as credential failures.
func tokenError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		switch re.Response.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrCredentials, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
	}
	return err
}

// checkStatus maps non-2xx responses to errors, including a body excerpt.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt)))
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrCredentials, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, msg)
	}
	return errors.New(msg)
}

func jobErrorMessage(status map[string]any) string {
	switch e := status["error"].(type) {
	case map[string]any:
		if msg, ok := e["message"].(string); ok && msg != "" {
			return msg
		}
		b, _ := json.Marshal(e)
		return string(b)
	case string:
		return e
	case nil:
		return "no error details"
	default:
		return fmt.Sprint(e)
	}
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
