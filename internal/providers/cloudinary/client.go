// Package cloudinary implements the minimal slice of the Cloudinary HTTP API
// the cloud compression engine needs: signed uploads, transformation URL
// construction, asset download and the account usage report.
package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"coolpress/internal/infra"
)

// ErrMissingCredentials indicates the client was configured without a full
// credential set.
var ErrMissingCredentials = errors.New("cloudinary: credentials are required")

// Options configures the Cloudinary client.
type Options struct {
	CloudName      string
	APIKey         string
	APISecret      string
	UploadBaseURL  string
	DeliveryBase   string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against the Cloudinary upload and delivery APIs.
type Client struct {
	cloudName    string
	apiKey       string
	apiSecret    string
	uploadBase   string
	deliveryBase string
	httpClient   *http.Client
	logger       *infra.Logger
}

// UploadResult is the normalized response from an upload call.
type UploadResult struct {
	PublicID  string `json:"public_id"`
	URL       string `json:"url"`
	SecureURL string `json:"secure_url"`
	Format    string `json:"format"`
	Bytes     int64  `json:"bytes"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Transformation describes one delivery transform. Fields map to Cloudinary
// URL parameters; the URL builder keeps the parameter set flat because the
// service is known to reject carelessly combined compound transforms.
type Transformation struct {
	Width   int
	Height  int
	Crop    string // "fill" (cover), "scale" (stretch)
	Quality int    // explicit 1-100, never "auto" in fetch URLs
	Format  string
	Radius  string // "max" for the circular crop
}

// UsageReport is a trimmed view of the admin usage endpoint.
type UsageReport struct {
	Plan    string `json:"plan"`
	Credits struct {
		Usage float64 `json:"usage"`
		Limit float64 `json:"limit"`
	} `json:"credits"`
	Storage struct {
		Usage int64 `json:"usage"`
	} `json:"storage"`
	Requests int64 `json:"requests"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 45 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	uploadBase := strings.TrimRight(opts.UploadBaseURL, "/")
	if uploadBase == "" {
		uploadBase = "https://api.cloudinary.com/v1_1"
	}
	deliveryBase := strings.TrimRight(opts.DeliveryBase, "/")
	if deliveryBase == "" {
		deliveryBase = "https://res.cloudinary.com"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		cloudName:    strings.TrimSpace(opts.CloudName),
		apiKey:       strings.TrimSpace(opts.APIKey),
		apiSecret:    strings.TrimSpace(opts.APISecret),
		uploadBase:   uploadBase,
		deliveryBase: deliveryBase,
		httpClient:   httpClient,
		logger:       logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c != nil && c.cloudName != "" && c.apiKey != "" && c.apiSecret != ""
}

// Upload sends image bytes (or a remote source URL) to the upload API under
// the given public id. Exactly one of data and sourceURL must be set.
func (c *Client) Upload(ctx context.Context, data []byte, sourceURL, publicID string) (*UploadResult, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingCredentials
	}
	if len(data) == 0 && strings.TrimSpace(sourceURL) == "" {
		return nil, errors.New("cloudinary: upload needs bytes or a source url")
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("cloudinary: build form: %w", err)
		}
	}
	if err := writer.WriteField("api_key", c.apiKey); err != nil {
		return nil, fmt.Errorf("cloudinary: build form: %w", err)
	}
	if err := writer.WriteField("signature", c.sign(params)); err != nil {
		return nil, fmt.Errorf("cloudinary: build form: %w", err)
	}
	if len(data) > 0 {
		part, err := writer.CreateFormFile("file", publicID)
		if err != nil {
			return nil, fmt.Errorf("cloudinary: build form: %w", err)
		}
		if _, err := part.Write(data); err != nil {
			return nil, fmt.Errorf("cloudinary: build form: %w", err)
		}
	} else {
		// Cloudinary ingests remote assets when "file" is a URL.
		if err := writer.WriteField("file", strings.TrimSpace(sourceURL)); err != nil {
			return nil, fmt.Errorf("cloudinary: build form: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("cloudinary: build form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/image/upload", c.uploadBase, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: upload: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: read upload response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var detail errorResponse
		if jsonErr := json.Unmarshal(raw, &detail); jsonErr == nil && detail.Error.Message != "" {
			return nil, fmt.Errorf("cloudinary: upload failed: %s", detail.Error.Message)
		}
		return nil, fmt.Errorf("cloudinary: upload status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var result UploadResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("cloudinary: decode upload response: %w", err)
	}
	if result.PublicID == "" {
		return nil, errors.New("cloudinary: upload returned no public id")
	}
	c.logger.Debug().
		Str("public_id", result.PublicID).
		Int64("bytes", result.Bytes).
		Msg("cloudinary: asset uploaded")
	return &result, nil
}

// TransformURL builds the deterministic delivery URL for a transformation.
// Parameters are emitted as one flat component in a fixed order (crop/size,
// quality, format, radius).
func (c *Client) TransformURL(publicID string, t Transformation) string {
	var parts []string
	if t.Width > 0 || t.Height > 0 {
		crop := t.Crop
		if crop == "" {
			crop = "fill"
		}
		segment := "c_" + crop
		if t.Width > 0 {
			segment += fmt.Sprintf(",w_%d", t.Width)
		}
		if t.Height > 0 {
			segment += fmt.Sprintf(",h_%d", t.Height)
		}
		parts = append(parts, segment)
	}
	if t.Quality > 0 {
		parts = append(parts, fmt.Sprintf("q_%d", t.Quality))
	}
	if t.Format != "" {
		parts = append(parts, "f_"+t.Format)
	}
	if t.Radius != "" {
		parts = append(parts, "r_"+t.Radius)
	}

	base := fmt.Sprintf("%s/%s/image/upload", c.deliveryBase, c.cloudName)
	if len(parts) == 0 {
		return base + "/" + url.PathEscape(publicID)
	}
	return base + "/" + strings.Join(parts, ",") + "/" + url.PathEscape(publicID)
}

// Download fetches the transformed asset. The configured client timeout
// bounds the call; context cancellation aborts it early.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Scheme == "" {
		return nil, fmt.Errorf("cloudinary: invalid asset url: %s", rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("cloudinary: download status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: read asset: %w", err)
	}
	return data, nil
}

// Usage fetches the account usage report from the admin API.
func (c *Client) Usage(ctx context.Context) (*UsageReport, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingCredentials
	}
	endpoint := fmt.Sprintf("%s/%s/usage", c.uploadBase, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: build usage request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: usage: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: read usage response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("cloudinary: usage status %d", resp.StatusCode)
	}
	var report UsageReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("cloudinary: decode usage response: %w", err)
	}
	return &report, nil
}

// sign produces the request signature: the alphabetically sorted parameter
// string concatenated with the API secret, hashed with SHA-1.
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.apiSecret))
	return hex.EncodeToString(sum[:])
}
