package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/cijsubs/cijsubs/internal/apperrors"
	"github.com/cijsubs/cijsubs/internal/config"
	"github.com/cijsubs/cijsubs/internal/models"
)

const (
	catalogPath    = "/api/v1/content"
	transcriptPath = "/api/v1/transcript"
)

// Client defines the interface for querying the video site API.
// Every call is a single attempt; retrying is the caller's concern.
type Client interface {
	// GetCatalog fetches the content listing
	GetCatalog(ctx context.Context) (*models.Catalog, error)

	// GetTranscript fetches and validates one transcript
	GetTranscript(ctx context.Context, transcriptID int) (*models.Transcript, error)
}

// client implements the Client interface
type client struct {
	httpClient *http.Client
	baseURL    *url.URL
}

// NewClient creates a new client for the API at cfg.BaseURL
func NewClient(cfg *config.Config) (Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	// Clone DefaultTransport to preserve its settings (timeouts, connection pooling, HTTP/2, proxy from env)
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()

	return &client{
		httpClient: &http.Client{
			Timeout:   cfg.ClientTimeout,
			Transport: newAPITransport(baseTransport, cfg.UserAgent),
		},
		baseURL: base,
	}, nil
}

// GetCatalog fetches the content listing and keeps the videos that have a transcript
func (c *client) GetCatalog(ctx context.Context) (*models.Catalog, error) {
	logger := config.GetLogger()
	endpoint := c.endpoint(catalogPath, nil)
	logger.Debug().Str("url", endpoint).Msg("Fetching catalog")

	var payload models.CatalogResponse
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	catalog, err := ValidateCatalog(&payload)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("listed", len(catalog.Listed)).
		Int("withTranscript", len(catalog.Videos)).
		Msg("Fetched catalog")

	return catalog, nil
}

// GetTranscript fetches the transcript with the given transcript ID
func (c *client) GetTranscript(ctx context.Context, transcriptID int) (*models.Transcript, error) {
	query := url.Values{}
	query.Set("transcriptId", strconv.Itoa(transcriptID))
	endpoint := c.endpoint(transcriptPath, query)

	logger := config.GetLogger()
	logger.Debug().Str("url", endpoint).Msg("Fetching transcript")

	var payload models.TranscriptResponse
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	return ValidateTranscript(&payload)
}

func (c *client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = ""
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// getJSON issues a GET and decodes a JSON body into target
func (c *client) getJSON(ctx context.Context, endpoint string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewTransportError(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.NewStatusError(endpoint, resp.StatusCode)
	}

	body, err := utf8Body(resp)
	if err != nil {
		return apperrors.NewValidationError("Content-Type", err.Error())
	}

	if err := json.NewDecoder(body).Decode(target); err != nil {
		return apperrors.NewValidationError("body", fmt.Sprintf("malformed JSON: %v", err))
	}

	return nil
}

// utf8Body transcodes the response body to UTF-8 when Content-Type declares
// another charset. JSON without a declared charset is UTF-8.
func utf8Body(resp *http.Response) (io.Reader, error) {
	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return resp.Body, nil
	}
	label := params["charset"]
	if label == "" || strings.EqualFold(label, "utf-8") || strings.EqualFold(label, "utf8") {
		return resp.Body, nil
	}
	reader, err := charset.NewReaderLabel(label, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return reader, nil
}
