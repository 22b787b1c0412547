package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pbaille/moodjournal/internal/domain"
)

const (
	DefaultHubURL  = "https://datasets-server.huggingface.co"
	DefaultDataset = "dair-ai/emotion"
	DefaultConfig  = "split"
	DefaultSplit   = "train"

	// the rows endpoint serves at most 100 rows per request
	hubPageSize = 100
)

// HubSource pages through a dataset split using the Hugging Face datasets-server rows API
type HubSource struct {
	BaseURL string
	Dataset string
	Config  string
	Split   string
	Client  *http.Client
}

// NewHubSource returns a HubSource for the dair-ai/emotion training split
func NewHubSource() *HubSource {
	return &HubSource{
		BaseURL: DefaultHubURL,
		Dataset: DefaultDataset,
		Config:  DefaultConfig,
		Split:   DefaultSplit,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type rowsResponse struct {
	Rows []struct {
		RowIdx int           `json:"row_idx"`
		Row    domain.Sample `json:"row"`
	} `json:"rows"`
	NumRowsTotal int    `json:"num_rows_total"`
	Error        string `json:"error,omitempty"`
}

func (h *HubSource) Load(ctx context.Context) (domain.Corpus, error) {
	c := domain.Corpus{Name: h.Dataset, Split: h.Split}

	for offset := 0; ; {
		page, err := h.fetchPage(ctx, offset)
		if err != nil {
			return domain.Corpus{}, err
		}
		for _, r := range page.Rows {
			c.Samples = append(c.Samples, r.Row)
		}
		offset += len(page.Rows)
		// some responses omit num_rows_total; then only an empty page ends the scan
		if len(page.Rows) == 0 || (page.NumRowsTotal > 0 && offset >= page.NumRowsTotal) {
			break
		}
	}

	if err := validate(c); err != nil {
		return domain.Corpus{}, err
	}
	return c, nil
}

func (h *HubSource) fetchPage(ctx context.Context, offset int) (*rowsResponse, error) {
	q := url.Values{}
	q.Set("dataset", h.Dataset)
	q.Set("config", h.Config)
	q.Set("split", h.Split)
	q.Set("offset", strconv.Itoa(offset))
	q.Set("length", strconv.Itoa(hubPageSize))

	req, err := http.NewRequestWithContext(ctx, "GET", h.BaseURL+"/rows?"+q.Encode(), nil)
	if err != nil {
		return nil, unavailable("create request: %v", err)
	}
	req.Header.Set("User-Agent", "moodjournal/1.0")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, unavailable("fetch rows at offset %d: %v", offset, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable("read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable("hub error (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	var page rowsResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, unavailable("unmarshal rows: %v", err)
	}
	if page.Error != "" {
		return nil, unavailable("hub error: %s", page.Error)
	}

	return &page, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return fmt.Sprintf("%s... (%d bytes)", s[:max], len(s))
}
