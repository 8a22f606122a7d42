// Package parse talks to the cloud layout-parsing service that converts
// admission PDFs into markdown. Upload, poll, fetch result; no local PDF
// handling happens here.
package parse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

type Config struct {
	APIKey       string
	BaseURL      string
	Language     string
	PollInterval time.Duration
	JobTimeout   time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 60 * time.Second},
		log:  logger,
	}
}

// Page is one parsed page of a document.
type Page struct {
	Number   int    `json:"page"`
	Text     string `json:"text"`
	Markdown string `json:"md"`
}

// Result is the parsed document.
type Result struct {
	JobID string
	Pages []Page
}

type jobStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error_message"`
}

// ParseFile uploads the PDF at path, waits for the job to finish and returns
// the per-page markdown result.
func (c *Client) ParseFile(ctx context.Context, path string) (*Result, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.log.Info("parse.upload.start", "req_id", rid, "path", path)

	jobID, err := c.upload(ctx, path)
	if err != nil {
		c.log.Error("parse.upload.error", "req_id", rid, "path", path, "error", err)
		return nil, err
	}
	c.log.Info("parse.upload.ok", "req_id", rid, "job_id", jobID)

	if err := c.waitForJob(ctx, jobID); err != nil {
		c.log.Error("parse.job.error", "req_id", rid, "job_id", jobID, "error", err)
		return nil, err
	}

	pages, err := c.fetchResult(ctx, jobID)
	if err != nil {
		c.log.Error("parse.result.error", "req_id", rid, "job_id", jobID, "error", err)
		return nil, err
	}

	c.log.Info("parse.ok",
		"req_id", rid,
		"job_id", jobID,
		"pages", len(pages),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &Result{JobID: jobID, Pages: pages}, nil
}

func (c *Client) upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	if c.cfg.Language != "" {
		if err := mw.WriteField("language", c.cfg.Language); err != nil {
			return "", err
		}
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/api/v1/parsing/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	var js jobStatus
	if err := c.do(req, &js); err != nil {
		return "", err
	}
	if js.ID == "" {
		return "", fmt.Errorf("upload accepted but no job id returned")
	}
	return js.ID, nil
}

// waitForJob polls until the job reports SUCCESS, fails on ERROR/CANCELED,
// and gives up after the configured timeout.
func (c *Client) waitForJob(ctx context.Context, jobID string) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.JobTimeout)
	defer cancel()

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			fmt.Sprintf("%s/api/v1/parsing/job/%s", c.cfg.BaseURL, jobID), nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		var js jobStatus
		if err := c.do(req, &js); err != nil {
			return err
		}

		switch js.Status {
		case "SUCCESS":
			return nil
		case "ERROR", "CANCELED":
			return fmt.Errorf("parse job %s failed: %s", jobID, js.Error)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("parse job %s: %w", jobID, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) fetchResult(ctx context.Context, jobID string) ([]Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/v1/parsing/job/%s/result/json", c.cfg.BaseURL, jobID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	var body struct {
		Pages []Page `json:"pages"`
	}
	if err := c.do(req, &body); err != nil {
		return nil, err
	}
	return body.Pages, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.log.Warn("parse.http.body_close_error", "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("parsing service status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode parsing response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
