package blob

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	"github.com/pkg/errors"

	"github.com/strandtech/storefront/config"
)

// Store is the narrow contract the services depend on: upload bytes under a
// name and get back a public URL, or delete a previously uploaded blob.
type Store interface {
	Put(ctx context.Context, name string, data []byte) (*PutResult, error)
	Delete(ctx context.Context, blobURL string) error
}

// PutResult is the blob store's answer to an upload.
type PutResult struct {
	URL      string `json:"url"`
	Pathname string `json:"pathname"`
}

// Client talks to a Vercel-blob style HTTP object store. Uploads are a PUT
// of the raw bytes; deletes post the public URLs to a delete endpoint.
type Client struct {
	endpoint string
	token    string
	timeout  time.Duration
}

func NewClient(cfg config.BlobConfig) *Client {
	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		token:    cfg.Token,
		timeout:  30 * time.Second,
	}
}

func (c *Client) Put(ctx context.Context, name string, data []byte) (*PutResult, error) {
	if len(data) == 0 {
		return nil, errors.New("blob: empty payload")
	}
	var result PutResult
	var code int
	err := gout.PUT(fmt.Sprintf("%s/%s", c.endpoint, url.PathEscape(name))).
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetHeader(gout.H{
			"Authorization":     "Bearer " + c.token,
			"x-allow-overwrite": "true",
		}).
		SetBody(data).
		BindJSON(&result).
		Code(&code).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "blob: upload request failed")
	}
	if code != 200 {
		return nil, errors.Errorf("blob: upload rejected with status %d", code)
	}
	if result.URL == "" {
		return nil, errors.New("blob: upload response missing url")
	}
	return &result, nil
}

func (c *Client) Delete(ctx context.Context, blobURL string) error {
	var code int
	err := gout.POST(c.endpoint + "/delete").
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetHeader(gout.H{"Authorization": "Bearer " + c.token}).
		SetJSON(gout.H{"urls": []string{blobURL}}).
		Code(&code).
		Do()
	if err != nil {
		return errors.Wrap(err, "blob: delete request failed")
	}
	if code != 200 {
		return errors.Errorf("blob: delete rejected with status %d", code)
	}
	return nil
}
