package adapter

import (
	"context"

	"github.com/pkg/errors"

	"bazaar/internal/pkg/httpclient"
)

// RenderHTTPAdapter 实现 port.InvoiceRenderer，调用外部渲染协作方。
type RenderHTTPAdapter struct {
	client *httpclient.Client
	url    string
}

func NewRenderHTTPAdapter(client *httpclient.Client, url string) *RenderHTTPAdapter {
	return &RenderHTTPAdapter{client: client, url: url}
}

type renderRequest struct {
	HTML string `json:"html"`
}

type renderResponse struct {
	URL string `json:"url"`
}

func (a *RenderHTTPAdapter) RenderPDF(ctx context.Context, html string) (string, error) {
	var resp renderResponse
	if err := a.client.PostJSON(ctx, a.url, renderRequest{HTML: html}, &resp); err != nil {
		return "", errors.Wrap(err, "render service")
	}
	if resp.URL == "" {
		return "", errors.New("render service returned empty url")
	}
	return resp.URL, nil
}
