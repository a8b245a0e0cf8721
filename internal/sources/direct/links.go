package direct

import (
	"bytes"
	"context"
	"strings"

	"golang.org/x/net/html"

	"webnmap/internal/platform/errors"
	"webnmap/internal/platform/httpclient"
)

func (d *Direct) pageLinks(ctx context.Context, u string) (string, error) {
	resp, err := d.client.Get(ctx, u, nil)
	if err != nil {
		return "", err
	}
	if err := httpclient.CheckStatus(resp); err != nil {
		resp.Body.Close()
		return "", err
	}
	body, err := httpclient.ReadBody(resp)
	if err != nil {
		return "", err
	}

	links, err := extractLinks(body)
	if err != nil {
		return "", err
	}
	if len(links) == 0 {
		return "No links found", nil
	}
	return strings.Join(links, "\n"), nil
}

// extractLinks devuelve los href absolutos http(s) en orden de aparición, sin duplicados.
func extractLinks(body []byte) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidResponse, "parse html: %v", err)
	}

	seen := make(map[string]struct{})
	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				href := strings.TrimSpace(attr.Val)
				if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
					continue
				}
				if _, dup := seen[href]; !dup {
					seen[href] = struct{}{}
					links = append(links, href)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}
