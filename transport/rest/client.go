package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/trezcool/ujumbe/core"
	"github.com/trezcool/ujumbe/core/messaging"
)

// Client talks JSON over HTTP to the school backend's messaging API. Non-2xx
// responses carry an {"error": "..."} envelope whose message is surfaced to
// the caller verbatim; timeouts are handled by the underlying http.Client.
type Client struct {
	base  *url.URL
	token string
	httpc *http.Client
}

var _ messaging.Transport = (*Client)(nil)

func NewClient(conf *core.Config) (*Client, error) {
	base, err := url.Parse(conf.API.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing API base URL")
	}
	return &Client{
		base:  base,
		token: conf.API.Token,
		httpc: &http.Client{Timeout: conf.API.Timeout},
	}, nil
}

func (c *Client) ListContacts(ctx context.Context) ([]messaging.Contact, error) {
	var contacts []messaging.Contact
	if err := c.get(ctx, "/v1/messaging/contacts", nil, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (c *Client) ListThreads(ctx context.Context) ([]messaging.Thread, error) {
	var threads []messaging.Thread
	if err := c.get(ctx, "/v1/messaging/threads", nil, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

func (c *Client) ListMessages(ctx context.Context, threadID string, opts messaging.PageOptions) (messaging.MessagePage, error) {
	query := make(url.Values)
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	var page messaging.MessagePage
	path := fmt.Sprintf("/v1/messaging/threads/%s/messages", url.PathEscape(threadID))
	if err := c.get(ctx, path, query, &page); err != nil {
		return messaging.MessagePage{}, err
	}
	return page, nil
}

func (c *Client) SendMessage(ctx context.Context, threadID, body string) (messaging.Message, error) {
	in := sendMessageRequest{Body: body}
	var msg messaging.Message
	path := fmt.Sprintf("/v1/messaging/threads/%s/messages", url.PathEscape(threadID))
	if err := c.post(ctx, path, in, &msg); err != nil {
		return messaging.Message{}, err
	}
	return msg, nil
}

func (c *Client) CreateThread(ctx context.Context, nt messaging.NewThread) (messaging.Thread, error) {
	in := createThreadRequest{ParticipantIDs: []string{nt.ContactID}, SubjectID: nt.SubjectID}
	var th messaging.Thread
	if err := c.post(ctx, "/v1/messaging/threads", in, &th); err != nil {
		return messaging.Thread{}, err
	}
	return th, nil
}

type (
	sendMessageRequest struct {
		Body string `json:"body"`
	}

	createThreadRequest struct {
		ParticipantIDs []string `json:"participant_ids"`
		SubjectID      string   `json:"subject_id,omitempty"`
	}

	errorResponse struct {
		Error string `json:"error"`
	}
)

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "marshalling request body")
	}
	return c.do(ctx, http.MethodPost, path, nil, bytes.NewReader(data), out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, out interface{}) error {
	rel := &url.URL{Path: path}
	u := c.base.ResolveReference(rel)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.httpc.Do(req)
	if err != nil {
		return errors.Wrap(err, method+" "+path)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		// surface the server's message verbatim; we do not interpret codes
		// beyond success/failure
		var envlp errorResponse
		if err := json.NewDecoder(res.Body).Decode(&envlp); err == nil && envlp.Error != "" {
			return errors.New(envlp.Error)
		}
		return errors.New(http.StatusText(res.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decoding response body")
	}
	return nil
}
