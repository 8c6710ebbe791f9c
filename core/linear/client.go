// Package linear is a minimal typed client for the three Linear
// GraphQL operations the sync needs: searching issues by title,
// creating a mirror issue, and posting a comment.
package linear

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// baseURL can be overridden in tests to point at a httptest server.
var baseURL string

const defaultBaseURL = "https://api.linear.app/graphql"

const findIssuesQuery = `query($filter: IssueFilter) {
  issues(filter: $filter, first: 1) {
    nodes {
      id
      identifier
      title
      url
    }
  }
}`

const createIssueMutation = `mutation($input: IssueCreateInput!) {
  issueCreate(input: $input) {
    success
    issue {
      id
      identifier
      url
    }
  }
}`

const createCommentMutation = `mutation($input: CommentCreateInput!) {
  commentCreate(input: $input) {
    success
    comment {
      id
      url
    }
  }
}`

// Issue is the slice of a Linear issue the sync cares about.
type Issue struct {
	ID         string `json:"id"`
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	URL        string `json:"url"`
}

// Comment is a created comment as returned by the API.
type Comment struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data   *responseData `json:"data"`
	Errors []gqlErr      `json:"errors"`
}

type responseData struct {
	Issues        *issueConnection `json:"issues"`
	IssueCreate   *issuePayload    `json:"issueCreate"`
	CommentCreate *commentPayload  `json:"commentCreate"`
}

type issueConnection struct {
	Nodes []Issue `json:"nodes"`
}

type issuePayload struct {
	Success bool   `json:"success"`
	Issue   *Issue `json:"issue"`
}

type commentPayload struct {
	Success bool     `json:"success"`
	Comment *Comment `json:"comment"`
}

type gqlErr struct {
	Message string `json:"message"`
}

// Client issues GraphQL requests against the Linear API. The zero
// value is not usable; construct one with NewClient.
type Client struct {
	apiKey string
}

// NewClient returns a client authenticating with the given API key.
// The key is sent raw in the Authorization header, as Linear expects
// for personal API keys.
func NewClient(apiKey string) *Client {
	return &Client{apiKey: apiKey}
}

// FindIssueByTitle returns the first issue whose title contains
// fragment, or nil when none matches.
func (c *Client) FindIssueByTitle(ctx context.Context, fragment string) (*Issue, error) {
	slog.Debug("Searching Linear issues by title", "fragment", fragment)

	data, err := c.do(ctx, findIssueRequest(fragment))
	if err != nil {
		return nil, err
	}
	if data.Issues == nil {
		return nil, fmt.Errorf("linear response is missing the issues field")
	}
	if len(data.Issues.Nodes) == 0 {
		return nil, nil
	}
	issue := data.Issues.Nodes[0]
	return &issue, nil
}

// CreateIssue creates an issue titled title under the team teamID and
// returns it. A non-success payload or a payload without an issue id
// is an error.
func (c *Client) CreateIssue(ctx context.Context, teamID, title string) (*Issue, error) {
	slog.Debug("Creating Linear issue", "team", teamID, "title", title)

	data, err := c.do(ctx, createIssueRequest(teamID, title))
	if err != nil {
		return nil, err
	}
	payload := data.IssueCreate
	if payload == nil || !payload.Success {
		return nil, fmt.Errorf("linear issue creation was not successful")
	}
	if payload.Issue == nil || payload.Issue.ID == "" {
		return nil, fmt.Errorf("linear issue creation returned no issue id")
	}
	return payload.Issue, nil
}

// CreateComment posts body as a comment under the issue issueID and
// returns the comment's canonical URL.
func (c *Client) CreateComment(ctx context.Context, issueID, body string) (string, error) {
	slog.Debug("Creating Linear comment", "issue", issueID, "bodyBytes", len(body))

	data, err := c.do(ctx, createCommentRequest(issueID, body))
	if err != nil {
		return "", err
	}
	payload := data.CommentCreate
	if payload == nil || !payload.Success {
		return "", fmt.Errorf("linear comment creation was not successful")
	}
	if payload.Comment == nil || payload.Comment.URL == "" {
		return "", fmt.Errorf("linear comment creation returned no comment url")
	}
	return payload.Comment.URL, nil
}

// findIssueRequest builds the title-containment search request.
func findIssueRequest(fragment string) graphQLRequest {
	return graphQLRequest{
		Query: findIssuesQuery,
		Variables: map[string]any{
			"filter": map[string]any{
				"title": map[string]any{
					"contains": fragment,
				},
			},
		},
	}
}

// createIssueRequest builds the issue creation request.
func createIssueRequest(teamID, title string) graphQLRequest {
	return graphQLRequest{
		Query: createIssueMutation,
		Variables: map[string]any{
			"input": map[string]any{
				"teamId": teamID,
				"title":  title,
			},
		},
	}
}

// createCommentRequest builds the comment creation request.
func createCommentRequest(issueID, body string) graphQLRequest {
	return graphQLRequest{
		Query: createCommentMutation,
		Variables: map[string]any{
			"input": map[string]any{
				"issueId": issueID,
				"body":    body,
			},
		},
	}
}

// do posts one GraphQL request and returns the decoded data object.
// Transport failures, non-200 statuses, GraphQL errors, and an absent
// data object all surface as errors carrying the remote message where
// one exists.
func (c *Client) do(ctx context.Context, reqBody graphQLRequest) (*responseData, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("linear API requires authentication: no API key configured")
	}

	url := baseURL
	if url == "" {
		url = defaultBaseURL
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal linear request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create linear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach linear: %w", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read linear response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("linear API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(respBody, &gqlResp); err != nil {
		return nil, fmt.Errorf("failed to parse linear response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		msgs := make([]string, len(gqlResp.Errors))
		for i, e := range gqlResp.Errors {
			msgs[i] = e.Message
		}
		return nil, fmt.Errorf("linear API returned errors: %s", strings.Join(msgs, "; "))
	}

	if gqlResp.Data == nil {
		return nil, fmt.Errorf("linear response carries no data")
	}
	return gqlResp.Data, nil
}
