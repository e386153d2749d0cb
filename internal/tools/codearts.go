// In file: internal/tools/codearts.go
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// --- CodeArts Pipeline Tools ---

// defaultCodeArtsEndpoint is the public CodeArts pipeline API endpoint.
const defaultCodeArtsEndpoint = "https://cloudpipeline-ext.ap-southeast-3.myhuaweicloud.com"

// cannedPipelineDefinition is a minimal single-stage pipeline definition
// (base64-encoded JSON) used when creating a new pipeline. CodeArts requires
// a definition at creation time; users refine it in the console afterwards.
const cannedPipelineDefinition = "eyJzdGFnZXMiOlt7Im5hbWUiOiJTdGFnZV8xIiwic2VxdWVuY2UiOiIwIiwiam9icyI6W3siaWQiOiIiLCJpZGVudGlmaWVyX29sZCI6bnVsbCwic3RhZ2VfaW5kZXgiOm51bGwsInR5cGUiOm51bGwsIm5hbWUiOiJOZXcgSm9iIiwiYXN5bmMiOm51bGwsImlkZW50aWZpZXIiOiJKT0JfSlhKd3ciLCJzZXF1ZW5jZSI6MCwiY29uZGl0aW9uIjoiJHt7IGRlZmF1bHQoKSB9fSIsInN0cmF0ZWd5Ijp7InNlbGVjdF9zdHJhdGVneSI6InNlbGVjdGVkIn0sInRpbWVvdXQiOiIiLCJyZXNvdXJjZSI6bnVsbCwic3RlcHMiOltdLCJzdGFnZV9pZCI6IjE3NDcwMzEyMzUzNzciLCJwaXBlbGluZV9pZCI6IjJmNWVkYzYxYjlhMjQxN2JhZGZlZjU1Mjg3Njc3NTBkIiwidW5maW5pc2hlZF9zdGVwcyI6bnVsbCwiY29uZGl0aW9uX3RhZyI6bnVsbCwiZXhlY190eXBlIjoiQUdFTlRMRVNTX0pPQiIsImRlcGVuZHNfb24iOltdLCJyZXVzYWJsZV9qb2JfaWQiOm51bGx9XSwiaWRlbnRpZmllciI6IjE3NDcwMzEyMzUzNzc1NTFhYmM5MS00NGE1LTQ4OTgtOWZiYi01YWUxMjBjOWM2ODgiLCJwcmUiOlt7InJ1bnRpbWVfYXR0cmlidXRpb24iOm51bGwsIm11bHRpX3N0ZXBfZWRpdGFibGUiOjAsIm9mZmljaWFsX3Rhc2tfdmVyc2lvbiI6bnVsbCwibmFtZSI6bnVsbCwidGFzayI6Im9mZmljaWFsX2RldmNsb3VkX2F1dG9UcmlnZ2VyIiwiYnVzaW5lc3NfdHlwZSI6bnVsbCwiaW5wdXRzIjpudWxsLCJlbnYiOm51bGwsInNlcXVlbmNlIjowLCJpZGVudGlmaWVyIjpudWxsLCJlbmRwb2ludF9pZHMiOm51bGx9XSwicG9zdCI6bnVsbCwiZGVwZW5kc19vbiI6W10sInJ1bl9hbHdheXMiOmZhbHNlLCJwaXBlbGluZV9pZCI6IjJmNWVkYzYxYjlhMjQxN2JhZGZlZjU1Mjg3Njc3NTBkIn1dfQ=="

// CodeArtsClient is a thin authenticated HTTP client for the CodeArts
// pipeline API, shared by all pipeline tools. Authentication uses a static
// token supplied via process configuration; sourcing the token is the
// caller's concern.
type CodeArtsClient struct {
	endpoint   string
	authToken  string
	httpClient *http.Client
}

// NewCodeArtsClient creates a client for the CodeArts pipeline API.
// An empty endpoint selects the public CodeArts endpoint.
func NewCodeArtsClient(endpoint, authToken string) (*CodeArtsClient, error) {
	if authToken == "" {
		return nil, fmt.Errorf("CodeArts auth token cannot be empty")
	}
	if endpoint == "" {
		endpoint = defaultCodeArtsEndpoint
	}
	return &CodeArtsClient{
		endpoint:  strings.TrimRight(endpoint, "/"),
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// post performs an authenticated POST against the pipeline API and returns
// the raw response body. Non-2xx responses are errors carrying the status
// and body so the failure reason survives all the way back to the model.
func (c *CodeArtsClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create CodeArts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-auth-token", c.authToken)
	req.Header.Set("User-Agent", "Agent-Gateway/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call CodeArts API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read CodeArts response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("CodeArts API returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// --- List Pipelines Tool ---

// ListPipelinesTool lets the model enumerate the CodeArts pipelines of a
// project.
type ListPipelinesTool struct {
	client *CodeArtsClient
}

var _ ToolExecutor = (*ListPipelinesTool)(nil)

func NewListPipelinesTool(client *CodeArtsClient) *ListPipelinesTool {
	return &ListPipelinesTool{client: client}
}

func (t *ListPipelinesTool) Definition() Tool {
	return NewFunctionTool(
		"list_codearts_pipelines",
		"Retrieves the list of CodeArts pipelines for a project. Use this when the user asks to list, show, or enumerate pipelines, or asks what pipelines exist.",
		JSONSchema{
			Type: "object",
			Properties: map[string]*JSONSchema{
				"project_id": {
					Type:        "string",
					Description: "The CodeArts project ID to query pipelines for.",
				},
			},
			Required: []string{"project_id"},
		},
	)
}

func (t *ListPipelinesTool) Execute(ctx context.Context, arguments string) (string, error) {
	var args struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments for pipeline listing: %w", err)
	}

	body, err := t.client.post(ctx, fmt.Sprintf("/v5/%s/api/pipelines/list", args.ProjectID), map[string]any{})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// --- Create Pipeline Tool ---

// CreatePipelineTool lets the model create a new CodeArts pipeline in a
// project, seeded with the canned single-stage definition.
type CreatePipelineTool struct {
	client *CodeArtsClient
}

var _ ToolExecutor = (*CreatePipelineTool)(nil)

func NewCreatePipelineTool(client *CodeArtsClient) *CreatePipelineTool {
	return &CreatePipelineTool{client: client}
}

func (t *CreatePipelineTool) Definition() Tool {
	return NewFunctionTool(
		"create_codearts_pipeline",
		"Creates a new CodeArts pipeline with the given name in a project. Use this when the user asks to create, add, or set up a pipeline.",
		JSONSchema{
			Type: "object",
			Properties: map[string]*JSONSchema{
				"name": {
					Type:        "string",
					Description: "The name of the pipeline to create.",
				},
				"project_id": {
					Type:        "string",
					Description: "The CodeArts project ID the pipeline belongs to.",
				},
			},
			Required: []string{"name", "project_id"},
		},
	)
}

func (t *CreatePipelineTool) Execute(ctx context.Context, arguments string) (string, error) {
	var args struct {
		Name      string `json:"name"`
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments for pipeline creation: %w", err)
	}
	if args.Name == "" {
		return "Error: Pipeline name cannot be empty.", nil
	}

	payload := map[string]any{
		"name":       args.Name,
		"definition": cannedPipelineDefinition,
	}
	body, err := t.client.post(ctx, fmt.Sprintf("/v5/%s/api/pipelines", args.ProjectID), payload)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// --- Run Pipeline Tool ---

// RunPipelineTool lets the model trigger an execution of an existing
// CodeArts pipeline.
type RunPipelineTool struct {
	client *CodeArtsClient
}

var _ ToolExecutor = (*RunPipelineTool)(nil)

func NewRunPipelineTool(client *CodeArtsClient) *RunPipelineTool {
	return &RunPipelineTool{client: client}
}

func (t *RunPipelineTool) Definition() Tool {
	return NewFunctionTool(
		"run_codearts_pipeline",
		"Triggers a run of an existing CodeArts pipeline. Use this when the user asks to run, start, execute, or trigger a pipeline.",
		JSONSchema{
			Type: "object",
			Properties: map[string]*JSONSchema{
				"pipeline_id": {
					Type:        "string",
					Description: "The ID of the pipeline to run, as returned by list_codearts_pipelines.",
				},
				"project_id": {
					Type:        "string",
					Description: "The CodeArts project ID the pipeline belongs to.",
				},
			},
			Required: []string{"pipeline_id", "project_id"},
		},
	)
}

func (t *RunPipelineTool) Execute(ctx context.Context, arguments string) (string, error) {
	var args struct {
		PipelineID string `json:"pipeline_id"`
		ProjectID  string `json:"project_id"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments for pipeline run: %w", err)
	}

	body, err := t.client.post(ctx, fmt.Sprintf("/v5/%s/api/pipelines/%s/run", args.ProjectID, args.PipelineID), map[string]any{})
	if err != nil {
		return "", err
	}
	return string(body), nil
}
