package adminsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

func (a *APIClient) ListModels(ctx context.Context, opts ModelListOptions) (*ModelListResponse, error) {
	q := opts.values()
	if opts.ProviderID != "" {
		if err := checkID(opts.ProviderID); err != nil {
			return nil, err
		}
		q.Set("provider_id", opts.ProviderID)
	}

	var out ModelListResponse
	if err := a.do(ctx, http.MethodGet, withQuery("/model/", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) GetModel(ctx context.Context, id string) (*Model, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var out Model
	if err := a.do(ctx, http.MethodGet, "/model/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) CreateModel(ctx context.Context, req ModelCreate) (*Model, error) {
	var out Model
	if err := a.do(ctx, http.MethodPost, "/model/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateModel patches only the fields present in req.
func (a *APIClient) UpdateModel(ctx context.Context, id string, req ModelUpdate) (*Model, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var out Model
	if err := a.do(ctx, http.MethodPatch, "/model/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) DeleteModel(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return a.do(ctx, http.MethodDelete, "/model/"+id, nil, nil)
}

// GetCompatibleModels lists the models an engine can serve, grouped by
// provider. Zero Page and Limit leave the server defaults.
func (a *APIClient) GetCompatibleModels(ctx context.Context, opts CompatibleModelsOptions) (*CompatibleModelsResponse, error) {
	q := url.Values{}
	if opts.Engine != "" {
		q.Set("engine", opts.Engine)
	}
	if opts.EngineVersion != "" {
		q.Set("engine_version", opts.EngineVersion)
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}

	var out CompatibleModelsResponse
	if err := a.do(ctx, http.MethodGet, withQuery("/model/get-compatible-models", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetModelDetails fetches details by model URI. URIs contain slashes
// ("meta-llama/Llama-3-8B") which are kept as path separators.
func (a *APIClient) GetModelDetails(ctx context.Context, uri string) (*ModelDetails, error) {
	var out ModelDetails
	if err := a.do(ctx, http.MethodGet, "/model/models/"+escapeURI(uri)+"/details", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateModelDetails patches the details attached to the model with id.
func (a *APIClient) UpdateModelDetails(ctx context.Context, id string, details map[string]any) (*ModelDetails, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var out ModelDetails
	if err := a.do(ctx, http.MethodPatch, "/model/"+id+"/details", details, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func escapeURI(uri string) string {
	segments := strings.Split(uri, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
