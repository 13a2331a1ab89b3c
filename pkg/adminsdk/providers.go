package adminsdk

import (
	"context"
	"net/http"
)

func (a *APIClient) ListProviders(ctx context.Context, opts ListOptions) (*ProviderListResponse, error) {
	var out ProviderListResponse
	if err := a.do(ctx, http.MethodGet, withQuery("/providers/", opts.values()), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) GetProvider(ctx context.Context, id string) (*Provider, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var out Provider
	if err := a.do(ctx, http.MethodGet, "/providers/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) CreateProvider(ctx context.Context, req ProviderCreate) (*Provider, error) {
	var out Provider
	if err := a.do(ctx, http.MethodPost, "/providers/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) UpdateProvider(ctx context.Context, id string, req ProviderUpdate) (*Provider, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var out Provider
	if err := a.do(ctx, http.MethodPatch, "/providers/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) DeleteProvider(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return a.do(ctx, http.MethodDelete, "/providers/"+id, nil, nil)
}
