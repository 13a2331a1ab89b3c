package adminsdk

import (
	"context"
	"net/http"
)

func (a *APIClient) ListArchitectures(ctx context.Context, opts ListOptions) (*ArchitectureListResponse, error) {
	var out ArchitectureListResponse
	if err := a.do(ctx, http.MethodGet, withQuery("/model/architectures", opts.values()), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) GetArchitecture(ctx context.Context, id string) (*Architecture, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var out Architecture
	if err := a.do(ctx, http.MethodGet, "/model/architectures/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) CreateArchitecture(ctx context.Context, req ArchitectureCreate) (*Architecture, error) {
	var out Architecture
	if err := a.do(ctx, http.MethodPost, "/model/architectures", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) UpdateArchitecture(ctx context.Context, id string, req ArchitectureUpdate) (*Architecture, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var out Architecture
	if err := a.do(ctx, http.MethodPatch, "/model/architectures/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) DeleteArchitecture(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return a.do(ctx, http.MethodDelete, "/model/architectures/"+id, nil, nil)
}
