package adminsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ListLicenses returns a page of licenses.
func (a *APIClient) ListLicenses(ctx context.Context, opts LicenseListOptions) (*LicenseListResponse, error) {
	q := opts.values()
	if opts.LicenseType != "" {
		q.Set("license_type", opts.LicenseType)
	}
	if opts.Suitability != "" {
		q.Set("suitability", string(opts.Suitability))
	}

	var out LicenseListResponse
	if err := a.do(ctx, http.MethodGet, withQuery("/licenses/", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) GetLicense(ctx context.Context, id string) (*License, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var out License
	if err := a.do(ctx, http.MethodGet, "/licenses/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLicenseByKey looks a license up by its SPDX-style key, e.g. "apache-2.0".
func (a *APIClient) GetLicenseByKey(ctx context.Context, key string) (*License, error) {
	var out License
	if err := a.do(ctx, http.MethodGet, "/licenses/key/"+url.PathEscape(key), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) CreateLicense(ctx context.Context, req LicenseCreate) (*License, error) {
	var out License
	if err := a.do(ctx, http.MethodPost, "/licenses/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) UpdateLicense(ctx context.Context, id string, req LicenseUpdate) (*License, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var out License
	if err := a.do(ctx, http.MethodPatch, "/licenses/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) DeleteLicense(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return a.do(ctx, http.MethodDelete, "/licenses/"+id, nil, nil)
}

// ExtractLicense asks the API to read license terms from a URL or text
// without saving them.
func (a *APIClient) ExtractLicense(ctx context.Context, req LicenseExtractRequest) (*License, error) {
	var out License
	if err := a.do(ctx, http.MethodPost, "/licenses/extract", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExtractAndCreateLicense is ExtractLicense followed by a save.
func (a *APIClient) ExtractAndCreateLicense(ctx context.Context, req LicenseExtractRequest) (*License, error) {
	var out License
	if err := a.do(ctx, http.MethodPost, "/licenses/extract-and-create", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
