package adminsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ============================================================================
// Engines
// ============================================================================

// Engine endpoints wrap single objects in an envelope ({"engine": {...}}),
// the methods below return the inner value.

func (a *APIClient) ListEngines(ctx context.Context, opts ListOptions) (*EngineListResponse, error) {
	var out EngineListResponse
	if err := a.do(ctx, http.MethodGet, withQuery("/engine/", opts.values()), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) GetEngine(ctx context.Context, id string) (*Engine, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var out engineEnvelope
	if err := a.do(ctx, http.MethodGet, "/engine/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out.Engine, nil
}

func (a *APIClient) CreateEngine(ctx context.Context, req EngineCreate) (*Engine, error) {
	var out engineEnvelope
	if err := a.do(ctx, http.MethodPost, "/engine/", req, &out); err != nil {
		return nil, err
	}
	return &out.Engine, nil
}

func (a *APIClient) UpdateEngine(ctx context.Context, id string, req EngineUpdate) (*Engine, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var out engineEnvelope
	if err := a.do(ctx, http.MethodPut, "/engine/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out.Engine, nil
}

func (a *APIClient) DeleteEngine(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return a.do(ctx, http.MethodDelete, "/engine/"+id, nil, nil)
}

// ============================================================================
// Engine Versions
// ============================================================================

func (a *APIClient) ListEngineVersions(ctx context.Context, opts EngineVersionListOptions) (*EngineVersionListResponse, error) {
	q := opts.values()
	if opts.EngineID != "" {
		if err := checkID(opts.EngineID); err != nil {
			return nil, err
		}
		q.Set("engine_id", opts.EngineID)
	}

	var out EngineVersionListResponse
	if err := a.do(ctx, http.MethodGet, withQuery("/engine/version/", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIClient) GetEngineVersion(ctx context.Context, id string) (*EngineVersion, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var out engineVersionEnvelope
	if err := a.do(ctx, http.MethodGet, "/engine/version/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out.Version, nil
}

func (a *APIClient) CreateEngineVersion(ctx context.Context, req EngineVersionCreate) (*EngineVersion, error) {
	if err := checkID(req.EngineID); err != nil {
		return nil, err
	}

	var out engineVersionEnvelope
	if err := a.do(ctx, http.MethodPost, "/engine/version/", req, &out); err != nil {
		return nil, err
	}
	return &out.Version, nil
}

func (a *APIClient) UpdateEngineVersion(ctx context.Context, id string, req EngineVersionUpdate) (*EngineVersion, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var out engineVersionEnvelope
	if err := a.do(ctx, http.MethodPut, "/engine/version/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out.Version, nil
}

func (a *APIClient) DeleteEngineVersion(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return a.do(ctx, http.MethodDelete, "/engine/version/"+id, nil, nil)
}

// ============================================================================
// Engine Compatibility
// ============================================================================

func (a *APIClient) CreateEngineCompatibility(ctx context.Context, req EngineCompatibilityCreate) (*EngineCompatibility, error) {
	if err := checkID(req.EngineVersionID); err != nil {
		return nil, err
	}

	var out engineCompatibilityEnvelope
	if err := a.do(ctx, http.MethodPost, "/engine/compatibility/", req, &out); err != nil {
		return nil, err
	}
	return &out.Compatibility, nil
}

func (a *APIClient) UpdateEngineCompatibility(ctx context.Context, id string, req EngineCompatibilityUpdate) (*EngineCompatibility, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var out engineCompatibilityEnvelope
	if err := a.do(ctx, http.MethodPut, "/engine/compatibility/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out.Compatibility, nil
}

func (a *APIClient) DeleteEngineCompatibility(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return a.do(ctx, http.MethodDelete, "/engine/compatibility/"+id, nil, nil)
}

// GetCompatibleEngines lists the engine builds that can serve a model
// architecture.
func (a *APIClient) GetCompatibleEngines(ctx context.Context, opts CompatibleEnginesOptions) ([]CompatibleEngine, error) {
	q := url.Values{}
	q.Set("model_architecture", opts.ModelArchitecture)
	if opts.DeviceArchitecture != "" {
		q.Set("device_architecture", string(opts.DeviceArchitecture))
	}
	if opts.EngineVersion != "" {
		q.Set("engine_version", opts.EngineVersion)
	}
	if opts.Engine != "" {
		q.Set("engine", opts.Engine)
	}

	var out compatibleEnginesEnvelope
	if err := a.do(ctx, http.MethodGet, withQuery("/engine/get-compatible-engines", q), nil, &out); err != nil {
		return nil, err
	}
	return out.CompatibleEngines, nil
}

// GetLatestEngineVersion returns the newest version of engine built for
// device, with its compatibility records.
func (a *APIClient) GetLatestEngineVersion(ctx context.Context, engine string, device DeviceArchitecture) (*LatestEngineVersion, error) {
	q := url.Values{}
	q.Set("device_architecture", string(device))
	q.Set("engine", engine)

	var out LatestEngineVersion
	if err := a.do(ctx, http.MethodGet, withQuery("/engine/get-latest-engine-version", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Parser Rules
// ============================================================================

// ListParserRules returns the parser rules of one engine.
func (a *APIClient) ListParserRules(ctx context.Context, engineID string) ([]ParserRule, error) {
	if err := checkID(engineID); err != nil {
		return nil, err
	}

	var out parserRuleListEnvelope
	if err := a.do(ctx, http.MethodGet, "/engine/parser-rules/"+engineID, nil, &out); err != nil {
		return nil, err
	}
	return out.Rules, nil
}

func (a *APIClient) CreateParserRule(ctx context.Context, req ParserRuleCreate) (*ParserRule, error) {
	if err := checkID(req.EngineID); err != nil {
		return nil, err
	}

	var out parserRuleEnvelope
	if err := a.do(ctx, http.MethodPost, "/engine/parser-rules", req, &out); err != nil {
		return nil, err
	}
	return &out.Rule, nil
}

func (a *APIClient) UpdateParserRule(ctx context.Context, id string, req ParserRuleUpdate) (*ParserRule, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var out parserRuleEnvelope
	if err := a.do(ctx, http.MethodPut, "/engine/parser-rules/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out.Rule, nil
}

func (a *APIClient) DeleteParserRule(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return a.do(ctx, http.MethodDelete, "/engine/parser-rules/"+id, nil, nil)
}
