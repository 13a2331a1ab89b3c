package adminsdk_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/budadmin/pkg/adminsdk"
	"github.com/aussiebroadwan/budadmin/pkg/session"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// recordingServer answers every request with the canned body for its path
// and records what it saw.
func recordingServer(t *testing.T, responses map[string]string) (*adminsdk.APIClient, func() []recorded) {
	t.Helper()

	var mu sync.Mutex
	var seen []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		seen = append(seen, recorded{r.Method, r.URL.EscapedPath(), r.URL.RawQuery, string(body)})
		mu.Unlock()

		resp, ok := responses[r.Method+" "+r.URL.EscapedPath()]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not Found"}`))
			return
		}
		if resp == "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)

	sdk := adminsdk.NewSDKClient(srv.URL)
	mgr := session.NewManager(session.Config{Refresher: sdk})
	require.NoError(t, mgr.Login(t.Context(), mintToken(t, "u1", time.Now().Add(time.Hour)), "rt"))

	return sdk.WithSession(mgr), func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), seen...)
	}
}

func TestListLicensesQuery(t *testing.T) {
	t.Parallel()

	api, seen := recordingServer(t, map[string]string{
		"GET /licenses/": `{"licenses":[{"id":"` + licenseID + `","key":"mit","type_suitability":"MOST"}],"total":1,"page":2,"page_size":10}`,
	})

	out, err := api.ListLicenses(t.Context(), adminsdk.LicenseListOptions{
		ListOptions: adminsdk.ListOptions{Page: 2, PageSize: 10, Search: "mit"},
		Suitability: adminsdk.SuitabilityMost,
	})
	require.NoError(t, err)
	require.Equal(t, 1, out.Total)
	require.Equal(t, adminsdk.SuitabilityMost, out.Licenses[0].TypeSuitability)

	got := seen()
	require.Len(t, got, 1)
	require.Equal(t, "page=2&page_size=10&search=mit&suitability=MOST", got[0].Query)
}

func TestEngineEnvelopes(t *testing.T) {
	t.Parallel()

	engineID := "0b9d7c4e-91a2-4f6b-8a55-2c7d3e1f0a99"
	api, seen := recordingServer(t, map[string]string{
		"PUT /engine/" + engineID:              `{"engine":{"id":"` + engineID + `","name":"vllm"},"message":"ok","code":200,"object":"engine"}`,
		"GET /engine/parser-rules/" + engineID: `{"rules":[{"id":"r1","engine_id":"` + engineID + `","rule_type":"tool","match_type":"prefix","pattern":"llama","priority":10,"enabled":true}]}`,
	})

	name := "vllm"
	engine, err := api.UpdateEngine(t.Context(), engineID, adminsdk.EngineUpdate{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "vllm", engine.Name)

	rules, err := api.ListParserRules(t.Context(), engineID)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	require.Equal(t, "prefix", rules[0].MatchType)

	got := seen()
	require.JSONEq(t, `{"name":"vllm"}`, got[0].Body)
}

func TestModelDetailsPath(t *testing.T) {
	t.Parallel()

	api, seen := recordingServer(t, map[string]string{
		"GET /model/models/meta-llama/Llama-3-8B/details": `{"id":"d1","model_info_id":"m1","description":"8B instruct"}`,
	})

	details, err := api.GetModelDetails(t.Context(), "meta-llama/Llama-3-8B")
	require.NoError(t, err)
	require.Equal(t, "8B instruct", details.Description)
	require.Equal(t, "/model/models/meta-llama/Llama-3-8B/details", seen()[0].Path)
}

func TestDeleteAcceptsNoContent(t *testing.T) {
	t.Parallel()

	api, _ := recordingServer(t, map[string]string{
		"DELETE /providers/" + licenseID: "",
	})
	require.NoError(t, api.DeleteProvider(t.Context(), licenseID))
}

func TestDashboard(t *testing.T) {
	t.Parallel()

	page := func(key string, total int) string {
		b, _ := json.Marshal(map[string]any{key: []any{}, "total": total, "page": 1, "page_size": 1})
		return string(b)
	}
	api, seen := recordingServer(t, map[string]string{
		"GET /licenses/":           page("licenses", 12),
		"GET /model/":              page("models", 340),
		"GET /providers/":          page("providers", 25),
		"GET /engine/":             page("engines", 3),
		"GET /model/architectures": page("architectures", 41),

		"GET /model/get-compatible-models": `{"engine_name":"litellm","page":1,"limit":1,"total_record":210,"items":[]}`,
	})

	d, err := api.Dashboard(t.Context())
	require.NoError(t, err)
	require.Equal(t, &adminsdk.Dashboard{
		Licenses:         12,
		Models:           340,
		Providers:        25,
		Engines:          3,
		Architectures:    41,
		LiteLLMModels:    210,
		TensorZeroModels: 210,
	}, d)

	var compat []string
	got := seen()
	require.Len(t, got, 7)
	for _, r := range got {
		if r.Path == "/model/get-compatible-models" {
			compat = append(compat, r.Query)
			continue
		}
		require.Equal(t, "page=1&page_size=1", r.Query)
	}
	require.ElementsMatch(t, []string{
		"engine=litellm&limit=1&page=1",
		"engine=tensorzero&limit=1&page=1",
	}, compat)
}

func TestEngineCompatibility(t *testing.T) {
	t.Parallel()

	versionID := "5e2f1a7c-3b4d-4c8e-9f01-a2b3c4d5e6f7"
	compatID := "7c1d2e3f-4a5b-4c6d-8e9f-0a1b2c3d4e5f"
	compat := `{"compatibility":{"id":"` + compatID + `","engine_version_id":"` + versionID + `","architectures":{"LlamaForCausalLM":{}},"features":{"tool_calling":true}},"message":"ok","code":200,"object":"engine.compatibility"}`
	api, seen := recordingServer(t, map[string]string{
		"POST /engine/compatibility/":              compat,
		"PUT /engine/compatibility/" + compatID:    compat,
		"DELETE /engine/compatibility/" + compatID: "",
	})

	created, err := api.CreateEngineCompatibility(t.Context(), adminsdk.EngineCompatibilityCreate{
		EngineVersionID: versionID,
		Architectures:   map[string]any{"LlamaForCausalLM": map[string]any{}},
		Features:        map[string]any{"tool_calling": true},
	})
	require.NoError(t, err)
	require.Equal(t, compatID, created.ID)
	require.Equal(t, true, created.Features["tool_calling"])

	_, err = api.UpdateEngineCompatibility(t.Context(), compatID, adminsdk.EngineCompatibilityUpdate{
		Features: map[string]any{"tool_calling": false},
	})
	require.NoError(t, err)
	require.NoError(t, api.DeleteEngineCompatibility(t.Context(), compatID))

	_, err = api.CreateEngineCompatibility(t.Context(), adminsdk.EngineCompatibilityCreate{EngineVersionID: "v1"})
	require.ErrorIs(t, err, adminsdk.ErrInvalidID)

	got := seen()
	require.Len(t, got, 3)
	require.JSONEq(t, `{"engine_version_id":"`+versionID+`","architectures":{"LlamaForCausalLM":{}},"features":{"tool_calling":true}}`, got[0].Body)
	require.JSONEq(t, `{"features":{"tool_calling":false}}`, got[1].Body)
	require.Equal(t, http.MethodDelete, got[2].Method)
}

func TestCompatibilityLookups(t *testing.T) {
	t.Parallel()

	api, seen := recordingServer(t, map[string]string{
		"GET /engine/get-compatible-engines":    `{"message":"ok","code":200,"object":"engine.compatible","compatible_engines":[{"engine":"vllm","device_architecture":"CUDA","version":"0.8.5","container_image":"vllm/vllm-openai:v0.8.5"}]}`,
		"GET /engine/get-latest-engine-version": `{"version":"0.8.5","compatibilities":[{"id":"c1","engine_version_id":"v1","architectures":{},"features":{}}],"message":"ok","code":200,"object":"engine.version"}`,
		"GET /model/get-compatible-models":      `{"engine_name":"litellm","page":2,"limit":5,"total_record":12,"total_pages":3,"items":[{"id":"p1","name":"OpenAI","provider_type":"openai","models":[{"id":"m1","uri":"gpt-4o","provider_id":"p1","endpoints":["/v1/chat/completions"]}]}]}`,
	})

	engines, err := api.GetCompatibleEngines(t.Context(), adminsdk.CompatibleEnginesOptions{
		ModelArchitecture:  "LlamaForCausalLM",
		DeviceArchitecture: adminsdk.DeviceCUDA,
	})
	require.NoError(t, err)
	require.Len(t, engines, 1)
	require.Equal(t, "vllm/vllm-openai:v0.8.5", engines[0].ContainerImage)

	latest, err := api.GetLatestEngineVersion(t.Context(), "vllm", adminsdk.DeviceCUDA)
	require.NoError(t, err)
	require.Equal(t, "0.8.5", latest.Version)
	require.Len(t, latest.Compatibilities, 1)

	models, err := api.GetCompatibleModels(t.Context(), adminsdk.CompatibleModelsOptions{Engine: adminsdk.EngineLiteLLM, Page: 2, Limit: 5})
	require.NoError(t, err)
	require.Equal(t, 12, models.Count())
	require.Equal(t, "OpenAI", models.Items[0].Name)
	require.Equal(t, "gpt-4o", models.Items[0].Models[0].URI)

	got := seen()
	require.Equal(t, "device_architecture=CUDA&model_architecture=LlamaForCausalLM", got[0].Query)
	require.Equal(t, "device_architecture=CUDA&engine=vllm", got[1].Query)
	require.Equal(t, "engine=litellm&limit=5&page=2", got[2].Query)
}

func TestDashboardFailure(t *testing.T) {
	t.Parallel()

	api, _ := recordingServer(t, map[string]string{
		"GET /licenses/": `{"licenses":[],"total":1,"page":1,"page_size":1}`,
	})

	_, err := api.Dashboard(t.Context())
	require.True(t, adminsdk.IsNotFound(err))
}

func TestLoginAndRefreshTokens(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var req adminsdk.LoginRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Password != "hunter2" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail":"Incorrect username or password"}`))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"a1","refresh_token":"r1","token_type":"bearer"}`))
		case "/auth/refresh":
			// Refresh does not rotate the refresh token.
			_, _ = w.Write([]byte(`{"access_token":"a2","token_type":"bearer"}`))
		}
	}))
	t.Cleanup(srv.Close)

	ctx := t.Context()
	sdk := adminsdk.NewSDKClient(srv.URL)

	_, err := sdk.Login(ctx, "admin", "wrong")
	require.EqualError(t, err, "Incorrect username or password")

	tokens, err := sdk.Login(ctx, "admin", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "r1", tokens.RefreshToken)

	pair, err := sdk.RefreshTokens(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, session.Tokens{AccessToken: "a2", RefreshToken: "r1"}, pair)
}
