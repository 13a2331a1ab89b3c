package adminsdk

import (
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

// ============================================================================
// Auth Types
// ============================================================================

// TokenResponse is returned by POST /auth/login and POST /auth/refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserCreate creates the first admin (POST /auth/setup) or a new user.
type UserCreate struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

// UserUpdate is a partial user update. Nil fields are left unchanged.
type UserUpdate struct {
	Email    *string `json:"email,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	IsAdmin  *bool   `json:"is_admin,omitempty"`
}

// User is a console account.
type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	IsActive   bool      `json:"is_active"`
	IsAdmin    bool      `json:"is_admin"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// PasswordChange is the body of POST /auth/change-password.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ============================================================================
// Listing
// ============================================================================

// ListOptions are the pagination and search parameters every list endpoint
// accepts. Zero values are omitted from the query.
type ListOptions struct {
	Page     int
	PageSize int
	Search   string
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(o.PageSize))
	}
	if o.Search != "" {
		v.Set("search", o.Search)
	}
	return v
}

// Page is the pagination envelope shared by list responses.
type Page struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// ============================================================================
// License Types
// ============================================================================

// Suitability grades how permissive a license is for commercial use.
type Suitability string

const (
	SuitabilityMost  Suitability = "MOST"
	SuitabilityGood  Suitability = "GOOD"
	SuitabilityLow   Suitability = "LOW"
	SuitabilityWorst Suitability = "WORST"
)

type FAQ struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Reason   []string `json:"reason,omitempty"`
	Impact   string   `json:"impact,omitempty"`
}

type License struct {
	ID              string      `json:"id"`
	Key             string      `json:"key"`
	Name            string      `json:"name"`
	Type            string      `json:"type"`
	TypeDescription string      `json:"type_description"`
	TypeSuitability Suitability `json:"type_suitability"`
	FAQs            []FAQ       `json:"faqs"`
	CreatedAt       *time.Time  `json:"created_at,omitempty"`
	UpdatedAt       *time.Time  `json:"updated_at,omitempty"`
}

type LicenseCreate struct {
	Key             string      `json:"key"`
	Name            string      `json:"name"`
	Type            string      `json:"type"`
	TypeDescription string      `json:"type_description"`
	TypeSuitability Suitability `json:"type_suitability"`
	FAQs            []FAQ       `json:"faqs"`
}

type LicenseUpdate struct {
	Key             *string      `json:"key,omitempty"`
	Name            *string      `json:"name,omitempty"`
	Type            *string      `json:"type,omitempty"`
	TypeDescription *string      `json:"type_description,omitempty"`
	TypeSuitability *Suitability `json:"type_suitability,omitempty"`
	FAQs            []FAQ        `json:"faqs,omitempty"`
}

type LicenseListOptions struct {
	ListOptions
	LicenseType string
	Suitability Suitability
}

type LicenseListResponse struct {
	Page
	Licenses []License `json:"licenses"`
}

// LicenseExtractRequest asks the server to extract license terms from a URL
// or raw text. SourceType is "url" or "text".
type LicenseExtractRequest struct {
	SourceType string `json:"source_type"`
	Source     string `json:"source"`
	Key        string `json:"key,omitempty"`
}

// ============================================================================
// Provider Types
// ============================================================================

type CredentialField struct {
	Field       string   `json:"field"`
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Order       int      `json:"order"`
	Options     []string `json:"options,omitempty"`
	Default     string   `json:"default,omitempty"`
}

type Provider struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	ProviderType string            `json:"provider_type"`
	Icon         string            `json:"icon"`
	Description  string            `json:"description"`
	Credentials  []CredentialField `json:"credentials"`
	ModelCount   int               `json:"model_count,omitempty"`
	CreatedAt    *time.Time        `json:"created_at,omitempty"`
	ModifiedAt   *time.Time        `json:"modified_at,omitempty"`
}

type ProviderCreate struct {
	Name         string            `json:"name"`
	ProviderType string            `json:"provider_type"`
	Icon         string            `json:"icon"`
	Description  string            `json:"description"`
	Credentials  []CredentialField `json:"credentials"`
}

type ProviderUpdate struct {
	Name        *string           `json:"name,omitempty"`
	Icon        *string           `json:"icon,omitempty"`
	Description *string           `json:"description,omitempty"`
	Credentials []CredentialField `json:"credentials,omitempty"`
}

type ProviderListResponse struct {
	Page
	Providers []Provider `json:"providers"`
}

// ============================================================================
// Architecture Types
// ============================================================================

type Architecture struct {
	ID                          string    `json:"id"`
	ClassName                   string    `json:"class_name"`
	ArchitectureFamily          string    `json:"architecture_family"`
	ToolCallingParserType       *string   `json:"tool_calling_parser_type,omitempty"`
	ReasoningParserType         *string   `json:"reasoning_parser_type,omitempty"`
	SupportsLoRA                bool      `json:"supports_lora"`
	SupportsPipelineParallelism bool      `json:"supports_pipeline_parallelism"`
	ModelCount                  int       `json:"model_count,omitempty"`
	CreatedAt                   time.Time `json:"created_at"`
	ModifiedAt                  time.Time `json:"modified_at"`
}

type ArchitectureCreate struct {
	ClassName                   string  `json:"class_name"`
	ArchitectureFamily          string  `json:"architecture_family"`
	ToolCallingParserType       *string `json:"tool_calling_parser_type,omitempty"`
	ReasoningParserType         *string `json:"reasoning_parser_type,omitempty"`
	SupportsLoRA                bool    `json:"supports_lora"`
	SupportsPipelineParallelism bool    `json:"supports_pipeline_parallelism"`
}

type ArchitectureUpdate struct {
	ArchitectureFamily          *string `json:"architecture_family,omitempty"`
	ToolCallingParserType       *string `json:"tool_calling_parser_type,omitempty"`
	ReasoningParserType         *string `json:"reasoning_parser_type,omitempty"`
	SupportsLoRA                *bool   `json:"supports_lora,omitempty"`
	SupportsPipelineParallelism *bool   `json:"supports_pipeline_parallelism,omitempty"`
}

type ArchitectureListResponse struct {
	Page
	Architectures []Architecture `json:"architectures"`
}

// ============================================================================
// Model Types
// ============================================================================

type Modality string

const (
	ModalityTextInput   Modality = "text_input"
	ModalityTextOutput  Modality = "text_output"
	ModalityImageInput  Modality = "image_input"
	ModalityImageOutput Modality = "image_output"
	ModalityAudioInput  Modality = "audio_input"
	ModalityAudioOutput Modality = "audio_output"
)

// Model is a catalog entry. Cost, limit and feature blocks are open-ended on
// the server so they are kept as maps.
type Model struct {
	ID                        string             `json:"id"`
	URI                       string             `json:"uri"`
	Modality                  []Modality         `json:"modality"`
	ProviderID                string             `json:"provider_id"`
	ProviderName              string             `json:"provider_name,omitempty"`
	ProviderType              string             `json:"provider_type,omitempty"`
	ModelArchitectureClassID  string             `json:"model_architecture_class_id,omitempty"`
	ArchitectureClass         *Architecture      `json:"architecture_class,omitempty"`
	InputCost                 map[string]float64 `json:"input_cost,omitempty"`
	OutputCost                map[string]float64 `json:"output_cost,omitempty"`
	CacheCost                 map[string]float64 `json:"cache_cost,omitempty"`
	SearchContextCostPerQuery map[string]any     `json:"search_context_cost_per_query,omitempty"`
	Tokens                    map[string]float64 `json:"tokens,omitempty"`
	RateLimits                map[string]float64 `json:"rate_limits,omitempty"`
	MediaLimits               map[string]float64 `json:"media_limits,omitempty"`
	Features                  map[string]bool    `json:"features,omitempty"`
	Endpoints                 []string           `json:"endpoints"`
	DeprecationDate           string             `json:"deprecation_date,omitempty"`
	License                   *License           `json:"license,omitempty"`
	ChatTemplate              string             `json:"chat_template,omitempty"`
	ToolCallingParserType     *string            `json:"tool_calling_parser_type,omitempty"`
	ReasoningParserType       *string            `json:"reasoning_parser_type,omitempty"`
	CreatedAt                 *time.Time         `json:"created_at,omitempty"`
	ModifiedAt                *time.Time         `json:"modified_at,omitempty"`
}

type ModelCreate struct {
	URI                       string             `json:"uri"`
	Modality                  []Modality         `json:"modality"`
	ProviderID                string             `json:"provider_id"`
	ModelArchitectureClassID  string             `json:"model_architecture_class_id,omitempty"`
	InputCost                 map[string]float64 `json:"input_cost,omitempty"`
	OutputCost                map[string]float64 `json:"output_cost,omitempty"`
	CacheCost                 map[string]float64 `json:"cache_cost,omitempty"`
	SearchContextCostPerQuery map[string]any     `json:"search_context_cost_per_query,omitempty"`
	Tokens                    map[string]float64 `json:"tokens,omitempty"`
	RateLimits                map[string]float64 `json:"rate_limits,omitempty"`
	MediaLimits               map[string]float64 `json:"media_limits,omitempty"`
	Features                  map[string]bool    `json:"features,omitempty"`
	Endpoints                 []string           `json:"endpoints"`
	DeprecationDate           string             `json:"deprecation_date,omitempty"`
	LicenseID                 string             `json:"license_id,omitempty"`
	ChatTemplate              string             `json:"chat_template,omitempty"`
	ToolCallingParserType     *string            `json:"tool_calling_parser_type,omitempty"`
	ReasoningParserType       *string            `json:"reasoning_parser_type,omitempty"`
}

// ModelUpdate is sent as a JSON merge patch. Only set fields are sent.
type ModelUpdate map[string]any

type ModelListOptions struct {
	ListOptions
	ProviderID string
}

type ModelListResponse struct {
	Page
	Models []Model `json:"models"`
}

// CompatibleModelsOptions filter GetCompatibleModels. An empty Engine lists
// every model.
type CompatibleModelsOptions struct {
	Engine        string
	EngineVersion string
	Page          int
	Limit         int
}

// CompatibleProvider groups the compatible models of one provider.
type CompatibleProvider struct {
	Provider
	Models []Model `json:"models"`
}

// CompatibleModelsResponse is paginated with page/limit rather than
// page/page_size.
type CompatibleModelsResponse struct {
	EngineName    string               `json:"engine_name"`
	EngineVersion string               `json:"engine_version,omitempty"`
	Page          int                  `json:"page"`
	Limit         int                  `json:"limit"`
	TotalRecord   int                  `json:"total_record"`
	Total         int                  `json:"total,omitempty"`
	TotalPages    int                  `json:"total_pages,omitempty"`
	Items         []CompatibleProvider `json:"items"`
}

// Count is the number of matching models, whichever total the server set.
func (r *CompatibleModelsResponse) Count() int {
	if r.TotalRecord > 0 {
		return r.TotalRecord
	}
	return r.Total
}

// ModelDetails is the long-form description attached to a model.
type ModelDetails struct {
	ID                    string          `json:"id"`
	ModelInfoID           string          `json:"model_info_id"`
	Description           string          `json:"description,omitempty"`
	Advantages            []string        `json:"advantages,omitempty"`
	Disadvantages         []string        `json:"disadvantages,omitempty"`
	UseCases              []string        `json:"use_cases,omitempty"`
	Evaluations           []Evaluation    `json:"evaluations,omitempty"`
	Languages             []string        `json:"languages,omitempty"`
	Tags                  []string        `json:"tags,omitempty"`
	Tasks                 []string        `json:"tasks,omitempty"`
	Papers                []Paper         `json:"papers,omitempty"`
	GithubURL             string          `json:"github_url,omitempty"`
	WebsiteURL            string          `json:"website_url,omitempty"`
	LogoURL               string          `json:"logo_url,omitempty"`
	Architecture          json.RawMessage `json:"architecture,omitempty"`
	ModelTree             json.RawMessage `json:"model_tree,omitempty"`
	ToolCallingParserType *string         `json:"tool_calling_parser_type,omitempty"`
}

type Evaluation struct {
	Benchmark string  `json:"benchmark"`
	Score     float64 `json:"score"`
	Date      string  `json:"date,omitempty"`
}

type Paper struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Year  int    `json:"year,omitempty"`
}

// ============================================================================
// Engine Types
// ============================================================================

type DeviceArchitecture string

const (
	DeviceCUDA DeviceArchitecture = "CUDA"
	DeviceCPU  DeviceArchitecture = "CPU"
	DeviceROCM DeviceArchitecture = "ROCM"
	DeviceHPU  DeviceArchitecture = "HPU"
)

type Engine struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Versions  []EngineVersion `json:"versions,omitempty"`
	CreatedAt *time.Time      `json:"created_at,omitempty"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

type EngineCreate struct {
	Name string `json:"name"`
}

type EngineUpdate struct {
	Name *string `json:"name,omitempty"`
}

type EngineVersion struct {
	ID                 string             `json:"id"`
	EngineID           string             `json:"engine_id"`
	Version            string             `json:"version"`
	ContainerImage     string             `json:"container_image"`
	DeviceArchitecture DeviceArchitecture `json:"device_architecture"`
	CreatedAt          *time.Time         `json:"created_at,omitempty"`
	UpdatedAt          *time.Time         `json:"updated_at,omitempty"`
}

type EngineVersionCreate struct {
	EngineID           string             `json:"engine_id"`
	Version            string             `json:"version"`
	ContainerImage     string             `json:"container_image"`
	DeviceArchitecture DeviceArchitecture `json:"device_architecture"`
}

type EngineVersionUpdate struct {
	Version            *string             `json:"version,omitempty"`
	ContainerImage     *string             `json:"container_image,omitempty"`
	DeviceArchitecture *DeviceArchitecture `json:"device_architecture,omitempty"`
}

// Engine names accepted by the compatible-models endpoint.
const (
	EngineLiteLLM    = "litellm"
	EngineTensorZero = "tensorzero"
)

// EngineCompatibility records the model architectures and features an engine
// version supports. Both blocks are free-form on the server.
type EngineCompatibility struct {
	ID              string         `json:"id"`
	EngineVersionID string         `json:"engine_version_id"`
	Architectures   map[string]any `json:"architectures"`
	Features        map[string]any `json:"features"`
	EngineVersion   *EngineVersion `json:"engine_version,omitempty"`
	CreatedAt       *time.Time     `json:"created_at,omitempty"`
	UpdatedAt       *time.Time     `json:"updated_at,omitempty"`
}

type EngineCompatibilityCreate struct {
	EngineVersionID string         `json:"engine_version_id"`
	Architectures   map[string]any `json:"architectures"`
	Features        map[string]any `json:"features"`
}

type EngineCompatibilityUpdate struct {
	Architectures map[string]any `json:"architectures,omitempty"`
	Features      map[string]any `json:"features,omitempty"`
}

// CompatibleEngine is an engine build able to serve a model architecture.
type CompatibleEngine struct {
	Engine                string             `json:"engine"`
	DeviceArchitecture    DeviceArchitecture `json:"device_architecture"`
	Version               string             `json:"version"`
	ContainerImage        string             `json:"container_image"`
	EngineVersionID       string             `json:"engine_version_id,omitempty"`
	EngineID              string             `json:"engine_id,omitempty"`
	ToolCallingParserType *string            `json:"tool_calling_parser_type,omitempty"`
	ReasoningParserType   *string            `json:"reasoning_parser_type,omitempty"`
	ArchitectureFamily    *string            `json:"architecture_family,omitempty"`
	ChatTemplate          *string            `json:"chat_template,omitempty"`
	ParserSource          *string            `json:"parser_source,omitempty"`
	ParserNotes           *string            `json:"parser_notes,omitempty"`
}

// CompatibleEnginesOptions filter GetCompatibleEngines. ModelArchitecture is
// required by the server, the rest are optional.
type CompatibleEnginesOptions struct {
	ModelArchitecture  string
	DeviceArchitecture DeviceArchitecture
	EngineVersion      string
	Engine             string
}

type LatestEngineVersion struct {
	Version         string                `json:"version"`
	Compatibilities []EngineCompatibility `json:"compatibilities"`
}

// ParserRule maps model names to a tool-calling or reasoning parser.
type ParserRule struct {
	ID           string  `json:"id"`
	EngineID     string  `json:"engine_id"`
	RuleType     string  `json:"rule_type"`
	ParserType   *string `json:"parser_type"`
	MatchType    string  `json:"match_type"`
	Pattern      string  `json:"pattern"`
	Priority     int     `json:"priority"`
	Enabled      bool    `json:"enabled"`
	Notes        *string `json:"notes,omitempty"`
	ChatTemplate *string `json:"chat_template,omitempty"`
}

type ParserRuleCreate struct {
	EngineID     string  `json:"engine_id"`
	RuleType     string  `json:"rule_type,omitempty"`
	ParserType   *string `json:"parser_type,omitempty"`
	MatchType    string  `json:"match_type"`
	Pattern      string  `json:"pattern"`
	Priority     *int    `json:"priority,omitempty"`
	Enabled      *bool   `json:"enabled,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	ChatTemplate *string `json:"chat_template,omitempty"`
}

type EngineListResponse struct {
	Page
	Engines []Engine `json:"engines"`
}

type engineEnvelope struct {
	Engine Engine `json:"engine"`
}

type EngineVersionListResponse struct {
	Page
	Versions []EngineVersion `json:"versions"`
}

type engineVersionEnvelope struct {
	Version EngineVersion `json:"version"`
}

type engineCompatibilityEnvelope struct {
	Compatibility EngineCompatibility `json:"compatibility"`
}

type compatibleEnginesEnvelope struct {
	CompatibleEngines []CompatibleEngine `json:"compatible_engines"`
}

type parserRuleListEnvelope struct {
	Rules []ParserRule `json:"rules"`
}

type parserRuleEnvelope struct {
	Rule ParserRule `json:"rule"`
}

// ============================================================================
// Dashboard
// ============================================================================

// Dashboard holds catalog totals.
type Dashboard struct {
	Licenses      int `json:"licenses"`
	Models        int `json:"models"`
	Providers     int `json:"providers"`
	Engines       int `json:"engines"`
	Architectures int `json:"architectures"`

	// Models servable per engine
	LiteLLMModels    int `json:"litellm_models"`
	TensorZeroModels int `json:"tensorzero_models"`
}

type ParserRuleUpdate struct {
	RuleType     *string `json:"rule_type,omitempty"`
	ParserType   *string `json:"parser_type,omitempty"`
	MatchType    *string `json:"match_type,omitempty"`
	Pattern      *string `json:"pattern,omitempty"`
	Priority     *int    `json:"priority,omitempty"`
	Enabled      *bool   `json:"enabled,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	ChatTemplate *string `json:"chat_template,omitempty"`
}

type EngineVersionListOptions struct {
	ListOptions
	EngineID string
}
