package supernova

import "encoding/json"

// DesignSystem represents a design system as returned by the design systems endpoint.
type DesignSystem struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspaceId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Version represents a single version of a design system. The writable version
// is the one with IsReadonly set to false; there is at most one per design system.
type Version struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Version    string `json:"version"`
	IsReadonly bool   `json:"isReadonly"`
}

// VersionRef identifies a design system version on the remote service.
type VersionRef struct {
	DesignSystemID string `json:"designSystemId"`
	VersionID      string `json:"versionId"`
}

// Brand is a scoping dimension of the token data. ID is the persistent identifier
// that survives across versions, IDInVersion is scoped to a single version.
// Both are accepted wherever a brand is selected.
type Brand struct {
	ID          string `json:"id"`
	IDInVersion string `json:"idInVersion"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Matches reports whether id refers to this brand by either of its identifiers.
func (b Brand) Matches(id string) bool {
	return id != "" && (b.ID == id || b.IDInVersion == id)
}

// Theme is a set of value overrides layered on top of a brand's base token values.
type Theme struct {
	ID          string          `json:"id"`
	IDInVersion string          `json:"idInVersion"`
	BrandID     string          `json:"brandId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Overrides   []TokenOverride `json:"overriddenTokens"`
}

// Matches reports whether id refers to this theme by either of its identifiers.
func (t Theme) Matches(id string) bool {
	return id != "" && (t.ID == id || t.IDInVersion == id)
}

// TokenOverride replaces the value of a single token when its theme is applied.
type TokenOverride struct {
	TokenID string          `json:"tokenId"`
	Value   json.RawMessage `json:"value"`
}

// TokenType enumerates the token categories the service knows about.
type TokenType string

// Token types in the order exporters usually emit them.
const (
	TokenTypeColor         TokenType = "Color"
	TokenTypeDimension     TokenType = "Dimension"
	TokenTypeSize          TokenType = "Size"
	TokenTypeSpace         TokenType = "Space"
	TokenTypeBorderRadius  TokenType = "BorderRadius"
	TokenTypeBorderWidth   TokenType = "BorderWidth"
	TokenTypeOpacity       TokenType = "Opacity"
	TokenTypeFontSize      TokenType = "FontSize"
	TokenTypeFontFamily    TokenType = "FontFamily"
	TokenTypeFontWeight    TokenType = "FontWeight"
	TokenTypeLineHeight    TokenType = "LineHeight"
	TokenTypeLetterSpacing TokenType = "LetterSpacing"
	TokenTypeDuration      TokenType = "Duration"
	TokenTypeZIndex        TokenType = "ZIndex"
	TokenTypeString        TokenType = "String"
	TokenTypeShadow        TokenType = "Shadow"
)

// TokenTypes lists every known token type in a stable order.
var TokenTypes = []TokenType{
	TokenTypeColor,
	TokenTypeDimension,
	TokenTypeSize,
	TokenTypeSpace,
	TokenTypeBorderRadius,
	TokenTypeBorderWidth,
	TokenTypeOpacity,
	TokenTypeFontSize,
	TokenTypeFontFamily,
	TokenTypeFontWeight,
	TokenTypeLineHeight,
	TokenTypeLetterSpacing,
	TokenTypeDuration,
	TokenTypeZIndex,
	TokenTypeString,
	TokenTypeShadow,
}

// Token is a single design token. Value is kept in its wire form because its shape
// depends on TokenType; see TokenValue for the decoded view.
type Token struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	TokenType     TokenType       `json:"tokenType"`
	ParentGroupID string          `json:"parentGroupId,omitempty"`
	BrandID       string          `json:"brandId"`
	Value         json.RawMessage `json:"value"`
}

// TokenValue is the decoded form of a token value. Exactly one of the groups of
// fields is populated depending on the token type; Reference wins over everything.
type TokenValue struct {
	Reference string   `json:"referencedTokenId,omitempty"`
	Color     *Color   `json:"color,omitempty"`
	Measure   *float64 `json:"measure,omitempty"`
	Unit      string   `json:"unit,omitempty"`
	Text      *string  `json:"text,omitempty"`
	Number    *float64 `json:"number,omitempty"`
}

// Decode parses the raw token value. A bare JSON string or number is accepted as
// a shorthand for Text and Number respectively.
func (t Token) Decode() (TokenValue, error) {
	var v TokenValue
	if len(t.Value) == 0 {
		return v, nil
	}
	switch t.Value[0] {
	case '"':
		var s string
		if err := json.Unmarshal(t.Value, &s); err != nil {
			return v, err
		}
		v.Text = &s
		return v, nil
	case '{':
		err := json.Unmarshal(t.Value, &v)
		return v, err
	default:
		var n float64
		if err := json.Unmarshal(t.Value, &n); err != nil {
			return v, err
		}
		v.Number = &n
		return v, nil
	}
}

// Color represents an RGBA color with float values ranging from 0 to 1.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// TokenGroup is a node of the token tree. Groups nest through ParentGroupID and
// list their direct children in ChildrenIDs.
type TokenGroup struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	TokenType     TokenType `json:"tokenType"`
	ParentGroupID string    `json:"parentGroupId,omitempty"`
	BrandID       string    `json:"brandId"`
	IsRoot        bool      `json:"isRoot"`
	ChildrenIDs   []string  `json:"childrenIds,omitempty"`
}

// DocumentationEnvironment selects which documentation site a publish targets.
type DocumentationEnvironment string

// Documentation environments.
const (
	DocumentationLive    DocumentationEnvironment = "Live"
	DocumentationPreview DocumentationEnvironment = "Preview"
)

// PublishStatus is the state of a documentation publish job.
type PublishStatus string

// Publish job states.
const (
	PublishQueued     PublishStatus = "Queued"
	PublishInProgress PublishStatus = "InProgress"
	PublishSuccess    PublishStatus = "Success"
	PublishFailure    PublishStatus = "Failure"
	PublishTimeout    PublishStatus = "Timeout"
)

// Finished reports whether the status is terminal.
func (s PublishStatus) Finished() bool {
	return s == PublishSuccess || s == PublishFailure || s == PublishTimeout
}

// PublishJob is the response of the documentation publish and job endpoints.
type PublishJob struct {
	ID      string        `json:"id"`
	Status  PublishStatus `json:"status"`
	Message string        `json:"message,omitempty"`
}
