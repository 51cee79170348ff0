// Package settings holds the model configuration a user edits on the settings
// pages: a local model or a remote inference API, each with the same
// generation parameters. Values are immutable; every update goes through With
// and returns a new value.
package settings

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid value")
	ErrOutOfRange   = errors.New("value out of range")
	ErrInvalidMode  = errors.New("invalid mode")
)

// FieldError reports a rejected update to a single field.
type FieldError struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.Err }

type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeLocal, ModeRemote:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Field names accepted by With.
const (
	FieldModelPath   = "model_path"
	FieldAPIKey      = "api_key"
	FieldEndpoint    = "endpoint"
	FieldModel       = "model"
	FieldBatchSize   = "batch_size"
	FieldMaxTokens   = "max_tokens"
	FieldTemperature = "temperature"
	FieldTopP        = "top_p"
)

type bounds struct{ min, max float64 }

var ranges = map[string]bounds{
	FieldBatchSize:   {1, 512},
	FieldMaxTokens:   {1, 131072},
	FieldTemperature: {0, 2},
	FieldTopP:        {0, 1},
}

// GenerationParams are shared by both model configurations.
type GenerationParams struct {
	BatchSize   int     `json:"batch_size" yaml:"batch_size"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
	TopP        float64 `json:"top_p" yaml:"top_p"`
}

func DefaultGeneration() GenerationParams {
	return GenerationParams{
		BatchSize:   1,
		MaxTokens:   2048,
		Temperature: 0.7,
		TopP:        0.9,
	}
}

// With returns a copy of g with field set to the parsed value.
func (g GenerationParams) With(field, value string) (GenerationParams, error) {
	v := strings.TrimSpace(value)
	switch field {
	case FieldBatchSize, FieldMaxTokens:
		n, err := strconv.Atoi(v)
		if err != nil {
			return g, &FieldError{Field: field, Value: value, Reason: "must be an integer", Err: ErrInvalidValue}
		}
		if err := checkRange(field, float64(n)); err != nil {
			return g, err
		}
		if field == FieldBatchSize {
			g.BatchSize = n
		} else {
			g.MaxTokens = n
		}
	case FieldTemperature, FieldTopP:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return g, &FieldError{Field: field, Value: value, Reason: "must be a number", Err: ErrInvalidValue}
		}
		if err := checkRange(field, f); err != nil {
			return g, err
		}
		if field == FieldTemperature {
			g.Temperature = f
		} else {
			g.TopP = f
		}
	default:
		return g, &FieldError{Field: field, Value: value, Reason: "unknown field", Err: ErrUnknownField}
	}
	return g, nil
}

// Validate checks every parameter against its declared range.
func (g GenerationParams) Validate() error {
	checks := []struct {
		field string
		v     float64
	}{
		{FieldBatchSize, float64(g.BatchSize)},
		{FieldMaxTokens, float64(g.MaxTokens)},
		{FieldTemperature, g.Temperature},
		{FieldTopP, g.TopP},
	}
	for _, c := range checks {
		if err := checkRange(c.field, c.v); err != nil {
			return err
		}
	}
	return nil
}

func checkRange(field string, v float64) error {
	b := ranges[field]
	// written so NaN fails too
	if !(v >= b.min && v <= b.max) {
		return &FieldError{
			Field:  field,
			Value:  strconv.FormatFloat(v, 'g', -1, 64),
			Reason: fmt.Sprintf("must be between %g and %g", b.min, b.max),
			Err:    ErrOutOfRange,
		}
	}
	return nil
}

type LocalModel struct {
	ModelPath  string           `json:"model_path" yaml:"model_path"`
	Generation GenerationParams `json:"generation" yaml:"generation"`
}

func (l LocalModel) With(field, value string) (LocalModel, error) {
	if field == FieldModelPath {
		l.ModelPath = strings.TrimSpace(value)
		return l, nil
	}
	g, err := l.Generation.With(field, value)
	if err != nil {
		return l, err
	}
	l.Generation = g
	return l, nil
}

// RemoteAPI is the connection descriptor for a hosted inference endpoint.
type RemoteAPI struct {
	APIKey     string           `json:"api_key" yaml:"api_key"`
	Endpoint   string           `json:"endpoint" yaml:"endpoint"`
	Model      string           `json:"model" yaml:"model"`
	Generation GenerationParams `json:"generation" yaml:"generation"`
}

// With returns a copy of r with field updated. A masked api key, as returned
// by Masked, leaves the stored key untouched.
func (r RemoteAPI) With(field, value string) (RemoteAPI, error) {
	switch field {
	case FieldAPIKey:
		if IsMasked(value) {
			return r, nil
		}
		r.APIKey = strings.TrimSpace(value)
	case FieldEndpoint:
		r.Endpoint = strings.TrimSpace(value)
	case FieldModel:
		r.Model = strings.TrimSpace(value)
	default:
		g, err := r.Generation.With(field, value)
		if err != nil {
			return r, err
		}
		r.Generation = g
	}
	return r, nil
}

// Profile is everything on the settings pages for one user.
type Profile struct {
	Mode   Mode       `json:"mode" yaml:"mode"`
	Local  LocalModel `json:"local" yaml:"local"`
	Remote RemoteAPI  `json:"remote" yaml:"remote"`
}

func Defaults() Profile {
	return Profile{
		Mode:   ModeLocal,
		Local:  LocalModel{Generation: DefaultGeneration()},
		Remote: RemoteAPI{Model: DefaultRemoteModel, Generation: DefaultGeneration()},
	}
}

func (p Profile) WithMode(m Mode) Profile {
	p.Mode = m
	return p
}

func (p Profile) WithLocal(l LocalModel) Profile {
	p.Local = l
	return p
}

func (p Profile) WithRemote(r RemoteAPI) Profile {
	p.Remote = r
	return p
}

// Active returns the generation parameters of the selected mode.
func (p Profile) Active() GenerationParams {
	if p.Mode == ModeRemote {
		return p.Remote.Generation
	}
	return p.Local.Generation
}

func (p Profile) Validate() error {
	if _, err := ParseMode(string(p.Mode)); err != nil {
		return err
	}
	if err := p.Local.Generation.Validate(); err != nil {
		return fmt.Errorf("local: %w", err)
	}
	if err := p.Remote.Generation.Validate(); err != nil {
		return fmt.Errorf("remote: %w", err)
	}
	return nil
}

// Masked returns a copy safe to send to clients.
func (p Profile) Masked() Profile {
	p.Remote.APIKey = MaskSecret(p.Remote.APIKey)
	return p
}

// Apply runs With for every entry of updates in key order and returns the
// result only if all of them succeed.
func Apply[T interface{ With(string, string) (T, error) }](v T, updates map[string]string) (T, error) {
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	next := v
	for _, k := range keys {
		var err error
		next, err = next.With(k, updates[k])
		if err != nil {
			return v, err
		}
	}
	return next, nil
}
