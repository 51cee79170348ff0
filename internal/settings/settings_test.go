package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	p := Defaults()

	assert.Equal(t, ModeLocal, p.Mode)
	assert.Equal(t, GenerationParams{BatchSize: 1, MaxTokens: 2048, Temperature: 0.7, TopP: 0.9}, p.Local.Generation)
	assert.Equal(t, p.Local.Generation, p.Remote.Generation)
	assert.Equal(t, DefaultRemoteModel, p.Remote.Model)
	assert.NoError(t, p.Validate())
}

func TestGenerationParams_With(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   string
		want    func(GenerationParams) bool
		wantErr error
	}{
		{name: "batch size", field: FieldBatchSize, value: "8", want: func(g GenerationParams) bool { return g.BatchSize == 8 }},
		{name: "max tokens trimmed", field: FieldMaxTokens, value: " 4096 ", want: func(g GenerationParams) bool { return g.MaxTokens == 4096 }},
		{name: "temperature upper bound", field: FieldTemperature, value: "2", want: func(g GenerationParams) bool { return g.Temperature == 2 }},
		{name: "top p lower bound", field: FieldTopP, value: "0", want: func(g GenerationParams) bool { return g.TopP == 0 }},
		{name: "temperature too high", field: FieldTemperature, value: "2.1", wantErr: ErrOutOfRange},
		{name: "negative temperature", field: FieldTemperature, value: "-0.1", wantErr: ErrOutOfRange},
		{name: "top p too high", field: FieldTopP, value: "1.5", wantErr: ErrOutOfRange},
		{name: "top p NaN", field: FieldTopP, value: "NaN", wantErr: ErrOutOfRange},
		{name: "batch size zero", field: FieldBatchSize, value: "0", wantErr: ErrOutOfRange},
		{name: "max tokens too large", field: FieldMaxTokens, value: "131073", wantErr: ErrOutOfRange},
		{name: "batch size not a number", field: FieldBatchSize, value: "many", wantErr: ErrInvalidValue},
		{name: "batch size fractional", field: FieldBatchSize, value: "1.5", wantErr: ErrInvalidValue},
		{name: "unknown field", field: "seed", value: "1", wantErr: ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := DefaultGeneration()

			got, err := orig.With(tt.field, tt.value)
			assert.Equal(t, DefaultGeneration(), orig, "receiver must not change")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				var fe *FieldError
				require.True(t, errors.As(err, &fe))
				assert.Equal(t, tt.field, fe.Field)
				assert.Equal(t, orig, got)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want(got))
		})
	}
}

func TestRemoteAPI_WithIgnoresMaskedKey(t *testing.T) {
	r := RemoteAPI{APIKey: "sk-secret-1234"}

	masked := MaskSecret(r.APIKey)
	got, err := r.With(FieldAPIKey, masked)
	require.NoError(t, err)
	assert.Equal(t, "sk-secret-1234", got.APIKey)

	got, err = r.With(FieldAPIKey, "sk-new-9999")
	require.NoError(t, err)
	assert.Equal(t, "sk-new-9999", got.APIKey)
	assert.Equal(t, "sk-secret-1234", r.APIKey)
}

func TestApply(t *testing.T) {
	l := Defaults().Local

	got, err := Apply(l, map[string]string{
		FieldModelPath:   "llama.gguf",
		FieldTemperature: "0.2",
		FieldBatchSize:   "4",
	})
	require.NoError(t, err)
	assert.Equal(t, "llama.gguf", got.ModelPath)
	assert.Equal(t, 0.2, got.Generation.Temperature)
	assert.Equal(t, 4, got.Generation.BatchSize)

	got, err = Apply(l, map[string]string{
		FieldModelPath: "other.gguf",
		FieldTopP:      "3",
	})
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, l, got, "failed update leaves the value unchanged")
}

func TestProfile_Masked(t *testing.T) {
	p := Defaults()
	p.Remote.APIKey = "abcdefgh"

	m := p.Masked()
	assert.Equal(t, "••••••••efgh", m.Remote.APIKey)
	assert.Equal(t, "abcdefgh", p.Remote.APIKey)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret(""))
	assert.Equal(t, "••••••••", MaskSecret("abcd"))
	assert.Equal(t, "••••••••2345", MaskSecret("sk-12345"))
	assert.True(t, IsMasked(MaskSecret("sk-12345")))
	assert.False(t, IsMasked("sk-12345"))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Remote")
	require.NoError(t, err)
	assert.Equal(t, ModeRemote, m)

	_, err = ParseMode("cloud")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestProfile_Active(t *testing.T) {
	p := Defaults()
	p.Remote.Generation.MaxTokens = 10

	assert.Equal(t, 2048, p.Active().MaxTokens)
	assert.Equal(t, 10, p.WithMode(ModeRemote).Active().MaxTokens)
}

func TestCheckConnection(t *testing.T) {
	valid := RemoteAPI{APIKey: "sk-1", Endpoint: "https://api.example.com/v1", Model: DefaultRemoteModel}

	tests := []struct {
		name   string
		mutate func(*RemoteAPI)
		reason string
	}{
		{name: "ok", mutate: func(*RemoteAPI) {}},
		{name: "missing key", mutate: func(r *RemoteAPI) { r.APIKey = "" }, reason: "API key"},
		{name: "relative endpoint", mutate: func(r *RemoteAPI) { r.Endpoint = "api.example.com" }, reason: "endpoint"},
		{name: "ftp endpoint", mutate: func(r *RemoteAPI) { r.Endpoint = "ftp://api.example.com" }, reason: "endpoint"},
		{name: "no model", mutate: func(r *RemoteAPI) { r.Model = "" }, reason: "model"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)

			err := CheckConnection(context.Background(), r)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrConnectionFailed)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, CheckConnection(ctx, valid), context.Canceled)
}

func TestCatalog(t *testing.T) {
	models := Catalog()
	require.NotEmpty(t, models)

	var ids []string
	for i, m := range models {
		ids = append(ids, m.ID)
		if i > 0 {
			assert.LessOrEqual(t, models[i-1].DisplayName, m.DisplayName)
		}
	}
	assert.Contains(t, ids, DefaultRemoteModel)

	models[0].ID = "changed"
	assert.NotEqual(t, "changed", Catalog()[0].ID)
}

func TestReadDefaults(t *testing.T) {
	p, err := ReadDefaults(strings.NewReader(`
mode: Remote
remote:
  endpoint: https://llm.internal/v1
  generation:
    temperature: 0.3
`))
	require.NoError(t, err)
	assert.Equal(t, ModeRemote, p.Mode)
	assert.Equal(t, "https://llm.internal/v1", p.Remote.Endpoint)
	assert.Equal(t, 0.3, p.Remote.Generation.Temperature)
	assert.Equal(t, 2048, p.Remote.Generation.MaxTokens, "unset fields keep defaults")
	assert.Equal(t, DefaultRemoteModel, p.Remote.Model)

	_, err = ReadDefaults(strings.NewReader("local:\n  generation:\n    top_p: 4\n"))
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = ReadDefaults(strings.NewReader("colour: blue\n"))
	assert.Error(t, err)

	p, err = ReadDefaults(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p)
}

func TestLoadDefaults(t *testing.T) {
	p, err := LoadDefaults("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p)

	path := filepath.Join(t.TempDir(), "defaults.yaml")
	require.NoError(t, os.WriteFile(path, []byte("local:\n  model_path: base.gguf\n"), 0o644))

	p, err = LoadDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, "base.gguf", p.Local.ModelPath)

	_, err = LoadDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
