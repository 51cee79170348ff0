package settings

import "sort"

const DefaultRemoteModel = "gpt-4o-mini"

// Model is a selectable remote model.
type Model struct {
	ID          string `json:"id"`           // e.g. "gpt-4o-mini"
	DisplayName string `json:"display_name"` // e.g. "GPT-4o mini"
	Description string `json:"description"`
}

var catalog = []Model{
	{ID: "gpt-4o", DisplayName: "GPT-4o", Description: "High quality general purpose model"},
	{ID: "gpt-4o-mini", DisplayName: "GPT-4o mini", Description: "Fast and inexpensive, good default for translation"},
	{ID: "mistral-large-latest", DisplayName: "Mistral Large", Description: "Strong multilingual model"},
	{ID: "llama-3.1-70b-instruct", DisplayName: "Llama 3.1 70B Instruct", Description: "Open weights, self-hostable"},
	{ID: "qwen2.5-72b-instruct", DisplayName: "Qwen 2.5 72B Instruct", Description: "Open weights, strong on CJK languages"},
}

// Catalog returns the known remote models sorted by display name.
func Catalog() []Model {
	out := make([]Model, len(catalog))
	copy(out, catalog)
	sort.Slice(out, func(i, j int) bool {
		return out[i].DisplayName < out[j].DisplayName
	})
	return out
}
