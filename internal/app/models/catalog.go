package models

import (
	"sort"
	"strings"
)

// DefaultBaseURL is where ggml whisper models are published.
const DefaultBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"

// Model represents a downloadable whisper.cpp model.
type Model struct {
	Name      string // short name used on the command line: "tiny"
	File      string // file name on disk: "ggml-tiny.bin"
	Label     string
	Size      string
	SizeBytes int64
}

// Catalog lists the models the bridge knows how to fetch.
var Catalog = []Model{
	{Name: "tiny", File: "ggml-tiny.bin", Label: "Tiny Multilingual", Size: "75 MB", SizeBytes: 77_691_713},
	{Name: "tiny.en", File: "ggml-tiny.en.bin", Label: "Tiny English", Size: "75 MB", SizeBytes: 77_704_715},
	{Name: "base", File: "ggml-base.bin", Label: "Base Multilingual", Size: "142 MB", SizeBytes: 147_951_465},
	{Name: "base.en", File: "ggml-base.en.bin", Label: "Base English", Size: "142 MB", SizeBytes: 147_964_211},
	{Name: "small", File: "ggml-small.bin", Label: "Small Multilingual", Size: "466 MB", SizeBytes: 487_601_967},
	{Name: "small.en", File: "ggml-small.en.bin", Label: "Small English", Size: "466 MB", SizeBytes: 487_614_201},
	{Name: "medium", File: "ggml-medium.bin", Label: "Medium Multilingual", Size: "1.5 GB", SizeBytes: 1_533_763_059},
	{Name: "medium.en", File: "ggml-medium.en.bin", Label: "Medium English", Size: "1.5 GB", SizeBytes: 1_533_774_781},
	{Name: "large-v1", File: "ggml-large-v1.bin", Label: "Large V1", Size: "2.9 GB", SizeBytes: 3_094_623_691},
	{Name: "large-v2", File: "ggml-large-v2.bin", Label: "Large V2", Size: "2.9 GB", SizeBytes: 3_094_623_691},
	{Name: "large-v3", File: "ggml-large-v3.bin", Label: "Large V3", Size: "2.9 GB", SizeBytes: 3_095_033_483},
	{Name: "large-v3-turbo", File: "ggml-large-v3-turbo.bin", Label: "Large V3 Turbo", Size: "1.5 GB", SizeBytes: 1_624_555_275},
}

// Lookup finds a catalog entry by short name or by file name.
func Lookup(name string) (Model, bool) {
	name = strings.TrimSpace(name)
	for _, m := range Catalog {
		if m.Name == name || m.File == name {
			return m, true
		}
	}
	return Model{}, false
}

// IsCatalogName reports whether name refers to a local ggml model rather than
// something a remote engine understands.
func IsCatalogName(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// Names returns the short names of every catalog model, sorted.
func Names() []string {
	names := make([]string, 0, len(Catalog))
	for _, m := range Catalog {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names
}

// URL returns the download URL of the model under baseURL.
func (m Model) URL(baseURL string) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return strings.TrimRight(baseURL, "/") + "/" + m.File
}
