package domain

// Image attribute names.
const (
	AttrURI       = "uri"
	AttrCacheURI  = "cacheUri"
	AttrLocalURI  = "localUri"
	AttrPublicURI = "publicUri"
	AttrBlurHash  = "blurHash"
)

// Image is a photo attached to a glaze, combo or piece.
// URI is the resolved display URI, picked from the candidates in order
// public, local, cache.
type Image struct {
	Record
	URI       string  `json:"uri"`
	CacheURI  string  `json:"cacheUri,omitempty"`
	LocalURI  *string `json:"localUri"`
	PublicURI *string `json:"publicUri"`
	BlurHash  string  `json:"blurHash,omitempty"`
}

// ResolveImageURI picks the display URI from the candidate sources.
func ResolveImageURI(cacheURI string, localURI, publicURI *string) string {
	if publicURI != nil && *publicURI != "" {
		return *publicURI
	}
	if localURI != nil && *localURI != "" {
		return *localURI
	}
	return cacheURI
}

// Candidates returns the non-empty source URIs in load-preference order:
// local, public, cache.
func (i Image) Candidates() []string {
	out := make([]string, 0, 3)
	if i.LocalURI != nil && *i.LocalURI != "" {
		out = append(out, *i.LocalURI)
	}
	if i.PublicURI != nil && *i.PublicURI != "" {
		out = append(out, *i.PublicURI)
	}
	if i.CacheURI != "" {
		out = append(out, i.CacheURI)
	}
	return out
}
