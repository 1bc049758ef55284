package catalog

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/MikeMC777/nolimits-storefront/internal/product"
)

// PlatformLinks maps a platform key to its purchase URL. An empty URL means
// the platform is offered but no link is known; it encodes as null.
type PlatformLinks map[string]string

func (m PlatformLinks) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	out := make(map[string]*string, len(m))
	for k, v := range m {
		if v == "" {
			out[k] = nil
			continue
		}
		v := v
		out[k] = &v
	}
	return json.Marshal(out)
}

func (m *PlatformLinks) UnmarshalJSON(data []byte) error {
	var raw map[string]*string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(PlatformLinks, len(raw))
	for k, v := range raw {
		if v != nil {
			out[k] = *v
		} else {
			out[k] = ""
		}
	}
	*m = out
	return nil
}

// vendor ties platform keys to the store domains that sell for them.
type vendor struct {
	platforms []string
	domains   []string
}

var vendors = []vendor{
	{platforms: []string{"disney"}, domains: []string{"disney"}},
	{platforms: []string{"apple", "itunes"}, domains: []string{"apple.com", "itunes"}},
	{platforms: []string{"prime", "amazon"}, domains: []string{"primevideo", "amazon"}},
	{platforms: []string{"steam"}, domains: []string{"steampowered", "steamcommunity"}},
	{platforms: []string{"playstation", "ps4", "ps5", "psn"}, domains: []string{"playstation"}},
	{platforms: []string{"xbox"}, domains: []string{"xbox"}},
	{platforms: []string{"epic"}, domains: []string{"epicgames"}},
}

// buildPlatformLinks resolves one URL per platform. Order of precedence:
// a link whose domain belongs to the platform's vendor, then the link at the
// platform's backend position (pos[i], or i when pos is short), then the only
// link when there is exactly one. Every platform gets a key; no other key is
// added.
func buildPlatformLinks(plataformas []string, pos []int, links []product.PurchaseLink) PlatformLinks {
	out := make(PlatformLinks, len(plataformas))
	for i, name := range plataformas {
		key := PlatformKey(name)
		if key == "" {
			key = Fold(name)
		}
		if key == "" {
			continue
		}
		at := i
		if i < len(pos) {
			at = pos[i]
		}
		link := ""
		if at >= 0 && at < len(links) {
			link = links[at].URL
		}
		if v := vendorLink(key, links); v != "" {
			link = v
		}
		if link == "" && len(links) == 1 {
			link = links[0].URL
		}
		if prev, ok := out[key]; ok && prev != "" && link == "" {
			continue
		}
		out[key] = link
	}
	return out
}

func vendorLink(key string, links []product.PurchaseLink) string {
	for _, v := range vendors {
		if !containsAny(key, v.platforms) {
			continue
		}
		for _, l := range links {
			if l.URL != "" && containsAny(linkHost(l.URL), v.domains) {
				return l.URL
			}
		}
	}
	return ""
}

func linkHost(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.ToLower(raw)
	}
	return strings.ToLower(u.Host)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// firstLink is the general purchase link of a product.
func firstLink(links []product.PurchaseLink) string {
	for _, l := range links {
		if l.URL != "" {
			return l.URL
		}
	}
	return ""
}
