package config

// SiteConfig holds site-specific configuration for a single host.
type SiteConfig struct {
	// Cookie is an HTTP cookie to use when crawling this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MaxDepth overrides the global max depth for this site when set.
	// An explicit 0 limits the crawl to the start page.
	MaxDepth *int `yaml:"max_depth,omitempty"`

	// MaxPages overrides the global page budget when positive.
	MaxPages int `yaml:"max_pages,omitempty"`

	// MaxWorkers overrides the global worker count when positive.
	MaxWorkers int `yaml:"max_workers,omitempty"`

	// Exclude are URL path glob patterns to skip during crawling.
	Exclude []string `yaml:"exclude,omitempty"`

	// Include restrict crawling to matching URL paths when non-empty.
	Include []string `yaml:"include,omitempty"`
}

// File represents the structure of the .leadcrawl configuration file.
type File struct {
	// Sites maps host names (e.g., "acme.test") to their configurations.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to every site unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a host merged over the defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	// Copy so that merging headers never mutates the defaults map.
	if cf.Defaults.Headers != nil {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	siteConfig, ok := cf.Sites[host]
	if !ok {
		return result
	}

	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if siteConfig.MaxDepth != nil {
		result.MaxDepth = siteConfig.MaxDepth
	}
	if siteConfig.MaxPages != 0 {
		result.MaxPages = siteConfig.MaxPages
	}
	if siteConfig.MaxWorkers != 0 {
		result.MaxWorkers = siteConfig.MaxWorkers
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range siteConfig.Headers {
			result.Headers[k] = v
		}
	}
	if len(siteConfig.Exclude) > 0 {
		result.Exclude = siteConfig.Exclude
	}
	if len(siteConfig.Include) > 0 {
		result.Include = siteConfig.Include
	}
	return result
}
