package extract

import (
	"net/http"
	"strings"

	"github.com/nao1215/leadcrawl/internal/model"
)

// signature is one technology and the lower-case markers that reveal it.
type signature struct {
	category model.TechCategory
	name     string
	markers  []string
}

// TechnologyExtractor fingerprints the site stack from the home page source
// and response headers.
type TechnologyExtractor struct {
	// htmlSignatures are matched as substrings of the lower-cased page source.
	htmlSignatures []signature

	// cookieSignatures are matched against Set-Cookie names.
	cookieSignatures []signature

	// headerSignatures are matched by header presence.
	headerSignatures map[string]model.Technology

	// poweredBy maps X-Powered-By substrings to technologies.
	poweredBy []signature
}

// NewTechnologyExtractor creates a new TechnologyExtractor.
func NewTechnologyExtractor() *TechnologyExtractor {
	return &TechnologyExtractor{
		htmlSignatures: []signature{
			{model.TechCategoryCMS, "wordpress", []string{"wp-content/", "wp-includes/", `content="wordpress`}},
			{model.TechCategoryCMS, "drupal", []string{"drupal-settings-json", "sites/default/files", `content="drupal`}},
			{model.TechCategoryCMS, "joomla", []string{"/media/jui/", `content="joomla`}},
			{model.TechCategoryCMS, "shopify", []string{"cdn.shopify.com", "shopify.theme"}},
			{model.TechCategoryCMS, "wix", []string{"static.wixstatic.com", `content="wix.com`}},
			{model.TechCategoryCMS, "squarespace", []string{"static1.squarespace.com", "squarespace-cdn.com"}},
			{model.TechCategoryCMS, "webflow", []string{"data-wf-page", "webflow.js"}},
			{model.TechCategoryCMS, "ghost", []string{`content="ghost`}},
			{model.TechCategoryCMS, "prestashop", []string{"prestashop"}},
			{model.TechCategoryCMS, "magento", []string{"mage/cookies", "magento_"}},
			{model.TechCategoryCMS, "hubspot cms", []string{"hs-sites.com", `content="hubspot`}},

			{model.TechCategoryFramework, "nextjs", []string{"__next_data__", "/_next/static"}},
			{model.TechCategoryFramework, "nuxt", []string{"window.__nuxt__", "/_nuxt/"}},
			{model.TechCategoryFramework, "gatsby", []string{"___gatsby"}},
			{model.TechCategoryFramework, "react", []string{"data-reactroot", "react-dom.production", "react.production.min.js"}},
			{model.TechCategoryFramework, "vue", []string{"data-v-app", "vue.min.js", "vue.global.prod.js"}},
			{model.TechCategoryFramework, "angular", []string{"ng-version=", "ng-app="}},
			{model.TechCategoryFramework, "jquery", []string{"jquery.min.js", "jquery.js", "/jquery-"}},
			{model.TechCategoryFramework, "bootstrap", []string{"bootstrap.min.css", "bootstrap.min.js", "bootstrap.bundle"}},
			{model.TechCategoryFramework, "tailwind", []string{"tailwindcss", "cdn.tailwindcss.com"}},
			{model.TechCategoryFramework, "django", []string{"csrfmiddlewaretoken"}},
			{model.TechCategoryFramework, "rails", []string{`name="csrf-param" content="authenticity_token"`}},

			{model.TechCategoryAnalytics, "google analytics", []string{"google-analytics.com/", "gtag('config'", `gtag("config"`}},
			{model.TechCategoryAnalytics, "google tag manager", []string{"googletagmanager.com/gtm.js", "googletagmanager.com/ns.html"}},
			{model.TechCategoryAnalytics, "facebook pixel", []string{"connect.facebook.net/en_us/fbevents.js", "fbq('init'"}},
			{model.TechCategoryAnalytics, "hotjar", []string{"static.hotjar.com"}},
			{model.TechCategoryAnalytics, "matomo", []string{"matomo.js", "piwik.js"}},
			{model.TechCategoryAnalytics, "plausible", []string{"plausible.io/js"}},
			{model.TechCategoryAnalytics, "segment", []string{"cdn.segment.com"}},
			{model.TechCategoryAnalytics, "mixpanel", []string{"cdn.mxpnl.com", "mixpanel.init"}},
			{model.TechCategoryAnalytics, "hubspot", []string{"js.hs-scripts.com", "js.hs-analytics.net"}},

			{model.TechCategoryCDN, "cloudflare", []string{"cdnjs.cloudflare.com", "/cdn-cgi/"}},
			{model.TechCategoryCDN, "cloudfront", []string{".cloudfront.net"}},
			{model.TechCategoryCDN, "jsdelivr", []string{"cdn.jsdelivr.net"}},
			{model.TechCategoryCDN, "unpkg", []string{"unpkg.com/"}},
			{model.TechCategoryCDN, "google fonts", []string{"fonts.googleapis.com"}},
		},
		cookieSignatures: []signature{
			{model.TechCategoryLanguage, "php", []string{"phpsessid"}},
			{model.TechCategoryLanguage, "java", []string{"jsessionid"}},
			{model.TechCategoryLanguage, "asp.net", []string{"asp.net_sessionid", ".aspxauth"}},
			{model.TechCategoryFramework, "laravel", []string{"laravel_session"}},
			{model.TechCategoryFramework, "django", []string{"csrftoken", "sessionid"}},
			{model.TechCategoryCMS, "wordpress", []string{"wordpress_", "wp-settings-"}},
		},
		headerSignatures: map[string]model.Technology{
			"Cf-Ray":               {Category: model.TechCategoryCDN, Name: "cloudflare"},
			"X-Amz-Cf-Id":          {Category: model.TechCategoryCDN, Name: "cloudfront"},
			"X-Fastly-Request-Id":  {Category: model.TechCategoryCDN, Name: "fastly"},
			"X-Akamai-Transformed": {Category: model.TechCategoryCDN, Name: "akamai"},
			"X-Vercel-Id":          {Category: model.TechCategoryCDN, Name: "vercel"},
			"X-Nf-Request-Id":      {Category: model.TechCategoryCDN, Name: "netlify"},
			"X-Aspnet-Version":     {Category: model.TechCategoryLanguage, Name: "asp.net"},
			"X-Drupal-Cache":       {Category: model.TechCategoryCMS, Name: "drupal"},
			"X-Shopify-Stage":      {Category: model.TechCategoryCMS, Name: "shopify"},
		},
		poweredBy: []signature{
			{model.TechCategoryLanguage, "php", []string{"php"}},
			{model.TechCategoryLanguage, "asp.net", []string{"asp.net"}},
			{model.TechCategoryLanguage, "java", []string{"servlet", "jsp"}},
			{model.TechCategoryFramework, "express", []string{"express"}},
			{model.TechCategoryFramework, "nextjs", []string{"next.js"}},
			{model.TechCategoryCMS, "wordpress", []string{"wp engine"}},
		},
	}
}

// Name returns the extractor name.
func (e *TechnologyExtractor) Name() string {
	return "technology"
}

// HomePageOnly reports that the stack is fingerprinted on the seed page only.
func (e *TechnologyExtractor) HomePageOnly() bool {
	return true
}

// Extract appends every detected technology once.
func (e *TechnologyExtractor) Extract(doc *Document, out *Findings) error {
	seen := make(map[model.Technology]bool)
	add := func(category model.TechCategory, name string) {
		tech := model.Technology{Category: category, Name: name}
		if name == "" || seen[tech] {
			return
		}
		seen[tech] = true
		out.Technologies = append(out.Technologies, tech)
	}

	source := strings.ToLower(doc.HTML())
	for _, sig := range e.htmlSignatures {
		if containsAny(source, sig.markers) {
			add(sig.category, sig.name)
		}
	}

	page := doc.Page
	if server := page.GetHeader("Server"); server != "" {
		category, name := ServerTechnology(server)
		add(category, name)
	}
	if powered := strings.ToLower(page.GetHeader("X-Powered-By")); powered != "" {
		for _, sig := range e.poweredBy {
			if containsAny(powered, sig.markers) {
				add(sig.category, sig.name)
			}
		}
	}
	for header, tech := range e.headerSignatures {
		if page.GetHeader(header) != "" {
			add(tech.Category, tech.Name)
		}
	}
	for _, cookie := range page.Headers[http.CanonicalHeaderKey("Set-Cookie")] {
		name := strings.ToLower(cookie)
		if i := strings.IndexByte(name, '='); i >= 0 {
			name = name[:i]
		}
		for _, sig := range e.cookieSignatures {
			for _, marker := range sig.markers {
				if strings.HasPrefix(name, marker) {
					add(sig.category, sig.name)
				}
			}
		}
	}
	return nil
}

// ServerTechnology maps a Server header to a technology.
// "nginx/1.25.3" yields ("server", "nginx"); edge networks that rewrite the
// header are reported as CDN.
func ServerTechnology(header string) (model.TechCategory, string) {
	token := strings.ToLower(strings.TrimSpace(header))
	if i := strings.IndexAny(token, "/ ("); i >= 0 {
		token = token[:i]
	}
	switch token {
	case "":
		return model.TechCategoryServer, ""
	case "cloudflare":
		return model.TechCategoryCDN, "cloudflare"
	case "cloudfront", "amazons3":
		return model.TechCategoryCDN, "cloudfront"
	case "microsoft-iis":
		return model.TechCategoryServer, "iis"
	}
	return model.TechCategoryServer, token
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
