package model

// PersonSourceWebsite marks people discovered by crawling the company site.
const PersonSourceWebsite = "website_scraping"

// EmailRecord is an email address and the first page it was seen on.
// Records are unique by the lower-cased address.
type EmailRecord struct {
	// Email is the normalized (lower-cased) address.
	Email string `json:"email"`

	// PageURL is the page where the address was first seen.
	PageURL string `json:"page_url"`
}

// PhoneRecord is a normalized phone number.
// Records are unique by Phone.
type PhoneRecord struct {
	// Phone is the number with '.', ' ' and '-' removed.
	Phone string `json:"phone"`

	// PageURL is the page where the number was first seen.
	PageURL string `json:"page_url,omitempty"`
}

// PersonRecord is a person found on the company site.
// Records are unique by the lower-cased name.
type PersonRecord struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
	PageURL     string `json:"page_url"`
	Source      string `json:"source"`
}

// Merge fills empty fields of p from other and reports whether anything changed.
// Name, PageURL and Source are never overwritten.
func (p *PersonRecord) Merge(other PersonRecord) bool {
	changed := false
	fill := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
			changed = true
		}
	}
	fill(&p.Title, other.Title)
	fill(&p.Email, other.Email)
	fill(&p.Phone, other.Phone)
	fill(&p.LinkedInURL, other.LinkedInURL)
	return changed
}

// SocialProfile is a link to a company profile on a social platform.
// Records are unique by (Platform, URL).
type SocialProfile struct {
	Platform SocialPlatform `json:"platform"`
	URL      string         `json:"url"`
	Text     string         `json:"text,omitempty"`
	PageURL  string         `json:"page_url"`
}

// Technology is a detected piece of the site's stack.
// Records are unique by (Category, Name).
type Technology struct {
	Category TechCategory `json:"category"`
	Name     string       `json:"name"`
}

// ImageRecord is an image referenced by a crawled page.
// Records are unique by URL.
type ImageRecord struct {
	URL     string `json:"url"`
	Alt     string `json:"alt,omitempty"`
	PageURL string `json:"page_url"`
	// Width and Height come from the tag attributes; zero means not declared.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// EXIF is filled by the optional EXIF step.
	EXIF *ImageEXIF `json:"exif,omitempty"`
}

// ImageEXIF holds the EXIF tags of a downloaded image that matter for OSINT.
type ImageEXIF struct {
	Make     string `json:"make,omitempty"`
	Model    string `json:"model,omitempty"`
	Software string `json:"software,omitempty"`
	DateTime string `json:"date_time,omitempty"`
	Artist   string `json:"artist,omitempty"`

	// HasGPS is true when GPS tags are embedded in the image.
	HasGPS bool `json:"has_gps"`

	// Tags contains every formatted tag, keyed by tag name.
	Tags map[string]string `json:"tags,omitempty"`
}

// FormField is one input, select or textarea of a form.
type FormField struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Placeholder string   `json:"placeholder,omitempty"`
	Options     []string `json:"options,omitempty"`
}

// FormEntryPoint is an HTML form recorded for later security testing.
// The crawler never submits forms.
type FormEntryPoint struct {
	PageURL   string `json:"page_url"`
	ActionURL string `json:"action_url"`
	// Method is upper-cased; GET when the attribute is absent.
	Method        string      `json:"method"`
	Enctype       string      `json:"enctype"`
	Fields        []FormField `json:"fields"`
	HasCSRF       bool        `json:"has_csrf"`
	HasFileUpload bool        `json:"has_file_upload"`
}

// Key identifies a form by page, action and method.
func (f FormEntryPoint) Key() string {
	return f.PageURL + "|" + f.Method + "|" + f.ActionURL
}
