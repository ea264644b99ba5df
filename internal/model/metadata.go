package model

// PageMetadata is the descriptive metadata of one page.
type PageMetadata struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// Language is the canonical BCP 47 tag of <html lang>.
	Language string   `json:"language,omitempty"`
	Keywords []string `json:"keywords,omitempty"`

	// Meta holds every <meta name|property content> pair that is not og:* or twitter:*.
	Meta map[string]string `json:"meta,omitempty"`

	// OpenGraph holds og:* tags keyed by the full property name.
	OpenGraph map[string]string `json:"open_graph,omitempty"`

	// TwitterCard holds twitter:* tags keyed by the full name.
	TwitterCard map[string]string `json:"twitter_card,omitempty"`

	// StructuredData holds the normalized JSON-LD nodes of the page.
	StructuredData []StructuredData `json:"structured_data,omitempty"`

	Icons Icons `json:"icons"`
}

// Icons are the resolved absolute image URLs that identify a site.
type Icons struct {
	Favicon        string `json:"favicon,omitempty"`
	AppleTouchIcon string `json:"apple_touch_icon,omitempty"`
	OGImage        string `json:"og_image,omitempty"`
	TwitterImage   string `json:"twitter_image,omitempty"`
	Logo           string `json:"logo,omitempty"`

	// MainImage is chosen by priority:
	// og:image, twitter:image, apple-touch-icon, logo, large inline image, favicon.
	MainImage string `json:"main_image,omitempty"`
}

// StructuredData is a JSON-LD node normalized into a fixed shape.
type StructuredData struct {
	Type      string             `json:"type,omitempty"`
	Name      string             `json:"name,omitempty"`
	URL       string             `json:"url,omitempty"`
	Logo      string             `json:"logo,omitempty"`
	Image     string             `json:"image,omitempty"`
	Telephone string             `json:"telephone,omitempty"`
	Email     string             `json:"email,omitempty"`
	SameAs    []string           `json:"same_as,omitempty"`
	People    []StructuredPerson `json:"people,omitempty"`
}

// StructuredPerson is a founder, employee or author listed in JSON-LD.
type StructuredPerson struct {
	Name     string `json:"name"`
	JobTitle string `json:"job_title,omitempty"`
	Email    string `json:"email,omitempty"`
	URL      string `json:"url,omitempty"`
}
