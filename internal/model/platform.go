package model

// platformUnknownStr is the string representation for unknown platform values.
const platformUnknownStr = "unknown"

// SocialPlatform represents a social media platform type.
type SocialPlatform string

// Social media platform constants.
const (
	// SocialPlatformUnknown represents an unknown platform.
	SocialPlatformUnknown SocialPlatform = ""
	// SocialPlatformFacebook represents Facebook.
	SocialPlatformFacebook SocialPlatform = "facebook"
	// SocialPlatformLinkedIn represents LinkedIn.
	SocialPlatformLinkedIn SocialPlatform = "linkedin"
	// SocialPlatformTwitter represents Twitter/X.
	SocialPlatformTwitter SocialPlatform = "twitter"
	// SocialPlatformInstagram represents Instagram.
	SocialPlatformInstagram SocialPlatform = "instagram"
	// SocialPlatformYouTube represents YouTube.
	SocialPlatformYouTube SocialPlatform = "youtube"
	// SocialPlatformGitHub represents GitHub.
	SocialPlatformGitHub SocialPlatform = "github"
	// SocialPlatformTikTok represents TikTok.
	SocialPlatformTikTok SocialPlatform = "tiktok"
	// SocialPlatformPinterest represents Pinterest.
	SocialPlatformPinterest SocialPlatform = "pinterest"
	// SocialPlatformVimeo represents Vimeo.
	SocialPlatformVimeo SocialPlatform = "vimeo"
	// SocialPlatformMedium represents Medium.
	SocialPlatformMedium SocialPlatform = "medium"
	// SocialPlatformTelegram represents Telegram.
	SocialPlatformTelegram SocialPlatform = "telegram"
	// SocialPlatformDiscord represents Discord.
	SocialPlatformDiscord SocialPlatform = "discord"
	// SocialPlatformReddit represents Reddit.
	SocialPlatformReddit SocialPlatform = "reddit"
	// SocialPlatformWhatsApp represents WhatsApp click-to-chat links.
	SocialPlatformWhatsApp SocialPlatform = "whatsapp"
)

// String returns the string representation of the SocialPlatform.
func (p SocialPlatform) String() string {
	if p == SocialPlatformUnknown {
		return platformUnknownStr
	}
	return string(p)
}

// IsValid returns true if this is a known platform.
func (p SocialPlatform) IsValid() bool {
	switch p {
	case SocialPlatformFacebook, SocialPlatformLinkedIn, SocialPlatformTwitter,
		SocialPlatformInstagram, SocialPlatformYouTube, SocialPlatformGitHub,
		SocialPlatformTikTok, SocialPlatformPinterest, SocialPlatformVimeo,
		SocialPlatformMedium, SocialPlatformTelegram, SocialPlatformDiscord,
		SocialPlatformReddit, SocialPlatformWhatsApp:
		return true
	default:
		return false
	}
}

// ParseSocialPlatform converts a string to SocialPlatform.
func ParseSocialPlatform(s string) SocialPlatform {
	switch s {
	case "twitter", "x":
		return SocialPlatformTwitter
	default:
		p := SocialPlatform(s)
		if p.IsValid() {
			return p
		}
		return SocialPlatformUnknown
	}
}

// TechCategory groups detected technologies.
type TechCategory string

// Technology categories.
const (
	// TechCategoryCMS is a content management system (WordPress, Drupal, ...).
	TechCategoryCMS TechCategory = "cms"
	// TechCategoryFramework is a frontend or backend framework.
	TechCategoryFramework TechCategory = "framework"
	// TechCategoryAnalytics is an analytics or tag manager product.
	TechCategoryAnalytics TechCategory = "analytics"
	// TechCategoryCDN is a content delivery network.
	TechCategoryCDN TechCategory = "cdn"
	// TechCategoryServer is the HTTP server software.
	TechCategoryServer TechCategory = "server"
	// TechCategoryLanguage is the server-side language or runtime.
	TechCategoryLanguage TechCategory = "language"
)

// AllTechCategories lists categories in display order.
var AllTechCategories = []TechCategory{
	TechCategoryCMS,
	TechCategoryFramework,
	TechCategoryAnalytics,
	TechCategoryCDN,
	TechCategoryServer,
	TechCategoryLanguage,
}

// String returns the string representation of the TechCategory.
func (c TechCategory) String() string {
	return string(c)
}

// IsValid returns true if this is a known category.
func (c TechCategory) IsValid() bool {
	for _, known := range AllTechCategories {
		if c == known {
			return true
		}
	}
	return false
}
