package extract

import (
	"net/url"
	"strings"

	"github.com/nao1215/leadcrawl/internal/model"
)

// socialHost maps registrable hosts to a platform. Order matters: the first
// matching entry wins.
type socialHost struct {
	platform model.SocialPlatform
	hosts    []string
}

// SocialExtractor classifies outbound links by social platform.
type SocialExtractor struct {
	table []socialHost

	// sharePaths mark share buttons and intents rather than profiles.
	sharePaths []string
}

// NewSocialExtractor creates a new SocialExtractor.
func NewSocialExtractor() *SocialExtractor {
	return &SocialExtractor{
		table: []socialHost{
			{model.SocialPlatformFacebook, []string{"facebook.com", "fb.com", "fb.me"}},
			{model.SocialPlatformLinkedIn, []string{"linkedin.com", "lnkd.in"}},
			{model.SocialPlatformTwitter, []string{"twitter.com", "x.com"}},
			{model.SocialPlatformInstagram, []string{"instagram.com"}},
			{model.SocialPlatformYouTube, []string{"youtube.com", "youtu.be"}},
			{model.SocialPlatformGitHub, []string{"github.com"}},
			{model.SocialPlatformTikTok, []string{"tiktok.com"}},
			{model.SocialPlatformPinterest, []string{"pinterest.com", "pin.it"}},
			{model.SocialPlatformVimeo, []string{"vimeo.com"}},
			{model.SocialPlatformMedium, []string{"medium.com"}},
			{model.SocialPlatformTelegram, []string{"t.me", "telegram.me"}},
			{model.SocialPlatformDiscord, []string{"discord.gg", "discord.com"}},
			{model.SocialPlatformReddit, []string{"reddit.com"}},
			{model.SocialPlatformWhatsApp, []string{"wa.me", "whatsapp.com"}},
		},
		sharePaths: []string{"/sharer", "/sharer.php", "/share", "/sharing", "/intent", "/dialog", "/sharearticle", "/pin/create"},
	}
}

// Name returns the extractor name.
func (e *SocialExtractor) Name() string {
	return "social"
}

// Extract appends one profile per distinct social URL of the page.
func (e *SocialExtractor) Extract(doc *Document, out *Findings) error {
	seen := make(map[string]bool)
	for _, a := range doc.Anchors() {
		if a.URL == "" || seen[a.URL] {
			continue
		}
		platform := e.Classify(a.URL)
		if platform == model.SocialPlatformUnknown {
			continue
		}
		seen[a.URL] = true
		out.Social = append(out.Social, model.SocialProfile{
			Platform: platform,
			URL:      a.URL,
			Text:     a.Text,
			PageURL:  doc.Page.URL,
		})
	}
	return nil
}

// Classify returns the platform of a profile URL, or SocialPlatformUnknown
// for other hosts, share links and bare platform home pages.
func (e *SocialExtractor) Classify(rawURL string) model.SocialPlatform {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return model.SocialPlatformUnknown
	}
	host := strings.ToLower(u.Hostname())
	path := strings.ToLower(strings.TrimRight(u.Path, "/"))
	if path == "" {
		return model.SocialPlatformUnknown
	}
	// Share endpoints match whole path segments: "/share" is not "/shareholders".
	for _, share := range e.sharePaths {
		if path == share || strings.HasPrefix(path, share+"/") {
			return model.SocialPlatformUnknown
		}
	}

	for _, entry := range e.table {
		for _, h := range entry.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return entry.platform
			}
		}
	}
	return model.SocialPlatformUnknown
}
