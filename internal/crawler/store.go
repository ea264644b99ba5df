package crawler

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/nao1215/leadcrawl/internal/model"
)

// store aggregates the results of one crawl. One mutex guards everything;
// it is never held during I/O or while a callback runs.
//
// Every Add method is insert-if-absent and reports whether the record was new.
// After Close every mutation is ignored.
type store struct {
	mu sync.Mutex

	maxPages    int
	mergePeople bool
	closed      bool

	visited    []string
	visitedSet map[string]bool
	pending    map[string]bool
	truncated  bool
	hashes     map[string]bool
	pageErrors int

	emails    []model.EmailRecord
	emailSet  map[string]bool
	phones    []model.PhoneRecord
	phoneSet  map[string]bool
	people    []model.PersonRecord
	peopleIdx map[string]int
	social    map[model.SocialPlatform][]model.SocialProfile
	socialSet map[string]bool
	techs     map[model.TechCategory][]string
	techSet   map[model.Technology]bool
	images    []model.ImageRecord
	imageSet  map[string]bool
	forms     []model.FormEntryPoint
	formSet   map[string]bool
	home      *model.PageMetadata
	og        map[string]map[string]string
}

func newStore(maxPages int, mergePeople bool) *store {
	return &store{
		maxPages:    maxPages,
		mergePeople: mergePeople,
		visitedSet:  make(map[string]bool),
		pending:     make(map[string]bool),
		hashes:      make(map[string]bool),
		emailSet:    make(map[string]bool),
		phoneSet:    make(map[string]bool),
		peopleIdx:   make(map[string]int),
		social:      make(map[model.SocialPlatform][]model.SocialProfile),
		socialSet:   make(map[string]bool),
		techs:       make(map[model.TechCategory][]string),
		techSet:     make(map[model.Technology]bool),
		imageSet:    make(map[string]bool),
		formSet:     make(map[string]bool),
		og:          make(map[string]map[string]string),
	}
}

// TryVisit admits url to the visited set. limitHit is true when the set
// is already full, in which case the crawl must stop.
func (s *store) TryVisit(url string) (admitted, limitHit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.visitedSet[url] {
		delete(s.pending, url)
		return false, false
	}
	if len(s.visited) >= s.maxPages {
		return false, true
	}
	delete(s.pending, url)
	s.visitedSet[url] = true
	s.visited = append(s.visited, url)
	return true, false
}

// Schedule returns the links that are neither visited nor pending, marking
// them pending, and stops once visited plus pending reaches maxPages.
func (s *store) Schedule(links []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	var out []string
	for _, link := range links {
		if s.visitedSet[link] || s.pending[link] {
			continue
		}
		if len(s.visited)+len(s.pending) >= s.maxPages {
			s.truncated = true
			break
		}
		s.pending[link] = true
		out = append(out, link)
	}
	return out
}

// SeenContent records a body hash and reports whether it was already seen.
func (s *store) SeenContent(hash string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hashes[hash] {
		return true
	}
	s.hashes[hash] = true
	return false
}

// PageFailed counts a page whose fetch or parse failed.
func (s *store) PageFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.pageErrors++
	}
}

// VisitedCount returns the size of the visited set.
func (s *store) VisitedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visited)
}

// Truncated reports whether links were dropped because of maxPages.
func (s *store) Truncated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.truncated
}

func (s *store) AddEmail(rec model.EmailRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.emailSet[rec.Email] {
		return false
	}
	s.emailSet[rec.Email] = true
	s.emails = append(s.emails, rec)
	return true
}

func (s *store) AddPhone(rec model.PhoneRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.phoneSet[rec.Phone] {
		return false
	}
	s.phoneSet[rec.Phone] = true
	s.phones = append(s.phones, rec)
	return true
}

// AddPerson stores rec under its lower-cased name. A duplicate is dropped,
// or folded into the stored record when mergePeople is set; either way it
// is not reported as new.
func (s *store) AddPerson(rec model.PersonRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	key := strings.ToLower(rec.Name)
	if i, ok := s.peopleIdx[key]; ok {
		if s.mergePeople {
			s.people[i].Merge(rec)
		}
		return false
	}
	s.peopleIdx[key] = len(s.people)
	s.people = append(s.people, rec)
	return true
}

func (s *store) AddSocial(rec model.SocialProfile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := string(rec.Platform) + "|" + rec.URL
	if s.closed || s.socialSet[key] {
		return false
	}
	s.socialSet[key] = true
	s.social[rec.Platform] = append(s.social[rec.Platform], rec)
	return true
}

func (s *store) AddTechnology(tech model.Technology) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.techSet[tech] {
		return false
	}
	s.techSet[tech] = true
	s.techs[tech.Category] = append(s.techs[tech.Category], tech.Name)
	return true
}

func (s *store) AddImage(rec model.ImageRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.imageSet[rec.URL] {
		return false
	}
	s.imageSet[rec.URL] = true
	s.images = append(s.images, rec)
	return true
}

func (s *store) AddForm(rec model.FormEntryPoint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rec.Key()
	if s.closed || s.formSet[key] {
		return false
	}
	s.formSet[key] = true
	s.forms = append(s.forms, rec)
	return true
}

// SetHomeMetadata keeps the first home page metadata.
func (s *store) SetHomeMetadata(md *model.PageMetadata) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.home != nil {
		return false
	}
	s.home = md
	return true
}

// SetOG keeps the OpenGraph tags of pageURL.
func (s *store) SetOG(pageURL string, tags map[string]string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || len(tags) == 0 {
		return false
	}
	if _, ok := s.og[pageURL]; ok {
		return false
	}
	s.og[pageURL] = maps.Clone(tags)
	return true
}

// Counts returns the cumulative per-kind counts.
func (s *store) Counts() model.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Totals{
		Emails:          len(s.emails),
		People:          len(s.people),
		Phones:          len(s.phones),
		SocialPlatforms: len(s.social),
		Technologies:    len(s.techSet),
		Images:          len(s.images),
		Forms:           len(s.forms),
		OGPages:         len(s.og),
	}
}

// Close stops accepting mutations. Results that arrive later are dropped.
func (s *store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Snapshot copies the collections into r.
func (s *store) Snapshot(r *model.CrawlResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.Emails = append(r.Emails, s.emails...)
	r.Phones = append(r.Phones, s.phones...)
	r.People = append(r.People, s.people...)
	for platform, profiles := range s.social {
		r.SocialLinks[platform] = slices.Clone(profiles)
	}
	for category, names := range s.techs {
		sorted := slices.Clone(names)
		slices.Sort(sorted)
		r.Technologies[category] = sorted
	}
	r.Images = append(r.Images, s.images...)
	r.Forms = append(r.Forms, s.forms...)
	r.Metadata = s.home
	for page, tags := range s.og {
		r.OGDataByPage[page] = maps.Clone(tags)
	}
	r.VisitedURLs = append(r.VisitedURLs, s.visited...)
	r.PageErrors = s.pageErrors
}
