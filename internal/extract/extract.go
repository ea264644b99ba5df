package extract

import (
	"errors"
	"fmt"

	"github.com/nao1215/leadcrawl/internal/model"
)

// ErrPanic wraps a recovered extractor panic.
var ErrPanic = errors.New("extractor panicked")

// Extractor pulls one kind of record out of a Document.
type Extractor interface {
	// Name returns the extractor's name for logging.
	Name() string

	// Extract appends the records found in doc to out.
	// It must not retain doc or out after returning.
	Extract(doc *Document, out *Findings) error
}

// HomePageOnly is implemented by extractors that only run on the seed page.
type HomePageOnly interface {
	HomePageOnly() bool
}

// Findings collects the records extracted from one page.
// It is worker-local until merged into the crawl's store.
type Findings struct {
	Emails       []model.EmailRecord
	Phones       []model.PhoneRecord
	People       []model.PersonRecord
	Social       []model.SocialProfile
	Technologies []model.Technology
	Metadata     *model.PageMetadata
	Images       []model.ImageRecord
	Forms        []model.FormEntryPoint
}

func (f *Findings) merge(other *Findings) {
	f.Emails = append(f.Emails, other.Emails...)
	f.Phones = append(f.Phones, other.Phones...)
	f.People = append(f.People, other.People...)
	f.Social = append(f.Social, other.Social...)
	f.Technologies = append(f.Technologies, other.Technologies...)
	if other.Metadata != nil {
		f.Metadata = other.Metadata
	}
	f.Images = append(f.Images, other.Images...)
	f.Forms = append(f.Forms, other.Forms...)
}

// Error reports the failure of one extractor on one page.
type Error struct {
	Extractor string
	PageURL   string
	Err       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s extractor on %s: %v", e.Extractor, e.PageURL, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Pipeline runs a fixed list of extractors against documents.
// A Pipeline is safe for concurrent use once built.
type Pipeline struct {
	extractors []Extractor
}

// NewPipeline returns a Pipeline with all built-in extractors registered.
func NewPipeline() *Pipeline {
	p := &Pipeline{}
	p.Register(NewEmailExtractor())
	p.Register(NewPhoneExtractor())
	p.Register(NewPersonExtractor())
	p.Register(NewSocialExtractor())
	p.Register(NewTechnologyExtractor())
	p.Register(NewMetadataExtractor())
	p.Register(NewImageExtractor())
	p.Register(NewFormExtractor())
	return p
}

// NewEmptyPipeline returns a Pipeline without extractors.
func NewEmptyPipeline() *Pipeline {
	return &Pipeline{}
}

// Register adds an extractor. It must not be called while Run is in use.
func (p *Pipeline) Register(e Extractor) {
	p.extractors = append(p.extractors, e)
}

// Names returns the registered extractor names in run order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.extractors))
	for i, e := range p.extractors {
		names[i] = e.Name()
	}
	return names
}

// Run executes every applicable extractor and returns the merged findings.
// Failed extractors contribute nothing and are reported in errs.
func (p *Pipeline) Run(doc *Document) (*Findings, []error) {
	out := &Findings{}
	var errs []error

	for _, e := range p.extractors {
		if h, ok := e.(HomePageOnly); ok && h.HomePageOnly() && !doc.Page.IsHome() {
			continue
		}

		local := &Findings{}
		if err := safeExtract(e, doc, local); err != nil {
			errs = append(errs, &Error{Extractor: e.Name(), PageURL: doc.Page.URL, Err: err})
			continue
		}
		out.merge(local)
	}
	return out, errs
}

func safeExtract(e Extractor, doc *Document, out *Findings) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return e.Extract(doc, out)
}
