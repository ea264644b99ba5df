package extract

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/nao1215/leadcrawl/internal/model"
)

// jsonLDNode is the subset of schema.org properties used by leadcrawl.
// Every property may be spelled as a bare value or as a nested object.
type jsonLDNode struct {
	Type      model.StringOrRecordList `json:"@type"`
	Graph     []json.RawMessage        `json:"@graph"`
	Name      model.StringOrRecord     `json:"name"`
	URL       model.StringOrRecord     `json:"url"`
	Logo      model.StringOrRecord     `json:"logo"`
	Image     model.StringOrRecordList `json:"image"`
	Telephone model.StringOrRecord     `json:"telephone"`
	Email     model.StringOrRecord     `json:"email"`
	JobTitle  model.StringOrRecord     `json:"jobTitle"`
	SameAs    model.StringOrRecordList `json:"sameAs"`
	Founder   model.StringOrRecordList `json:"founder"`
	Employee  model.StringOrRecordList `json:"employee"`
	Author    model.StringOrRecordList `json:"author"`
}

// maxJSONLDNodes bounds @graph expansion on hostile pages.
const maxJSONLDNodes = 64

// parseJSONLD decodes one <script type="application/ld+json"> body.
// Malformed blocks yield no nodes.
func parseJSONLD(data []byte) []model.StructuredData {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	var raws []json.RawMessage
	if data[0] == '[' {
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil
		}
	} else {
		raws = []json.RawMessage{data}
	}

	var out []model.StructuredData
	for len(raws) > 0 && len(out) < maxJSONLDNodes {
		raw := raws[0]
		raws = raws[1:]

		var node jsonLDNode
		if err := json.Unmarshal(raw, &node); err != nil {
			continue
		}
		raws = append(raws, node.Graph...)
		if len(node.Type) == 0 && node.Name.IsZero() {
			continue
		}
		out = append(out, node.normalize())
	}
	return out
}

func (n jsonLDNode) normalize() model.StructuredData {
	sd := model.StructuredData{
		Type:      n.Type.First().Text(),
		Name:      strings.TrimSpace(n.Name.Text()),
		URL:       n.URL.Text(),
		Logo:      n.Logo.Text(),
		Image:     n.Image.First().Text(),
		Telephone: strings.TrimSpace(n.Telephone.Text()),
		Email:     strings.TrimPrefix(strings.TrimSpace(n.Email.Text()), "mailto:"),
		SameAs:    n.SameAs.Texts(),
	}

	if strings.EqualFold(sd.Type, "Person") && sd.Name != "" {
		sd.People = append(sd.People, model.StructuredPerson{
			Name:     sd.Name,
			JobTitle: n.JobTitle.Text(),
			Email:    sd.Email,
			URL:      sd.URL,
		})
	}

	for _, list := range []model.StringOrRecordList{n.Founder, n.Employee, n.Author} {
		for _, item := range list {
			if p, ok := structuredPerson(item); ok {
				sd.People = append(sd.People, p)
			}
		}
	}
	return sd
}

func structuredPerson(v model.StringOrRecord) (model.StructuredPerson, bool) {
	if !v.IsRecord() {
		name := strings.TrimSpace(v.Text())
		// A bare string can be a profile URL rather than a name.
		if name == "" || strings.Contains(name, "://") {
			return model.StructuredPerson{}, false
		}
		return model.StructuredPerson{Name: name}, true
	}

	name := strings.TrimSpace(v.Field("name"))
	if name == "" {
		return model.StructuredPerson{}, false
	}
	return model.StructuredPerson{
		Name:     name,
		JobTitle: strings.TrimSpace(v.Field("jobTitle")),
		Email:    strings.TrimPrefix(strings.TrimSpace(v.Field("email")), "mailto:"),
		URL:      v.Field("url"),
	}, true
}
