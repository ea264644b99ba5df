// Package extract turns one fetched page into entity records.
//
// A Document wraps the parsed page (golang.org/x/net/html tree plus a goquery
// view of it) together with a link resolver. A Pipeline runs every registered
// Extractor against the Document. Extractors are independent: each writes into
// its own Findings, and a failing or panicking extractor is reported as an
// *Error without affecting the results of the others.
//
// Built-in extractors:
//   - email: regex over the raw HTML plus mailto: anchors
//   - phone: tel: anchors, visible text and structured data telephones
//   - person: team/staff/contact sections, mailto: containers and JSON-LD people
//   - social: anchors whose host is a known social platform
//   - technology: HTML signatures and response headers (home page only)
//   - metadata: meta tags, OpenGraph, Twitter cards, JSON-LD, icons, main image
//   - image: <img> sources including lazy-load attributes
//   - form: <form> entry points with fields and CSRF/file-upload flags
package extract
