// Package feed fetches the upstream OEM document and turns it into a
// domain.Series.
//
// A [Provider] returns the raw bytes (HTTP or S3). The [Loader] bounds the
// fetch with a timeout, decompresses gzip payloads, parses the XML and
// classifies failures as domain.ErrFeedUnavailable (fetch) or
// domain.ErrFeedMalformed (decode/parse, including any single bad record).
package feed
