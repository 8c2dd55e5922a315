package llm

import "strings"

// upstreamPayload records where in a provider response the generated text
// was found. Each provider builds one payload at its boundary; only
// payloadText inspects it.
type upstreamPayload interface {
	isPayload()
}

// topLevelText is text exposed directly on the response object.
type topLevelText string

// nestedCandidateText is text found inside a candidate/choice/content list.
type nestedCandidateText string

// emptyPayload means no text could be extracted.
type emptyPayload struct{}

func (topLevelText) isPayload()        {}
func (nestedCandidateText) isPayload() {}
func (emptyPayload) isPayload()        {}

// firstPayload returns the top-level text when present, otherwise the first
// non-blank nested candidate.
func firstPayload(topLevel string, nested ...string) upstreamPayload {
	if strings.TrimSpace(topLevel) != "" {
		return topLevelText(topLevel)
	}
	for _, n := range nested {
		if strings.TrimSpace(n) != "" {
			return nestedCandidateText(n)
		}
	}
	return emptyPayload{}
}

// payloadText resolves a payload to its text. An empty payload is a
// non-retryable service error.
func payloadText(p upstreamPayload) (string, error) {
	switch p := p.(type) {
	case topLevelText:
		return string(p), nil
	case nestedCandidateText:
		return string(p), nil
	}
	return "", &ErrServiceError{Err: ErrEmptyResponse}
}
