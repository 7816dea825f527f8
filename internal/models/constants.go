package models

const (
	// Name extraction patterns, tried in order; first match wins.
	BareNameRegex  = `\b([A-Z][a-z]+\s+[A-Z][a-z]+)\b`
	ProfileOfRegex = `(?i)profile of\s+([A-Za-z]+\s+[A-Za-z]+)`
	SummarizeRegex = `(?i)summarize\s+([A-Za-z]+\s+[A-Za-z]+)`
	AboutRegex     = `(?i)about\s+([A-Za-z]+\s+[A-Za-z]+)`
	CandidateRegex = `(?i)candidate\s+([A-Za-z]+\s+[A-Za-z]+)`
)

// NamePatterns is the ordered cascade used by query expansion.
var NamePatterns = []string{
	BareNameRegex,
	ProfileOfRegex,
	SummarizeRegex,
	AboutRegex,
	CandidateRegex,
}

const (
	// SubstringMatchSimilarity is assigned to literal content matches,
	// which have no vector score of their own.
	SubstringMatchSimilarity = 0.9

	NoAnswerFallback = "I could not generate an answer."

	NoMatchesAnswer = "I couldn't find any relevant information in the CV database to answer your question. " +
		"Please try rephrasing your query or ask about different aspects of the candidates."
)

// AnswerPromptTemplate is the system prompt for answer generation. The
// placeholder receives the numbered context block built from the
// retrieved passages.
var AnswerPromptTemplate = `You are an AI assistant helping to screen CVs and answer questions about candidates.

IMPORTANT CITATION RULES:
1. Use inline citations in the format [filename p.X] where X is the page number
2. For example: "John Doe has Python experience [John_Doe.pdf p.1] and worked at Google [John_Doe.pdf p.2]"
3. Every factual claim should have a citation
4. If multiple sources support the same fact, cite all relevant sources
5. Only use information from the provided context
6. If you cannot find relevant information in the context, say so clearly

Context from CV documents:
%s

Please answer the user's question based only on the information provided in the context above. Include inline citations for every fact you mention.`
