// Package mcp exposes the retrieval engine over the Model Context Protocol.
package mcp

import "time"

// AskDocumentInput defines the input parameters for the ask_document tool.
type AskDocumentInput struct {
	// DocID is the identifier of the document to query.
	DocID string `json:"doc_id" jsonschema:"required,description=Identifier of the ingested document to query"`
	// Question is the natural-language question.
	Question string `json:"question" jsonschema:"required,description=The question to answer from the document"`
	// K is the number of chunks to retrieve.
	K int `json:"k,omitempty" jsonschema:"minimum=1,maximum=25,default=6,description=Number of chunks to retrieve"`
	// Strategy selects the retrieval strategy.
	Strategy string `json:"strategy,omitempty" jsonschema:"default=mmr,description=Retrieval strategy: cosine or mmr"`
	// MMRLambda is the relevance/diversity trade-off for the mmr strategy.
	MMRLambda float64 `json:"mmr_lambda,omitempty" jsonschema:"minimum=0,maximum=1,default=0.3,description=MMR relevance/diversity trade-off"`
	// UseJudge enables LLM reranking of the candidate chunks.
	UseJudge bool `json:"use_judge,omitempty" jsonschema:"default=false,description=Rerank candidates with the relevance judge"`
}

// AskDocumentOutput contains the generated answer.
type AskDocumentOutput struct {
	// Answer is the grounded, page-cited answer text.
	Answer string `json:"answer"`
}

// ListDocumentsInput defines the input parameters for the list_documents tool.
// This tool takes no parameters and lists all registered documents.
type ListDocumentsInput struct {
	// No input parameters required
}

// DocumentInfo describes one registered document.
type DocumentInfo struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
	// Indexed reports whether an embedding index exists for the document.
	Indexed bool `json:"indexed"`
}

// ListDocumentsOutput contains all registered documents.
type ListDocumentsOutput struct {
	Documents []DocumentInfo `json:"documents"`
	Count     int            `json:"count"`
}

// DigestDocumentInput defines the input parameters for the digest_document tool.
type DigestDocumentInput struct {
	// DocID is the identifier of the document to summarize.
	DocID string `json:"doc_id" jsonschema:"required,description=Identifier of the document to summarize"`
}

// DigestDocumentOutput contains the LLM-generated document digest.
type DigestDocumentOutput struct {
	Summary      string   `json:"summary"`
	KeyPoints    []string `json:"key_points"`
	SalientPages []int    `json:"salient_pages"`
	Entities     []string `json:"entities"`
}

// IndexStatusInput defines the input parameters for the get_index_status tool.
type IndexStatusInput struct {
	// No input parameters required
}

// IndexStatusOutput reports registry and index counts.
type IndexStatusOutput struct {
	TotalDocuments   int      `json:"total_documents"`
	IndexedDocuments int      `json:"indexed_documents"`
	IndexedIDs       []string `json:"indexed_ids"`
}

// RecordFeedbackInput defines the input parameters for the record_feedback tool.
type RecordFeedbackInput struct {
	DocID          string `json:"doc_id" jsonschema:"required,description=Document the feedback applies to"`
	Query          string `json:"query" jsonschema:"required,description=The query the feedback applies to"`
	PositiveChunks []int  `json:"positive_chunk_ids,omitempty" jsonschema:"description=Chunk indices judged relevant"`
	NegativeChunks []int  `json:"negative_chunk_ids,omitempty" jsonschema:"description=Chunk indices judged irrelevant"`
	AnswerQuality  int    `json:"answer_quality,omitempty" jsonschema:"minimum=1,maximum=5,description=Answer quality rating"`
	Notes          string `json:"notes,omitempty" jsonschema:"description=Free-form notes"`
}

// RecordFeedbackOutput acknowledges the stored feedback.
type RecordFeedbackOutput struct {
	OK bool `json:"ok"`
}
